// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/rupiya-app/pulse/internal/config"
	"github.com/rupiya-app/pulse/internal/metrics"
)

// ChiMiddlewareConfig holds CORS and rate limiting settings for the
// router's middleware stack.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool

	// IngestRateLimitRequests is the higher limit applied to the event
	// and perf ingest endpoints.
	IngestRateLimitRequests int
}

// DefaultChiMiddlewareConfig returns sane defaults: deny-by-default
// CORS, 100 requests/min per IP on query endpoints, 1000/min on ingest.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins:   []string{},
		CORSAllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,

		RateLimitRequests:       100,
		RateLimitWindow:         time.Minute,
		RateLimitDisabled:       false,
		IngestRateLimitRequests: 1000,
	}
}

// NewChiMiddlewareConfigFromConfig builds middleware settings from the
// loaded application config.
func NewChiMiddlewareConfigFromConfig(cfg *config.Config) *ChiMiddlewareConfig {
	mw := DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mw.RateLimitRequests = cfg.RateLimit.Requests
	mw.RateLimitWindow = cfg.RateLimit.Window
	mw.RateLimitDisabled = !cfg.RateLimit.Enabled
	mw.IngestRateLimitRequests = cfg.RateLimit.IngestRequests
	return mw
}

// ChiMiddleware provides chi-compatible middleware factories built on
// go-chi/cors and go-chi/httprate.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates a middleware factory with the given configuration.
func NewChiMiddleware(cfg *ChiMiddlewareConfig) *ChiMiddleware {
	if cfg == nil {
		cfg = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	})

	return &ChiMiddleware{
		config: cfg,
		cors:   corsHandler,
	}
}

// CORS returns a chi-compatible CORS middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns the standard per-IP limiter for query endpoints.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.rateLimiter(m.config.RateLimitRequests)
}

// RateLimitIngest returns the permissive limiter for ingest endpoints,
// which instrumented clients call on every page view.
func (m *ChiMiddleware) RateLimitIngest() func(http.Handler) http.Handler {
	return m.rateLimiter(m.config.IngestRateLimitRequests)
}

func (m *ChiMiddleware) rateLimiter(requests int) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

// rateLimitExceeded records the rejection and responds in the standard
// error envelope.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
	respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests, slow down", nil)
}
