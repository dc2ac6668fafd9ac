// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rupiya-app/pulse/internal/middleware"
)

// Router wires handlers and middleware into the chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight works

	// Health endpoints: no rate limit, probes may poll aggressively
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Event ingest: permissive rate limit, instrumented clients report
	// on every interaction
	r.Route("/api/v1/events", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitIngest())
		r.Use(middleware.PrometheusMetrics)

		r.Post("/", router.handler.IngestEvent)
		r.Delete("/", router.handler.ClearEvents)
	})

	// Analytics queries: standard rate limit
	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/distribution", router.handler.AnalyticsDistribution)
		r.Get("/journey", router.handler.AnalyticsJourney)
		r.Get("/top-users", router.handler.AnalyticsTopUsers)
		r.Get("/adoption", router.handler.AnalyticsAdoption)
		r.Get("/frequency", router.handler.AnalyticsFrequency)

		r.Post("/cohorts", router.handler.CreateCohort)
		r.Get("/cohorts", router.handler.ListCohorts)
		r.Get("/cohorts/{id}/retention", router.handler.CohortRetention)

		r.Post("/funnel", router.handler.AnalyzeFunnel)

		r.Post("/segments", router.handler.CreateSegment)
		r.Get("/segments", router.handler.ListSegments)
		r.Get("/segments/{id}/properties", router.handler.SegmentProperties)
	})

	// Performance sample ingest and exports
	r.Route("/api/v1/perf", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitIngest())
		r.Use(middleware.PrometheusMetrics)

		r.Post("/page-load", router.handler.ReportPageLoad)
		r.Post("/dom-content-loaded", router.handler.ReportDomContentLoaded)
		r.Post("/api-response", router.handler.ReportAPIResponse)
		r.Post("/long-task", router.handler.ReportLongTask)
		r.Post("/resource-size", router.handler.ReportResourceSize)

		r.Get("/stats", router.handler.PerfStats)
		r.Get("/export/metrics.csv", router.handler.ExportMetricsCSV)
		r.Get("/export/requests.csv", router.handler.ExportRequestsCSV)
		r.Get("/export/metrics.json", router.handler.ExportMetricsJSON)
	})

	// Alert queries and lifecycle
	r.Route("/api/v1/alerts", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/", router.handler.ListAlerts)
		r.Delete("/", router.handler.ClearAlerts)
		r.Post("/{id}/resolve", router.handler.ResolveAlert)
		r.Get("/statistics", router.handler.AlertStatistics)
		r.Get("/recommendations", router.handler.AlertRecommendations)
		r.Get("/budget-status", router.handler.BudgetStatus)
		r.Get("/export", router.handler.ExportAlerts)
		r.Get("/thresholds", router.handler.GetThresholds)
		r.Put("/thresholds/{metric}", router.handler.SetThreshold)
	})

	// WebSocket upgrade: no rate limit, long-lived connection
	r.Get("/api/v1/ws", router.handler.WebSocket)

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
