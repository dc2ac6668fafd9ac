// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

// Package api provides the HTTP interface to the analytics engine and
// the alert manager, routed with chi.
package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rupiya-app/pulse/internal/alerting"
	"github.com/rupiya-app/pulse/internal/analytics"
	"github.com/rupiya-app/pulse/internal/cache"
	"github.com/rupiya-app/pulse/internal/config"
	"github.com/rupiya-app/pulse/internal/logging"
	"github.com/rupiya-app/pulse/internal/perfmon"
	ws "github.com/rupiya-app/pulse/internal/websocket"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, WebSocket upgrade
//   - handlers_helpers.go: shared response/param helpers
//   - handlers_health.go: health endpoints
//   - handlers_events.go: event ingest and reset
//   - handlers_analytics.go: cohorts, funnels, segments, activity
//   - handlers_alerts.go: alert checks, queries, thresholds, export
//   - handlers_perf.go: performance sample ingest and CSV/JSON export
type Handler struct {
	engine    *analytics.Engine
	alerts    *alerting.Manager
	perfMon   *perfmon.Monitor
	wsHub     *ws.Hub
	config    *config.Config
	cache     *cache.Cache
	startTime time.Time
}

// NewHandler creates a new API handler. The cache memoizes analytics
// query responses and is flushed on every event-log mutation; pass nil
// to disable caching.
func NewHandler(engine *analytics.Engine, alerts *alerting.Manager, perfMon *perfmon.Monitor, wsHub *ws.Hub, cfg *config.Config, queryCache *cache.Cache) *Handler {
	return &Handler{
		engine:    engine,
		alerts:    alerts,
		perfMon:   perfMon,
		wsHub:     wsHub,
		config:    cfg,
		cache:     queryCache,
		startTime: time.Now(),
	}
}

// ClearCache invalidates all cached analytics responses.
func (h *Handler) ClearCache() {
	if h.cache != nil {
		h.cache.Clear()
	}
}

// getUpgrader returns a WebSocket upgrader whose origin check follows
// the configured CORS origins.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkWebSocketOrigin,
	}
}

// checkWebSocketOrigin validates the Origin header against the
// configured CORS origins. Requests without an Origin header (CLI
// tools, same-origin) are allowed.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range h.config.Server.CORSOrigins {
		if allowed == "*" {
			return true
		}
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}

	// Allow same-host origins regardless of scheme
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}

	return false
}

// WebSocket upgrades the connection and registers the client with the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, "WS_DISABLED", "WebSocket support is disabled", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
