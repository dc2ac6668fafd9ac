// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package api

import (
	"net/http"
	"time"
)

// healthData is the payload for the full health endpoint.
type healthData struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	TotalEvents   int    `json:"total_events"`
	DistinctUsers int    `json:"distinct_users"`
	ActiveAlerts  int    `json:"active_alerts"`
	WSClients     int    `json:"ws_clients"`
}

// Version is set at build time via -ldflags.
var Version = "dev"

// Health reports service health with engine counters.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	wsClients := 0
	if h.wsHub != nil {
		wsClients = h.wsHub.GetClientCount()
	}

	data := healthData{
		Status:        "healthy",
		Version:       Version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		TotalEvents:   h.engine.EventCount(),
		DistinctUsers: h.engine.UserCount(),
		ActiveAlerts:  len(h.alerts.GetActiveAlerts()),
		WSClients:     wsClients,
	}

	respondSuccess(w, http.StatusOK, data, start)
}

// HealthLive is the liveness probe. Always returns 200 while the
// process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"alive"}`))
}

// HealthReady is the readiness probe. The engine has no external
// dependencies to wait on, so readiness tracks liveness.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
