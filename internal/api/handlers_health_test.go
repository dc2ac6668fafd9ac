// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package api

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	env.engine.RecordEvent("u1", "page_view", nil)
	env.alerts.CheckPageLoadTime(4000)

	rec := env.request(t, http.MethodGet, "/api/v1/health", nil)
	requireStatus(t, rec, http.StatusOK)

	data := dataMap(t, decodeEnvelope(t, rec))
	if data["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", data["status"])
	}
	if data["total_events"] != float64(1) {
		t.Errorf("total_events = %v, want 1", data["total_events"])
	}
	if data["distinct_users"] != float64(1) {
		t.Errorf("distinct_users = %v, want 1", data["distinct_users"])
	}
	if data["active_alerts"] != float64(1) {
		t.Errorf("active_alerts = %v, want 1", data["active_alerts"])
	}
}

func TestHealthProbes(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/health/live", "alive"},
		{"/api/v1/health/ready", "ready"},
	}

	for _, tt := range tests {
		rec := env.request(t, http.MethodGet, tt.path, nil)
		requireStatus(t, rec, http.StatusOK)
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s body = %q, want %q", tt.path, rec.Body.String(), tt.want)
		}
	}
}

func TestResponseEnvelopeShape(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/health", nil)
	requireStatus(t, rec, http.StatusOK)

	envelope := decodeEnvelope(t, rec)
	if envelope.Status != "success" {
		t.Errorf("status = %q, want success", envelope.Status)
	}
	if envelope.Metadata.Timestamp.IsZero() {
		t.Error("metadata.timestamp is zero")
	}
	if envelope.Error != nil {
		t.Errorf("error = %+v, want nil on success", envelope.Error)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("ETag header missing")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/metrics", nil)
	requireStatus(t, rec, http.StatusOK)

	if !strings.Contains(rec.Body.String(), "go_") {
		t.Error("metrics output missing Go runtime collectors")
	}
}
