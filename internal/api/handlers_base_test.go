// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/rupiya-app/pulse/internal/alerting"
	"github.com/rupiya-app/pulse/internal/analytics"
	"github.com/rupiya-app/pulse/internal/cache"
	"github.com/rupiya-app/pulse/internal/config"
	"github.com/rupiya-app/pulse/internal/models"
	"github.com/rupiya-app/pulse/internal/perfmon"
)

// testEnv bundles the engine, alert manager, and a fully routed handler
// for HTTP-level tests.
type testEnv struct {
	engine *analytics.Engine
	alerts *alerting.Manager
	perf   *perfmon.Monitor
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	engine := analytics.NewEngine()
	alerts := alerting.NewManager()
	perf := perfmon.NewMonitor(100)

	cfg := &config.Config{
		Server: config.ServerConfig{
			CORSOrigins: []string{"*"},
		},
	}

	handler := NewHandler(engine, alerts, perf, nil, cfg, cache.New(time.Minute))
	router := NewRouter(handler, NewChiMiddleware(DefaultChiMiddlewareConfig()))

	return &testEnv{
		engine: engine,
		alerts: alerts,
		perf:   perf,
		router: router.Setup(),
	}
}

// request performs an HTTP request against the test router, JSON
// encoding body when non-nil.
func (env *testEnv) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// requestRaw performs a request with a raw string body, for malformed
// payload tests.
func (env *testEnv) requestRaw(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope parses the standard response wrapper.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *models.APIResponse {
	t.Helper()

	var envelope models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return &envelope
}

// requireStatus fails the test when the recorded status differs.
func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

// dataMap extracts the envelope's data as an object.
func dataMap(t *testing.T, envelope *models.APIResponse) map[string]interface{} {
	t.Helper()

	m, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %#v, want object", envelope.Data)
	}
	return m
}
