// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rupiya-app/pulse/internal/alerting"
	"github.com/rupiya-app/pulse/internal/analytics"
	"github.com/rupiya-app/pulse/internal/cache"
	"github.com/rupiya-app/pulse/internal/config"
	"github.com/rupiya-app/pulse/internal/perfmon"
	ws "github.com/rupiya-app/pulse/internal/websocket"
)

// wiredServer builds the production handler chain: router wrapped by the
// perfmon middleware, the hub running and hooked into the alert manager.
func wiredServer(t *testing.T) (*httptest.Server, *ws.Hub, *alerting.Manager) {
	t.Helper()

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.RunWithContext(ctx) }()

	alerts := alerting.NewManager(alerting.WithAlertHook(func(alert alerting.PerformanceAlert) {
		hub.BroadcastAlert(&alert)
	}))

	engine := analytics.NewEngine()
	perf := perfmon.NewMonitor(100)
	cfg := &config.Config{
		Server: config.ServerConfig{
			CORSOrigins: []string{"*"},
		},
	}

	handler := NewHandler(engine, alerts, perf, hub, cfg, cache.New(time.Minute))
	router := NewRouter(handler, NewChiMiddleware(DefaultChiMiddlewareConfig()))

	srv := httptest.NewServer(perf.Middleware(alerts)(router.Setup()))
	t.Cleanup(srv.Close)
	return srv, hub, alerts
}

func dialWebSocket(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("upgrade status = %d, want %d", resp.StatusCode, http.StatusSwitchingProtocols)
	}
	return conn
}

// The perfmon middleware wraps every route, so its response writer has to
// keep supporting connection hijacking for the upgrade to succeed.
func TestWebSocketUpgradeThroughWiredChain(t *testing.T) {
	srv, hub, _ := wiredServer(t)

	dialWebSocket(t, srv)

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := hub.GetClientCount(); got != 1 {
		t.Fatalf("client count = %d, want 1", got)
	}
}

func TestWebSocketReceivesAlertFromHTTPCheck(t *testing.T) {
	srv, hub, _ := wiredServer(t)

	conn := dialWebSocket(t, srv)

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.GetClientCount() != 1 {
		t.Fatal("client never registered with hub")
	}

	// A breaching page-load report over HTTP fans out to the socket.
	resp, err := http.Post(srv.URL+"/api/v1/perf/page-load", "application/json",
		strings.NewReader(`{"duration_ms": 9000}`))
	if err != nil {
		t.Fatalf("POST page-load: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("page-load status = %d, want 200", resp.StatusCode)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ws.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != ws.MessageTypePerformanceAlert {
		t.Errorf("message type = %q, want %q", msg.Type, ws.MessageTypePerformanceAlert)
	}
	payload, ok := msg.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("message data has type %T, want object", msg.Data)
	}
	if payload["id"] != "slow_page_load" {
		t.Errorf("alert id = %v, want slow_page_load", payload["id"])
	}
}
