// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rupiya-app/pulse/internal/alerting"
)

// startHub runs the hub under a cancelable context and returns a stop
// function that cancels it and waits for the run loop to exit.
func startHub(t *testing.T, h *Hub) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.RunWithContext(ctx)
	}()

	return func() {
		cancel()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("RunWithContext returned %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("hub did not stop after context cancel")
		}
	}
}

// waitForClients polls until the hub reports the expected client count.
func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.GetClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", h.GetClientCount(), want)
}

func TestHubRegisterUnregister(t *testing.T) {
	h := NewHub()
	stop := startHub(t, h)
	defer stop()

	client := NewClient(h, nil)
	h.Register <- client
	waitForClients(t, h, 1)

	h.Unregister <- client
	waitForClients(t, h, 0)

	// The hub closes the send channel on unregister.
	select {
	case _, open := <-client.send:
		if open {
			t.Error("expected send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Error("send channel not closed after unregister")
	}
}

func TestHubBroadcastAlert(t *testing.T) {
	h := NewHub()
	stop := startHub(t, h)
	defer stop()

	first := NewClient(h, nil)
	second := NewClient(h, nil)
	h.Register <- first
	h.Register <- second
	waitForClients(t, h, 2)

	alert := &alerting.PerformanceAlert{ID: "slow_page_load", Severity: alerting.SeverityCritical}
	h.BroadcastAlert(alert)

	for _, client := range []*Client{first, second} {
		select {
		case msg := <-client.send:
			if msg.Type != MessageTypePerformanceAlert {
				t.Errorf("message type = %q, want %q", msg.Type, MessageTypePerformanceAlert)
			}
			got, ok := msg.Data.(*alerting.PerformanceAlert)
			if !ok || got.ID != "slow_page_load" {
				t.Errorf("message data = %#v", msg.Data)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHubBroadcastAlertResolved(t *testing.T) {
	h := NewHub()
	stop := startHub(t, h)
	defer stop()

	client := NewClient(h, nil)
	h.Register <- client
	waitForClients(t, h, 1)

	h.BroadcastAlertResolved("slow_page_load")

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeAlertResolved {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeAlertResolved)
		}
		data, ok := msg.Data.(map[string]string)
		if !ok || data["alert_id"] != "slow_page_load" {
			t.Errorf("message data = %#v", msg.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client did not receive alert_resolved")
	}
}

func TestHubBroadcastStatsUpdate(t *testing.T) {
	h := NewHub()
	stop := startHub(t, h)
	defer stop()

	client := NewClient(h, nil)
	h.Register <- client
	waitForClients(t, h, 1)

	h.BroadcastStatsUpdate(42, 7, 3)

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeStatsUpdate {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeStatsUpdate)
		}
		data, ok := msg.Data.(StatsUpdateData)
		if !ok {
			t.Fatalf("message data = %#v", msg.Data)
		}
		if data.TotalEvents != 42 || data.DistinctUsers != 7 || data.ActiveAlerts != 3 {
			t.Errorf("stats = %+v, want 42/7/3", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client did not receive stats_update")
	}
}

func TestHubDropsClientWithFullBuffer(t *testing.T) {
	h := NewHub()
	stop := startHub(t, h)
	defer stop()

	client := NewClient(h, nil)
	h.Register <- client
	waitForClients(t, h, 1)

	// Fill the client's send buffer; the next broadcast cannot be
	// queued and the hub evicts the client instead of blocking.
	for i := 0; i < cap(client.send); i++ {
		client.send <- Message{Type: MessageTypePing}
	}
	h.BroadcastJSON(MessageTypePing, nil)

	waitForClients(t, h, 0)
}

func TestHubShutdownClosesClients(t *testing.T) {
	h := NewHub()
	stop := startHub(t, h)

	client := NewClient(h, nil)
	h.Register <- client
	waitForClients(t, h, 1)

	stop()

	if got := h.GetClientCount(); got != 0 {
		t.Errorf("client count after shutdown = %d, want 0", got)
	}
}
