// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type stubStatsSource struct {
	events int
	users  int
}

func (s *stubStatsSource) EventCount() int { return s.events }
func (s *stubStatsSource) UserCount() int  { return s.users }

type stubAlertSource struct {
	active int
}

func (s *stubAlertSource) ActiveAlertCount() int { return s.active }

type stubBroadcaster struct {
	mu      sync.Mutex
	clients int
	calls   [][3]int
}

func (b *stubBroadcaster) BroadcastStatsUpdate(totalEvents, distinctUsers, activeAlerts int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, [3]int{totalEvents, distinctUsers, activeAlerts})
}

func (b *stubBroadcaster) GetClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clients
}

func (b *stubBroadcaster) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *stubBroadcaster) lastCall() [3]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

func TestStatsBroadcasterServicePushesCounters(t *testing.T) {
	hub := &stubBroadcaster{clients: 1}
	service := NewStatsBroadcasterService(
		&stubStatsSource{events: 42, users: 7},
		&stubAlertSource{active: 3},
		hub,
		10*time.Millisecond,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- service.Serve(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if hub.callCount() == 0 {
		t.Fatal("no stats broadcast happened")
	}
	if got := hub.lastCall(); got != [3]int{42, 7, 3} {
		t.Errorf("broadcast = %v, want [42 7 3]", got)
	}
}

func TestStatsBroadcasterServiceSkipsWithoutClients(t *testing.T) {
	hub := &stubBroadcaster{clients: 0}
	service := NewStatsBroadcasterService(
		&stubStatsSource{events: 1, users: 1},
		&stubAlertSource{},
		hub,
		10*time.Millisecond,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := service.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve returned %v, want context.DeadlineExceeded", err)
	}

	if got := hub.callCount(); got != 0 {
		t.Errorf("broadcast count = %d, want 0 with no clients", got)
	}
}

func TestStatsBroadcasterServiceDefaultInterval(t *testing.T) {
	service := NewStatsBroadcasterService(&stubStatsSource{}, &stubAlertSource{}, &stubBroadcaster{}, 0)
	if service.interval != 10*time.Second {
		t.Errorf("interval = %v, want 10s default", service.interval)
	}
}

func TestStatsBroadcasterServiceString(t *testing.T) {
	service := NewStatsBroadcasterService(&stubStatsSource{}, &stubAlertSource{}, &stubBroadcaster{}, time.Second)
	if got := service.String(); got != "stats-broadcaster" {
		t.Errorf("String() = %q, want stats-broadcaster", got)
	}
}
