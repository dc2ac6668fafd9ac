// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// mockHTTPServer blocks in ListenAndServe until Shutdown is called or
// it is told to fail.
type mockHTTPServer struct {
	failWith     error
	shutdownErr  error
	shutdownSeen chan struct{}
	release      chan error
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		shutdownSeen: make(chan struct{}, 1),
		release:      make(chan error, 1),
	}
}

func (m *mockHTTPServer) ListenAndServe() error {
	if m.failWith != nil {
		return m.failWith
	}
	return <-m.release
}

func (m *mockHTTPServer) Shutdown(ctx context.Context) error {
	m.shutdownSeen <- struct{}{}
	m.release <- http.ErrServerClosed
	return m.shutdownErr
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	server := newMockHTTPServer()
	service := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- service.Serve(ctx)
	}()

	// Let the serve goroutine start, then trigger shutdown.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	select {
	case <-server.shutdownSeen:
	default:
		t.Error("Shutdown was not called")
	}
}

func TestHTTPServerServiceListenFailure(t *testing.T) {
	server := newMockHTTPServer()
	server.failWith = errors.New("listen tcp :8080: address already in use")
	service := NewHTTPServerService(server, time.Second)

	err := service.Serve(context.Background())
	if err == nil {
		t.Fatal("expected error from failed listener")
	}
	if errors.Is(err, http.ErrServerClosed) {
		t.Error("ErrServerClosed should have been treated as clean exit")
	}
}

func TestHTTPServerServiceServerClosedIsClean(t *testing.T) {
	server := newMockHTTPServer()
	server.failWith = http.ErrServerClosed
	service := NewHTTPServerService(server, time.Second)

	if err := service.Serve(context.Background()); err != nil {
		t.Errorf("Serve returned %v, want nil for ErrServerClosed", err)
	}
}

func TestHTTPServerServiceString(t *testing.T) {
	service := NewHTTPServerService(newMockHTTPServer(), time.Second)
	if got := service.String(); got != "http-server" {
		t.Errorf("String() = %q, want http-server", got)
	}
}
