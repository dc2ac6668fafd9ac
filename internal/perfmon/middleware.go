// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package perfmon

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rupiya-app/pulse/internal/alerting"
)

// Middleware wraps an HTTP handler so every served request lands in the
// monitor's request window. When an alert manager is supplied, the
// observed latency is also fed through CheckAPIResponseTime, so the
// service's own slow endpoints raise the same alerts a browser client
// would report.
func (m *Monitor) Middleware(alerts *alerting.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapper := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			duration := time.Since(start).Milliseconds()
			m.RecordRequest(r.URL.Path, r.Method, duration, wrapper.status)

			if alerts != nil {
				alerts.CheckAPIResponseTime(r.URL.Path, float64(duration))
			}
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
// Hijack and Flush are forwarded so wrapped handlers can still upgrade
// connections (WebSocket) and stream responses.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("perfmon: underlying ResponseWriter does not support hijacking")
	}
	return hj.Hijack()
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
