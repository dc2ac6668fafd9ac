// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

// Package perfmon is the performance-monitoring collaborator that feeds the
// alerting engine. It keeps a sliding window of raw metric samples and API
// request timings, aggregates per-endpoint latency statistics, and exports
// both sample kinds as JSON or CSV for external consumers.
package perfmon

import (
	"sort"
	"sync"
	"time"

	"github.com/rupiya-app/pulse/internal/logging"
)

// MetricSample is one named performance measurement reported by the
// instrumented client (page load time, DOM ready time, long task duration,
// resource size, and the like).
type MetricSample struct {
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestSample is one observed API request timing.
type RequestSample struct {
	Endpoint   string    `json:"endpoint"`
	Method     string    `json:"method"`
	DurationMS int64     `json:"duration_ms"`
	Status     int       `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// EndpointStats contains aggregated latency statistics for one endpoint.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	P50Duration  int64   `json:"p50_duration_ms"`
	P95Duration  int64   `json:"p95_duration_ms"`
	P99Duration  int64   `json:"p99_duration_ms"`
	MinDuration  int64   `json:"min_duration_ms"`
	MaxDuration  int64   `json:"max_duration_ms"`
}

// Monitor tracks performance samples in two fixed-size sliding windows,
// oldest entries evicted first.
type Monitor struct {
	mu         sync.RWMutex
	metrics    []MetricSample
	requests   []RequestSample
	maxSamples int

	// slowRequestMs triggers a warning log for slower requests; 0 disables.
	slowRequestMs int64

	now func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithSlowRequestThreshold sets the slow-request log threshold in
// milliseconds. Zero disables slow-request logging.
func WithSlowRequestThreshold(ms int64) Option {
	return func(m *Monitor) {
		m.slowRequestMs = ms
	}
}

// WithClock replaces the monitor clock.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// NewMonitor creates a monitor keeping at most maxSamples entries per
// window (1000 when non-positive).
func NewMonitor(maxSamples int, opts ...Option) *Monitor {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	m := &Monitor{
		metrics:       make([]MetricSample, 0, maxSamples),
		requests:      make([]RequestSample, 0, maxSamples),
		maxSamples:    maxSamples,
		slowRequestMs: 1000,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordMetric adds one named metric sample.
func (m *Monitor) RecordMetric(name string, value float64, unit string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics = append(m.metrics, MetricSample{
		Name:      name,
		Value:     value,
		Unit:      unit,
		Timestamp: m.now(),
	})
	if len(m.metrics) > m.maxSamples {
		m.metrics = m.metrics[1:]
	}
}

// RecordRequest adds one API request timing sample and logs it when it
// exceeds the slow-request threshold.
func (m *Monitor) RecordRequest(endpoint, method string, durationMs int64, status int) {
	m.mu.Lock()
	m.requests = append(m.requests, RequestSample{
		Endpoint:   endpoint,
		Method:     method,
		DurationMS: durationMs,
		Status:     status,
		Timestamp:  m.now(),
	})
	if len(m.requests) > m.maxSamples {
		m.requests = m.requests[1:]
	}
	slowMs := m.slowRequestMs
	m.mu.Unlock()

	if slowMs > 0 && durationMs > slowMs {
		logging.Warn().
			Str("method", method).
			Str("endpoint", endpoint).
			Int64("duration_ms", durationMs).
			Int64("threshold_ms", slowMs).
			Msg("Slow request detected")
	}
}

// GetStats returns aggregated latency statistics per "METHOD endpoint"
// key, sorted by request count descending.
func (m *Monitor) GetStats() []EndpointStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	grouped := make(map[string][]int64)
	for _, sample := range m.requests {
		key := sample.Method + " " + sample.Endpoint
		grouped[key] = append(grouped[key], sample.DurationMS)
	}

	stats := make([]EndpointStats, 0, len(grouped))
	for endpoint, durations := range grouped {
		sorted := make([]int64, len(durations))
		copy(sorted, durations)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, d := range sorted {
			sum += d
		}

		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: int64(len(sorted)),
			AvgDuration:  float64(sum) / float64(len(sorted)),
			P50Duration:  percentile(sorted, 0.50),
			P95Duration:  percentile(sorted, 0.95),
			P99Duration:  percentile(sorted, 0.99),
			MinDuration:  sorted[0],
			MaxDuration:  sorted[len(sorted)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

// RecentMetrics returns the most recent n metric samples.
func (m *Monitor) RecentMetrics(n int) []MetricSample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > len(m.metrics) {
		n = len(m.metrics)
	}
	recent := make([]MetricSample, n)
	copy(recent, m.metrics[len(m.metrics)-n:])
	return recent
}

// RecentRequests returns the most recent n request samples.
func (m *Monitor) RecentRequests(n int) []RequestSample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > len(m.requests) {
		n = len(m.requests)
	}
	recent := make([]RequestSample, n)
	copy(recent, m.requests[len(m.requests)-n:])
	return recent
}

// Reset drops both sample windows.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = m.metrics[:0]
	m.requests = m.requests[:0]
}

// percentile returns the value at percentile p from a sorted slice.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}
