// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

// Package metrics exposes Prometheus instrumentation for the Pulse
// server: event ingest throughput, analytics query latency, alert
// lifecycle counts, cache efficiency, and WebSocket connections.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event Ingest Metrics
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_events_recorded_total",
			Help: "Total number of analytics events recorded",
		},
		[]string{"event_name"},
	)

	EventLogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_event_log_entries",
			Help: "Current number of events in the in-memory log",
		},
	)

	DistinctUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_distinct_users",
			Help: "Current number of distinct users seen in the event log",
		},
	)

	// Analytics Query Metrics
	AnalyticsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulse_analytics_query_duration_seconds",
			Help:    "Duration of analytics queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"}, // "cohort", "retention", "funnel", "segment", "distribution", "journey", "top_users", "adoption", "frequency"
	)

	// Alert Metrics
	AlertsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_alerts_triggered_total",
			Help: "Total number of performance alerts triggered",
		},
		[]string{"metric", "severity"},
	)

	AlertsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_alerts_active",
			Help: "Current number of unresolved performance alerts",
		},
	)

	AlertsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_alerts_resolved_total",
			Help: "Total number of alerts manually resolved",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulse_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_cache_hits_total",
			Help: "Total number of query cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_cache_misses_total",
			Help: "Total number of query cache misses",
		},
	)

	// WebSocket Metrics
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_websocket_connections_active",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
	)
)

// RecordEvent records an ingested analytics event and updates the log gauges.
func RecordEvent(eventName string, logSize, distinctUsers int) {
	EventsRecorded.WithLabelValues(eventName).Inc()
	EventLogSize.Set(float64(logSize))
	DistinctUsers.Set(float64(distinctUsers))
}

// RecordAnalyticsQuery records the latency of one analytics query.
func RecordAnalyticsQuery(query string, duration time.Duration) {
	AnalyticsQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
}

// RecordAlert records a triggered alert and the current active count.
func RecordAlert(metric, severity string, activeCount int) {
	AlertsTriggered.WithLabelValues(metric, severity).Inc()
	AlertsActive.Set(float64(activeCount))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
