// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package perfmon

import (
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Export column headers. Existing export consumers parse these rows
// byte-for-byte; do not reword them.
var (
	metricsCSVHeader  = []string{"Metric Name", "Value", "Unit", "Timestamp"}
	requestsCSVHeader = []string{"Endpoint", "Method", "Duration (ms)", "Status", "Timestamp"}
)

// ExportMetricsCSV renders the metric sample window as CSV with the header
// row "Metric Name,Value,Unit,Timestamp".
func (m *Monitor) ExportMetricsCSV() (string, error) {
	m.mu.RLock()
	samples := make([]MetricSample, len(m.metrics))
	copy(samples, m.metrics)
	m.mu.RUnlock()

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(metricsCSVHeader); err != nil {
		return "", err
	}
	for _, sample := range samples {
		record := []string{
			sample.Name,
			strconv.FormatFloat(sample.Value, 'f', -1, 64),
			sample.Unit,
			sample.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	return sb.String(), w.Error()
}

// ExportRequestsCSV renders the request sample window as CSV with the
// header row "Endpoint,Method,Duration (ms),Status,Timestamp".
func (m *Monitor) ExportRequestsCSV() (string, error) {
	m.mu.RLock()
	samples := make([]RequestSample, len(m.requests))
	copy(samples, m.requests)
	m.mu.RUnlock()

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(requestsCSVHeader); err != nil {
		return "", err
	}
	for _, sample := range samples {
		record := []string{
			sample.Endpoint,
			sample.Method,
			strconv.FormatInt(sample.DurationMS, 10),
			strconv.Itoa(sample.Status),
			sample.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	return sb.String(), w.Error()
}

// metricsExport is the document shape produced by ExportJSON.
type metricsExport struct {
	Metrics    []MetricSample  `json:"metrics"`
	Requests   []RequestSample `json:"requests"`
	Stats      []EndpointStats `json:"endpoint_stats"`
	ExportedAt time.Time       `json:"exported_at"`
}

// ExportJSON dumps both sample windows and the aggregated endpoint
// statistics as pretty-printed JSON.
func (m *Monitor) ExportJSON() ([]byte, error) {
	stats := m.GetStats()

	m.mu.RLock()
	metrics := make([]MetricSample, len(m.metrics))
	copy(metrics, m.metrics)
	requests := make([]RequestSample, len(m.requests))
	copy(requests, m.requests)
	exportedAt := m.now()
	m.mu.RUnlock()

	return json.MarshalIndent(metricsExport{
		Metrics:    metrics,
		Requests:   requests,
		Stats:      stats,
		ExportedAt: exportedAt,
	}, "", "  ")
}
