// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package perfmon

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestExportMetricsCSVHeader(t *testing.T) {
	m := newTestMonitor(10)

	out, err := m.ExportMetricsCSV()
	if err != nil {
		t.Fatalf("ExportMetricsCSV: %v", err)
	}

	// Downstream spreadsheet imports match this row byte-for-byte.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "Metric Name,Value,Unit,Timestamp" {
		t.Errorf("header = %q, want %q", lines[0], "Metric Name,Value,Unit,Timestamp")
	}
}

func TestExportMetricsCSVRows(t *testing.T) {
	m := newTestMonitor(10)

	m.RecordMetric("pageLoadTime", 1234.5, "ms")
	m.RecordMetric("resourceSize", 2048, "bytes")

	out, err := m.ExportMetricsCSV()
	if err != nil {
		t.Fatalf("ExportMetricsCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3", len(lines))
	}
	if lines[1] != "pageLoadTime,1234.5,ms,2026-03-01T12:00:00Z" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "resourceSize,2048,bytes,2026-03-01T12:00:00Z" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestExportRequestsCSVHeader(t *testing.T) {
	m := newTestMonitor(10)

	out, err := m.ExportRequestsCSV()
	if err != nil {
		t.Fatalf("ExportRequestsCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "Endpoint,Method,Duration (ms),Status,Timestamp" {
		t.Errorf("header = %q, want %q", lines[0], "Endpoint,Method,Duration (ms),Status,Timestamp")
	}
}

func TestExportRequestsCSVRows(t *testing.T) {
	m := newTestMonitor(10)

	m.RecordRequest("/api/v1/analytics", "GET", 42, 200)

	out, err := m.ExportRequestsCSV()
	if err != nil {
		t.Fatalf("ExportRequestsCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}
	if lines[1] != "/api/v1/analytics,GET,42,200,2026-03-01T12:00:00Z" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestExportJSONShape(t *testing.T) {
	m := newTestMonitor(10)

	m.RecordMetric("pageLoadTime", 1000, "ms")
	m.RecordRequest("/api/v1/analytics", "GET", 42, 200)

	data, err := m.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var export struct {
		Metrics  []MetricSample  `json:"metrics"`
		Requests []RequestSample `json:"requests"`
		Stats    []EndpointStats `json:"endpoint_stats"`
	}
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}

	if len(export.Metrics) != 1 || len(export.Requests) != 1 || len(export.Stats) != 1 {
		t.Errorf("export sizes = %d/%d/%d, want 1/1/1",
			len(export.Metrics), len(export.Requests), len(export.Stats))
	}
	if string(data[:2]) != "{\n" {
		t.Error("export is not indented JSON")
	}
}
