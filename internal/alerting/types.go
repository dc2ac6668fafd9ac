// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package alerting

import "errors"

// Severity indicates the severity level of an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Metric keys used by thresholds, budgets, and alerts.
const (
	MetricPageLoadTime     = "pageLoadTime"
	MetricDomContentLoaded = "domContentLoaded"
	MetricAPIResponseTime  = "apiResponseTime"
	MetricLongTaskDuration = "longTaskDuration"
	MetricResourceSize     = "resourceSize"
	MetricBundleSize       = "bundleSize"
)

// ErrUnknownMetric indicates a threshold update for a metric key the
// manager does not track.
var ErrUnknownMetric = errors.New("unknown threshold metric")

// PerformanceAlert is a system-generated notice that a metric sample
// exceeded its configured threshold.
//
// ID is deterministic per check kind (and target, where one exists), NOT
// per occurrence: a repeated breach overwrites the prior alert in place,
// refreshing Timestamp and CurrentValue and resetting Resolved.
type PerformanceAlert struct {
	ID             string   `json:"id"`
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Message        string   `json:"message"`
	Metric         string   `json:"metric"`
	CurrentValue   float64  `json:"current_value"`
	Threshold      float64  `json:"threshold"`
	Recommendation string   `json:"recommendation"`

	// Timestamp is the breach time in Unix epoch milliseconds.
	Timestamp int64 `json:"timestamp"`

	// Resolved marks alerts dismissed via ResolveAlert. Terminal until the
	// same check id is re-triggered.
	Resolved bool `json:"resolved"`
}

// Thresholds holds the mutable alerting thresholds. Durations are in
// milliseconds, sizes in bytes.
type Thresholds struct {
	PageLoadTime     float64 `json:"pageLoadTime" koanf:"page_load_time"`
	DomContentLoaded float64 `json:"domContentLoaded" koanf:"dom_content_loaded"`
	APIResponseTime  float64 `json:"apiResponseTime" koanf:"api_response_time"`
	LongTaskDuration float64 `json:"longTaskDuration" koanf:"long_task_duration"`
	ResourceSize     float64 `json:"resourceSize" koanf:"resource_size"`
}

// DefaultThresholds returns the stock thresholds: 3s page load, 2s DOM
// ready, 1s API latency, 50ms long tasks, 1MiB resources.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PageLoadTime:     3000,
		DomContentLoaded: 2000,
		APIResponseTime:  1000,
		LongTaskDuration: 50,
		ResourceSize:     1048576,
	}
}

// PerformanceBudget is a fixed target ceiling for one metric, used only
// for percentage-of-budget reporting. Budgets are static configuration,
// separate from the mutable Thresholds.
type PerformanceBudget struct {
	Metric      string  `json:"metric"`
	Budget      float64 `json:"budget"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
}

// performanceBudgets is the fixed catalogue reported by
// GetPerformanceBudgetStatus.
var performanceBudgets = []PerformanceBudget{
	{Metric: MetricPageLoadTime, Budget: 3000, Unit: "ms", Description: "Total page load time"},
	{Metric: MetricDomContentLoaded, Budget: 2000, Unit: "ms", Description: "DOM content loaded time"},
	{Metric: MetricAPIResponseTime, Budget: 1000, Unit: "ms", Description: "API response time"},
	{Metric: MetricBundleSize, Budget: 512000, Unit: "bytes", Description: "JavaScript bundle size"},
}

// Budget status values.
const (
	BudgetStatusOK       = "ok"
	BudgetStatusWarning  = "warning"
	BudgetStatusExceeded = "exceeded"
)

// BudgetStatus reports one budget against an observed metric value.
type BudgetStatus struct {
	Budget PerformanceBudget `json:"budget"`

	// Status is "exceeded" above 100% of budget, "warning" above 80%
	// (both strictly greater-than), "ok" otherwise.
	Status string `json:"status"`

	// Percentage is 100 * observed / budget, 0 when the metric was not
	// supplied.
	Percentage float64 `json:"percentage"`
}

// AlertStatistics counts alerts over the manager's all-time record,
// including resolved ones.
type AlertStatistics struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Resolved int `json:"resolved"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}
