// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package alerting

import (
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/rupiya-app/pulse/internal/metrics"
)

// Manager coordinates threshold checks, the alert record, and budget
// reporting. Create one per process with NewManager; all state is private
// to the instance.
type Manager struct {
	mu         sync.RWMutex
	alerts     map[string]*PerformanceAlert
	order      []string // alert ids in first-creation order; upserts keep position
	thresholds Thresholds

	// onAlert, when set, is invoked for every generated or overwritten
	// alert. Used to broadcast alerts to WebSocket clients.
	onAlert func(PerformanceAlert)

	// now is injectable for deterministic tests.
	now func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithThresholds replaces the default thresholds.
func WithThresholds(t Thresholds) Option {
	return func(m *Manager) {
		m.thresholds = t
	}
}

// WithClock replaces the manager clock.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithAlertHook registers a callback invoked for every alert the manager
// generates or overwrites. The callback runs synchronously inside the
// triggering check call but outside the manager lock, so it may query
// the manager.
func WithAlertHook(hook func(PerformanceAlert)) Option {
	return func(m *Manager) {
		m.onAlert = hook
	}
}

// NewManager creates an alert manager with default thresholds.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		alerts:     make(map[string]*PerformanceAlert),
		thresholds: DefaultThresholds(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetThreshold updates one threshold by its metric key. Returns
// ErrUnknownMetric for keys outside the tracked five.
func (m *Manager) SetThreshold(metric string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch metric {
	case MetricPageLoadTime:
		m.thresholds.PageLoadTime = value
	case MetricDomContentLoaded:
		m.thresholds.DomContentLoaded = value
	case MetricAPIResponseTime:
		m.thresholds.APIResponseTime = value
	case MetricLongTaskDuration:
		m.thresholds.LongTaskDuration = value
	case MetricResourceSize:
		m.thresholds.ResourceSize = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	return nil
}

// Thresholds returns a copy of the current thresholds.
func (m *Manager) Thresholds() Thresholds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.thresholds
}

// upsert stores an alert under its deterministic id, keeping the original
// insertion position when the id already exists (last write wins on the
// payload). Callers must hold the write lock.
func (m *Manager) upsert(alert *PerformanceAlert) {
	if _, exists := m.alerts[alert.ID]; !exists {
		m.order = append(m.order, alert.ID)
	}
	m.alerts[alert.ID] = alert
}

// notify records the alert in Prometheus and invokes the alert hook, if
// any. Called without the lock held.
func (m *Manager) notify(alert PerformanceAlert) {
	metrics.RecordAlert(alert.Metric, string(alert.Severity), m.ActiveAlertCount())
	if m.onAlert != nil {
		m.onAlert(alert)
	}
}

// GetActiveAlerts returns all unresolved alerts in first-creation order.
func (m *Manager) GetActiveAlerts() []PerformanceAlert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := make([]PerformanceAlert, 0, len(m.order))
	for _, id := range m.order {
		if alert := m.alerts[id]; !alert.Resolved {
			active = append(active, *alert)
		}
	}
	return active
}

// ActiveAlertCount returns the number of unresolved alerts.
func (m *Manager) ActiveAlertCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, alert := range m.alerts {
		if !alert.Resolved {
			count++
		}
	}
	return count
}

// GetAlertsBySeverity returns unresolved alerts of one severity, in
// first-creation order.
func (m *Manager) GetAlertsBySeverity(severity Severity) []PerformanceAlert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]PerformanceAlert, 0, len(m.order))
	for _, id := range m.order {
		if alert := m.alerts[id]; !alert.Resolved && alert.Severity == severity {
			matched = append(matched, *alert)
		}
	}
	return matched
}

// ResolveAlert marks an alert resolved. Returns false for an unknown id;
// resolving an already-resolved alert is a no-op that still returns true.
// Resolution is terminal until the same check id breaches again.
func (m *Manager) ResolveAlert(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[id]
	if !ok {
		return false
	}
	alert.Resolved = true
	return true
}

// ClearAlerts drops the entire alert record, including resolved alerts.
func (m *Manager) ClearAlerts() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts = make(map[string]*PerformanceAlert)
	m.order = nil
}

// GetAlertStatistics counts alerts over the all-time record. Severity
// counts include resolved alerts; only Active/Resolved split on the
// resolution flag.
func (m *Manager) GetAlertStatistics() AlertStatistics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statisticsLocked()
}

// statisticsLocked computes statistics over the current record. Callers
// must hold at least the read lock.
func (m *Manager) statisticsLocked() AlertStatistics {
	var stats AlertStatistics
	for _, alert := range m.alerts {
		stats.Total++
		if alert.Resolved {
			stats.Resolved++
		} else {
			stats.Active++
		}
		switch alert.Severity {
		case SeverityCritical:
			stats.Critical++
		case SeverityWarning:
			stats.Warning++
		case SeverityInfo:
			stats.Info++
		}
	}
	return stats
}

// GetOptimizationRecommendations returns the deduplicated recommendation
// strings of currently-active alerts, in alert creation order.
func (m *Manager) GetOptimizationRecommendations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var recommendations []string
	for _, id := range m.order {
		alert := m.alerts[id]
		if alert.Resolved {
			continue
		}
		if _, dup := seen[alert.Recommendation]; dup {
			continue
		}
		seen[alert.Recommendation] = struct{}{}
		recommendations = append(recommendations, alert.Recommendation)
	}
	return recommendations
}

// GetPerformanceBudgetStatus reports each of the four fixed budgets
// against the supplied observed metrics. Metrics absent from the map
// report 0% and "ok".
func (m *Manager) GetPerformanceBudgetStatus(metrics map[string]float64) []BudgetStatus {
	statuses := make([]BudgetStatus, 0, len(performanceBudgets))
	for _, budget := range performanceBudgets {
		percentage := 0.0
		if value, ok := metrics[budget.Metric]; ok {
			percentage = value / budget.Budget * 100
		}

		status := BudgetStatusOK
		switch {
		case percentage > 100:
			status = BudgetStatusExceeded
		case percentage > 80:
			status = BudgetStatusWarning
		}

		statuses = append(statuses, BudgetStatus{
			Budget:     budget,
			Status:     status,
			Percentage: percentage,
		})
	}
	return statuses
}

// alertExport is the document shape produced by ExportJSON.
type alertExport struct {
	Alerts     []PerformanceAlert `json:"alerts"`
	Statistics AlertStatistics    `json:"statistics"`
	Thresholds Thresholds         `json:"thresholds"`
	ExportedAt time.Time          `json:"exported_at"`
}

// ExportJSON dumps the full alert record (resolved included), statistics,
// and current thresholds as pretty-printed JSON. The record and the
// statistics are read under one lock so they always agree.
func (m *Manager) ExportJSON() ([]byte, error) {
	m.mu.RLock()
	alerts := make([]PerformanceAlert, 0, len(m.order))
	for _, id := range m.order {
		alerts = append(alerts, *m.alerts[id])
	}
	stats := m.statisticsLocked()
	thresholds := m.thresholds
	exportedAt := m.now()
	m.mu.RUnlock()

	return json.MarshalIndent(alertExport{
		Alerts:     alerts,
		Statistics: stats,
		Thresholds: thresholds,
		ExportedAt: exportedAt,
	}, "", "  ")
}
