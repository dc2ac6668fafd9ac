// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package alerting

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rupiya-app/pulse/internal/metrics"
)

func newTestManager(opts ...Option) *Manager {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	return NewManager(opts...)
}

func TestSetThreshold(t *testing.T) {
	m := newTestManager()

	if err := m.SetThreshold(MetricPageLoadTime, 5000); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}
	if got := m.Thresholds().PageLoadTime; got != 5000 {
		t.Errorf("PageLoadTime = %v, want 5000", got)
	}

	// The unchanged thresholds keep their defaults.
	if got := m.Thresholds().APIResponseTime; got != 1000 {
		t.Errorf("APIResponseTime = %v, want 1000", got)
	}
}

func TestSetThresholdUnknownMetric(t *testing.T) {
	m := newTestManager()

	if err := m.SetThreshold("madeUpMetric", 100); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestUpsertKeepsInsertionPosition(t *testing.T) {
	m := newTestManager()

	m.CheckPageLoadTime(4000)
	m.CheckAPIResponseTime("/api/v1/analytics", 1500)
	// Re-trigger the first alert with a new value.
	m.CheckPageLoadTime(6000)

	active := m.GetActiveAlerts()
	if len(active) != 2 {
		t.Fatalf("active count = %d, want 2", len(active))
	}
	// The page load alert keeps its original first position but carries
	// the latest sample.
	if active[0].ID != "slow_page_load" {
		t.Errorf("active[0].ID = %q, want slow_page_load", active[0].ID)
	}
	if active[0].CurrentValue != 6000 {
		t.Errorf("active[0].CurrentValue = %v, want 6000", active[0].CurrentValue)
	}
	if active[1].ID != "slow_api_/api/v1/analytics" {
		t.Errorf("active[1].ID = %q, want slow_api_/api/v1/analytics", active[1].ID)
	}
}

func TestRetriggerResetsResolved(t *testing.T) {
	m := newTestManager()

	m.CheckPageLoadTime(4000)
	if !m.ResolveAlert("slow_page_load") {
		t.Fatal("ResolveAlert returned false")
	}
	if got := len(m.GetActiveAlerts()); got != 0 {
		t.Fatalf("active count after resolve = %d, want 0", got)
	}

	// A fresh breach reactivates the same id.
	m.CheckPageLoadTime(4500)
	active := m.GetActiveAlerts()
	if len(active) != 1 || active[0].Resolved {
		t.Errorf("expected one active alert after re-trigger, got %+v", active)
	}
}

func TestResolveAlertUnknownID(t *testing.T) {
	m := newTestManager()

	if m.ResolveAlert("missing") {
		t.Error("ResolveAlert returned true for unknown id")
	}
}

func TestResolveAlertIdempotent(t *testing.T) {
	m := newTestManager()

	m.CheckPageLoadTime(4000)
	if !m.ResolveAlert("slow_page_load") {
		t.Fatal("first resolve returned false")
	}
	if !m.ResolveAlert("slow_page_load") {
		t.Error("second resolve returned false, want true")
	}
}

func TestGetAlertsBySeverity(t *testing.T) {
	m := newTestManager()

	m.CheckPageLoadTime(4000)                // critical
	m.CheckDomContentLoaded(2500)            // warning
	m.CheckLongTask("render", 80)            // warning
	m.CheckResourceSize("app.js", 2_000_000) // info

	warnings := m.GetAlertsBySeverity(SeverityWarning)
	if len(warnings) != 2 {
		t.Fatalf("warning count = %d, want 2", len(warnings))
	}
	if warnings[0].ID != "slow_dom_content_loaded" || warnings[1].ID != "long_task_render" {
		t.Errorf("warning order = %q, %q", warnings[0].ID, warnings[1].ID)
	}

	if got := len(m.GetAlertsBySeverity(SeverityCritical)); got != 1 {
		t.Errorf("critical count = %d, want 1", got)
	}
	if got := len(m.GetAlertsBySeverity(SeverityInfo)); got != 1 {
		t.Errorf("info count = %d, want 1", got)
	}
}

func TestClearAlerts(t *testing.T) {
	m := newTestManager()

	m.CheckPageLoadTime(4000)
	m.ResolveAlert("slow_page_load")
	m.CheckDomContentLoaded(2500)

	m.ClearAlerts()

	if got := len(m.GetActiveAlerts()); got != 0 {
		t.Errorf("active count after clear = %d, want 0", got)
	}
	if stats := m.GetAlertStatistics(); stats.Total != 0 {
		t.Errorf("total after clear = %d, want 0", stats.Total)
	}
}

func TestGetAlertStatisticsIncludesResolved(t *testing.T) {
	m := newTestManager()

	m.CheckPageLoadTime(4000)
	m.CheckDomContentLoaded(2500)
	m.CheckResourceSize("app.js", 2_000_000)
	m.ResolveAlert("slow_dom_content_loaded")

	stats := m.GetAlertStatistics()
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Active != 2 {
		t.Errorf("Active = %d, want 2", stats.Active)
	}
	if stats.Resolved != 1 {
		t.Errorf("Resolved = %d, want 1", stats.Resolved)
	}
	// Severity counts still include the resolved warning.
	if stats.Critical != 1 || stats.Warning != 1 || stats.Info != 1 {
		t.Errorf("severity counts = %d/%d/%d, want 1/1/1", stats.Critical, stats.Warning, stats.Info)
	}
}

func TestActiveAlertCount(t *testing.T) {
	m := newTestManager()

	m.CheckPageLoadTime(4000)
	m.CheckDomContentLoaded(2500)
	m.ResolveAlert("slow_page_load")

	if got := m.ActiveAlertCount(); got != 1 {
		t.Errorf("ActiveAlertCount = %d, want 1", got)
	}
}

func TestGetOptimizationRecommendationsDedups(t *testing.T) {
	m := newTestManager()

	// Two slow endpoints share one recommendation string.
	m.CheckAPIResponseTime("/api/v1/analytics", 1500)
	m.CheckAPIResponseTime("/api/v1/alerts", 1800)
	m.CheckPageLoadTime(4000)

	recommendations := m.GetOptimizationRecommendations()
	if len(recommendations) != 2 {
		t.Fatalf("recommendation count = %d, want 2: %v", len(recommendations), recommendations)
	}
}

func TestGetOptimizationRecommendationsSkipsResolved(t *testing.T) {
	m := newTestManager()

	m.CheckPageLoadTime(4000)
	m.ResolveAlert("slow_page_load")

	if got := len(m.GetOptimizationRecommendations()); got != 0 {
		t.Errorf("recommendation count = %d, want 0", got)
	}
}

func TestGetPerformanceBudgetStatus(t *testing.T) {
	m := newTestManager()

	statuses := m.GetPerformanceBudgetStatus(map[string]float64{
		MetricPageLoadTime:     1500,   // 50% -> ok
		MetricDomContentLoaded: 2100,   // 105% -> exceeded
		MetricAPIResponseTime:  900,    // 90% -> warning
		MetricBundleSize:       409600, // exactly 80% -> ok
	})

	if len(statuses) != 4 {
		t.Fatalf("status count = %d, want 4", len(statuses))
	}

	byMetric := make(map[string]BudgetStatus)
	for _, status := range statuses {
		byMetric[status.Budget.Metric] = status
	}

	if got := byMetric[MetricPageLoadTime]; got.Status != BudgetStatusOK || got.Percentage != 50 {
		t.Errorf("pageLoadTime = %q %v%%, want ok 50%%", got.Status, got.Percentage)
	}
	if got := byMetric[MetricDomContentLoaded]; got.Status != BudgetStatusExceeded || got.Percentage != 105 {
		t.Errorf("domContentLoaded = %q %v%%, want exceeded 105%%", got.Status, got.Percentage)
	}
	if got := byMetric[MetricAPIResponseTime]; got.Status != BudgetStatusWarning || got.Percentage != 90 {
		t.Errorf("apiResponseTime = %q %v%%, want warning 90%%", got.Status, got.Percentage)
	}
	// The warning band is strictly greater than 80%.
	if got := byMetric[MetricBundleSize]; got.Status != BudgetStatusOK || got.Percentage != 80 {
		t.Errorf("bundleSize = %q %v%%, want ok 80%%", got.Status, got.Percentage)
	}
}

func TestGetPerformanceBudgetStatusMissingMetrics(t *testing.T) {
	m := newTestManager()

	statuses := m.GetPerformanceBudgetStatus(nil)
	if len(statuses) != 4 {
		t.Fatalf("status count = %d, want 4", len(statuses))
	}
	for _, status := range statuses {
		if status.Status != BudgetStatusOK || status.Percentage != 0 {
			t.Errorf("%s = %q %v%%, want ok 0%%", status.Budget.Metric, status.Status, status.Percentage)
		}
	}
}

func TestGetPerformanceBudgetStatusExactly100IsOK(t *testing.T) {
	m := newTestManager()

	statuses := m.GetPerformanceBudgetStatus(map[string]float64{
		MetricPageLoadTime: 3000, // exactly 100% of budget
	})
	for _, status := range statuses {
		if status.Budget.Metric == MetricPageLoadTime && status.Status == BudgetStatusExceeded {
			t.Error("exactly 100% of budget reported as exceeded, want warning band only above 100")
		}
	}
}

func TestAlertHookReceivesEveryBreach(t *testing.T) {
	var received []PerformanceAlert
	m := newTestManager(WithAlertHook(func(alert PerformanceAlert) {
		received = append(received, alert)
	}))

	m.CheckPageLoadTime(4000)
	m.CheckPageLoadTime(5000) // overwrite fires the hook again
	m.CheckPageLoadTime(1000) // under threshold, no hook

	if len(received) != 2 {
		t.Fatalf("hook calls = %d, want 2", len(received))
	}
	if received[1].CurrentValue != 5000 {
		t.Errorf("second hook value = %v, want 5000", received[1].CurrentValue)
	}
}

func TestExportJSON(t *testing.T) {
	m := newTestManager()

	m.CheckPageLoadTime(4000)
	m.CheckDomContentLoaded(2500)
	m.ResolveAlert("slow_dom_content_loaded")

	data, err := m.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var export struct {
		Alerts     []PerformanceAlert `json:"alerts"`
		Statistics AlertStatistics    `json:"statistics"`
		Thresholds Thresholds         `json:"thresholds"`
	}
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}

	// Resolved alerts are part of the export.
	if len(export.Alerts) != 2 {
		t.Errorf("exported alerts = %d, want 2", len(export.Alerts))
	}
	if export.Statistics.Resolved != 1 {
		t.Errorf("exported resolved = %d, want 1", export.Statistics.Resolved)
	}
	if export.Thresholds.PageLoadTime != 3000 {
		t.Errorf("exported PageLoadTime = %v, want 3000", export.Thresholds.PageLoadTime)
	}

	// Output is pretty-printed.
	if string(data[:2]) != "{\n" {
		t.Error("export is not indented JSON")
	}
}

func TestCheckRecordsPrometheusMetrics(t *testing.T) {
	m := newTestManager()

	counter := metrics.AlertsTriggered.WithLabelValues(MetricPageLoadTime, string(SeverityCritical))
	before := testutil.ToFloat64(counter)

	if m.CheckPageLoadTime(9000) == nil {
		t.Fatal("expected an alert")
	}

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("triggered counter = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(metrics.AlertsActive); got != float64(m.ActiveAlertCount()) {
		t.Errorf("active gauge = %v, want %v", got, float64(m.ActiveAlertCount()))
	}
}

func TestCheckUnderThresholdRecordsNoMetrics(t *testing.T) {
	m := newTestManager()

	counter := metrics.AlertsTriggered.WithLabelValues(MetricPageLoadTime, string(SeverityCritical))
	before := testutil.ToFloat64(counter)

	if m.CheckPageLoadTime(100) != nil {
		t.Fatal("unexpected alert")
	}
	if got := testutil.ToFloat64(counter); got != before {
		t.Errorf("triggered counter = %v, want %v", got, before)
	}
}

func TestExportJSONConsistentUnderConcurrentChecks(t *testing.T) {
	m := NewManager()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			m.CheckAPIResponseTime(fmt.Sprintf("/endpoint-%d", i%100), 5000)
		}
	}()

	// Alerts and statistics come from one locked read, so every export
	// must agree with itself even while checks run.
	for i := 0; i < 50; i++ {
		data, err := m.ExportJSON()
		if err != nil {
			t.Fatalf("ExportJSON: %v", err)
		}
		var export struct {
			Alerts     []PerformanceAlert `json:"alerts"`
			Statistics AlertStatistics    `json:"statistics"`
		}
		if err := json.Unmarshal(data, &export); err != nil {
			t.Fatalf("unmarshal export: %v", err)
		}
		if len(export.Alerts) != export.Statistics.Total {
			t.Fatalf("export has %d alerts but statistics total %d",
				len(export.Alerts), export.Statistics.Total)
		}
	}

	close(stop)
	wg.Wait()
}
