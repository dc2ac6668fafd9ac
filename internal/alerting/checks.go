// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package alerting

import "fmt"

// Canned recommendations, one per check kind. Kept static so that
// GetOptimizationRecommendations dedups across targets of the same kind.
const (
	recommendPageLoad   = "Enable code splitting and lazy loading to reduce initial bundle execution time"
	recommendDomReady   = "Defer non-critical scripts and inline critical CSS to speed up DOM parsing"
	recommendSlowAPI    = "Cache, batch, or paginate slow API responses and move heavy work off the request path"
	recommendLongTask   = "Break long-running JavaScript tasks into smaller chunks or move them to a Web Worker"
	recommendLargeAsset = "Compress large resources and serve modern formats (WebP/AVIF images, Brotli text)"
)

// CheckPageLoadTime evaluates a page load sample in milliseconds against
// the pageLoadTime threshold. A breach (strictly greater) upserts a
// critical alert under the fixed id "slow_page_load" and returns it;
// otherwise nil is returned and nothing changes.
func (m *Manager) CheckPageLoadTime(loadTimeMs float64) *PerformanceAlert {
	m.mu.Lock()
	threshold := m.thresholds.PageLoadTime
	if loadTimeMs <= threshold {
		m.mu.Unlock()
		return nil
	}

	alert := &PerformanceAlert{
		ID:             "slow_page_load",
		Severity:       SeverityCritical,
		Title:          "Slow Page Load",
		Message:        fmt.Sprintf("Page load took %.0fms (threshold: %.0fms)", loadTimeMs, threshold),
		Metric:         MetricPageLoadTime,
		CurrentValue:   loadTimeMs,
		Threshold:      threshold,
		Recommendation: recommendPageLoad,
		Timestamp:      m.now().UnixMilli(),
	}
	m.upsert(alert)
	m.mu.Unlock()

	m.notify(*alert)
	return alert
}

// CheckDomContentLoaded evaluates a DOM ready sample in milliseconds
// against the domContentLoaded threshold. Breaches upsert a warning alert
// under the fixed id "slow_dom_content_loaded".
func (m *Manager) CheckDomContentLoaded(domReadyMs float64) *PerformanceAlert {
	m.mu.Lock()
	threshold := m.thresholds.DomContentLoaded
	if domReadyMs <= threshold {
		m.mu.Unlock()
		return nil
	}

	alert := &PerformanceAlert{
		ID:             "slow_dom_content_loaded",
		Severity:       SeverityWarning,
		Title:          "Slow DOM Content Loaded",
		Message:        fmt.Sprintf("DOM content loaded in %.0fms (threshold: %.0fms)", domReadyMs, threshold),
		Metric:         MetricDomContentLoaded,
		CurrentValue:   domReadyMs,
		Threshold:      threshold,
		Recommendation: recommendDomReady,
		Timestamp:      m.now().UnixMilli(),
	}
	m.upsert(alert)
	m.mu.Unlock()

	m.notify(*alert)
	return alert
}

// CheckAPIResponseTime evaluates one endpoint's latency sample in
// milliseconds against the apiResponseTime threshold. Breaches upsert a
// warning alert keyed by endpoint: "slow_api_<endpoint>".
func (m *Manager) CheckAPIResponseTime(endpoint string, durationMs float64) *PerformanceAlert {
	m.mu.Lock()
	threshold := m.thresholds.APIResponseTime
	if durationMs <= threshold {
		m.mu.Unlock()
		return nil
	}

	alert := &PerformanceAlert{
		ID:             "slow_api_" + endpoint,
		Severity:       SeverityWarning,
		Title:          "Slow API Response",
		Message:        fmt.Sprintf("%s responded in %.0fms (threshold: %.0fms)", endpoint, durationMs, threshold),
		Metric:         MetricAPIResponseTime,
		CurrentValue:   durationMs,
		Threshold:      threshold,
		Recommendation: recommendSlowAPI,
		Timestamp:      m.now().UnixMilli(),
	}
	m.upsert(alert)
	m.mu.Unlock()

	m.notify(*alert)
	return alert
}

// CheckLongTask evaluates a long-task duration sample in milliseconds
// against the longTaskDuration threshold. Breaches upsert a warning alert
// keyed by task name: "long_task_<name>".
func (m *Manager) CheckLongTask(taskName string, durationMs float64) *PerformanceAlert {
	m.mu.Lock()
	threshold := m.thresholds.LongTaskDuration
	if durationMs <= threshold {
		m.mu.Unlock()
		return nil
	}

	alert := &PerformanceAlert{
		ID:             "long_task_" + taskName,
		Severity:       SeverityWarning,
		Title:          "Long Task Detected",
		Message:        fmt.Sprintf("Task %q ran for %.0fms (threshold: %.0fms)", taskName, durationMs, threshold),
		Metric:         MetricLongTaskDuration,
		CurrentValue:   durationMs,
		Threshold:      threshold,
		Recommendation: recommendLongTask,
		Timestamp:      m.now().UnixMilli(),
	}
	m.upsert(alert)
	m.mu.Unlock()

	m.notify(*alert)
	return alert
}

// CheckResourceSize evaluates a resource size sample in bytes against the
// resourceSize threshold. Breaches upsert an info alert keyed by resource
// name: "large_resource_<name>".
func (m *Manager) CheckResourceSize(resourceName string, sizeBytes float64) *PerformanceAlert {
	m.mu.Lock()
	threshold := m.thresholds.ResourceSize
	if sizeBytes <= threshold {
		m.mu.Unlock()
		return nil
	}

	alert := &PerformanceAlert{
		ID:             "large_resource_" + resourceName,
		Severity:       SeverityInfo,
		Title:          "Large Resource",
		Message:        fmt.Sprintf("%s is %.0f bytes (threshold: %.0f bytes)", resourceName, sizeBytes, threshold),
		Metric:         MetricResourceSize,
		CurrentValue:   sizeBytes,
		Threshold:      threshold,
		Recommendation: recommendLargeAsset,
		Timestamp:      m.now().UnixMilli(),
	}
	m.upsert(alert)
	m.mu.Unlock()

	m.notify(*alert)
	return alert
}
