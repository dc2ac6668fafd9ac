// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

// Package alerting implements the performance-budget alerting engine.
//
// Instrumentation collaborators feed raw metric samples (page load time,
// DOM ready time, API latency, long-task duration, resource size) into the
// Manager's Check functions. A sample strictly above its configured
// threshold produces a PerformanceAlert; a sample at or below it produces
// nothing and leaves existing alerts untouched.
//
// Alert identity is deterministic: each check kind maps to a fixed id
// (suffixed with the endpoint, task, or resource name where applicable),
// and re-triggering a check overwrites the prior alert under the same id,
// resetting its resolved flag. This upsert-by-id behavior is the dedup
// mechanism - the alert map doubles as the all-time record that
// GetAlertStatistics counts, so resolved alerts stay in it until they are
// overwritten or the map is cleared. Resolution is manual only; improving
// samples never auto-resolve an alert.
package alerting
