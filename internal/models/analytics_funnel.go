// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package models

// FunnelStep is one step of a funnel analysis result.
//
// The funnel here is the naive "distinct users who ever fired this event"
// kind: a step's user set is NOT restricted to users who completed the
// preceding steps. ConversionRate relates consecutive steps' distinct user
// counts, so step 1 is always 100 and step i (i > 1) is
// 100 * users(i) / users(i-1), rounded to two decimals.
type FunnelStep struct {
	// StepName is the event name analyzed at this step.
	StepName string `json:"step_name"`

	// StepNumber is the 1-based position in the funnel.
	StepNumber int `json:"step_number"`

	// UserCount is the count of distinct users who ever fired StepName.
	UserCount int `json:"user_count"`

	// ConversionRate is the percentage of the previous step's users,
	// rounded to two decimals. When the previous step has zero users the
	// rate is reported as 0 rather than propagating a division by zero.
	ConversionRate float64 `json:"conversion_rate"`
}
