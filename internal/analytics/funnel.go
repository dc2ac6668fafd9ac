// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package analytics

import (
	"math"

	"github.com/rupiya-app/pulse/internal/models"
)

// AnalyzeFunnel computes step-wise conversion for an ordered list of event
// names. Each step's user count is the distinct users who EVER fired that
// event, across the whole log - the funnel is not a strict per-user
// sequential progression.
//
// Step 1 conversion is defined as 100. Step i (i > 1) is
// 100 * users(i) / users(i-1), rounded to two decimals. A step whose
// predecessor has zero users reports 0 instead of a division by zero.
func (e *Engine) AnalyzeFunnel(steps []string) []models.FunnelStep {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]models.FunnelStep, 0, len(steps))
	prev := 0
	for i, name := range steps {
		count := e.store.distinctUsersFor(name)

		rate := 100.0
		if i > 0 {
			if prev == 0 {
				rate = 0
			} else {
				rate = round2(float64(count) / float64(prev) * 100)
			}
		}

		result = append(result, models.FunnelStep{
			StepName:       name,
			StepNumber:     i + 1,
			UserCount:      count,
			ConversionRate: rate,
		})
		prev = count
	}

	return result
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
