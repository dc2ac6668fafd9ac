// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/rupiya-app/pulse/internal/models"
)

// DefaultTopUsersLimit caps GetTopUsersByActivity when no limit is given.
const DefaultTopUsersLimit = 10

// GetEventDistribution returns the count of events per event name over the
// whole log.
func (e *Engine) GetEventDistribution() map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	distribution := make(map[string]int, len(e.store.byName))
	for name, positions := range e.store.byName {
		distribution[name] = len(positions)
	}
	return distribution
}

// GetUserJourney returns one user's events sorted ascending by timestamp.
// Events with equal timestamps keep record order.
func (e *Engine) GetUserJourney(userID string) []models.AnalyticsEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()

	positions := e.store.userEvents(userID)
	journey := make([]models.AnalyticsEvent, 0, len(positions))
	for _, pos := range positions {
		journey = append(journey, e.store.events[pos])
	}
	sort.SliceStable(journey, func(i, j int) bool {
		return journey[i].Timestamp < journey[j].Timestamp
	})
	return journey
}

// GetTopUsersByActivity ranks users by total event count, descending.
// Ties keep first-seen order. A non-positive limit falls back to
// DefaultTopUsersLimit.
func (e *Engine) GetTopUsersByActivity(limit int) []models.UserActivity {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultTopUsersLimit
	}

	ranking := make([]models.UserActivity, 0, len(e.store.userOrder))
	for _, userID := range e.store.userOrder {
		ranking = append(ranking, models.UserActivity{
			UserID:     userID,
			EventCount: len(e.store.userEvents(userID)),
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].EventCount > ranking[j].EventCount
	})

	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

// GetFeatureAdoptionRate returns the integer percentage of all distinct
// users who ever fired the given event. Returns 0 when the log has no
// users at all.
func (e *Engine) GetFeatureAdoptionRate(eventName string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := len(e.store.userOrder)
	if total == 0 {
		return 0
	}

	adopted := e.store.distinctUsersFor(eventName)
	return int(math.Round(float64(adopted) / float64(total) * 100))
}

// GetFeatureUsageFrequency buckets events with the given name by UTC
// calendar day, keyed by ISO date string (YYYY-MM-DD).
func (e *Engine) GetFeatureUsageFrequency(eventName string) map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	frequency := make(map[string]int)
	for _, pos := range e.store.namedEvents(eventName) {
		day := time.UnixMilli(e.store.events[pos].Timestamp).UTC().Format("2006-01-02")
		frequency[day]++
	}
	return frequency
}
