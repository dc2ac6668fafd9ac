// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rupiya-app/pulse/internal/models"
)

// CreateCohort snapshots the users whose signup event falls inside
// [start, end] (inclusive at both ends, compared in epoch milliseconds)
// into a new cohort.
//
// The cohort's retention rate is computed immediately: the percentage of
// members with any event inside the trailing retention window (7 days by
// default), measured from the clock at creation time - not from the
// cohort's own start date. Membership never changes afterwards, even when
// later signup events land inside the window.
func (e *Engine) CreateCohort(start, end time.Time) models.UserCohort {
	e.mu.Lock()
	defer e.mu.Unlock()

	startMs := start.UnixMilli()
	endMs := end.UnixMilli()

	var users []string
	seen := make(map[string]struct{})
	for _, pos := range e.store.namedEvents(models.SignupEventName) {
		event := e.store.events[pos]
		if event.Timestamp < startMs || event.Timestamp > endMs {
			continue
		}
		if _, dup := seen[event.UserID]; dup {
			continue
		}
		seen[event.UserID] = struct{}{}
		users = append(users, event.UserID)
	}

	cohort := &models.UserCohort{
		CohortID:      uuid.NewString(),
		StartDate:     start,
		Users:         users,
		Size:          len(users),
		RetentionRate: e.retentionRate(users),
	}
	e.cohorts[cohort.CohortID] = cohort

	return snapshotCohort(cohort)
}

// retentionRate returns the integer percentage of the given users with at
// least one event inside the trailing retention window. Returns 0 for an
// empty user list rather than dividing by zero.
//
// Callers must hold the engine lock.
func (e *Engine) retentionRate(users []string) int {
	if len(users) == 0 {
		return 0
	}

	cutoff := e.now().Add(-e.retentionWindow).UnixMilli()
	active := 0
	for _, userID := range users {
		if e.store.hasEventAtOrAfter(userID, cutoff) {
			active++
		}
	}

	return int(math.Round(float64(active) / float64(len(users)) * 100))
}

// GetCohortRetention computes retention counts for a cohort at the given
// day offsets (the canonical 0, 1, 7, 30, 90 when none are supplied).
// Each offset counts cohort members with at least one event at or after
// cohortStart + offset days.
//
// Only the canonical offsets have a field in RetentionData; retention at
// any other requested offset is computed and then discarded. Returns
// ErrCohortNotFound for an unknown id.
func (e *Engine) GetCohortRetention(cohortID string, days ...int) (models.RetentionData, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cohort, ok := e.cohorts[cohortID]
	if !ok {
		return models.RetentionData{}, fmt.Errorf("%w: %s", ErrCohortNotFound, cohortID)
	}

	if len(days) == 0 {
		days = models.DefaultRetentionDays
	}

	startMs := cohort.StartDate.UnixMilli()
	data := models.RetentionData{
		CohortDate: cohort.StartDate.UTC().Format("2006-01-02"),
	}

	for _, offset := range days {
		cutoff := startMs + int64(offset)*millisPerDay
		retained := 0
		for _, userID := range cohort.Users {
			if e.store.hasEventAtOrAfter(userID, cutoff) {
				retained++
			}
		}

		switch offset {
		case 0:
			data.Day0 = retained
		case 1:
			data.Day1 = retained
		case 7:
			data.Day7 = retained
		case 30:
			data.Day30 = retained
		case 90:
			data.Day90 = retained
		default:
			// Unrecognized offsets have no bucket in the result.
		}
	}

	return data, nil
}

// ListCohorts returns all cohorts, most recently created last is not
// guaranteed; ordering follows map iteration of ids sorted at call time.
func (e *Engine) ListCohorts() []models.UserCohort {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cohorts := make([]models.UserCohort, 0, len(e.cohorts))
	for _, cohort := range e.cohorts {
		cohorts = append(cohorts, snapshotCohort(cohort))
	}
	sortCohorts(cohorts)
	return cohorts
}

// sortCohorts orders cohorts by start date, then id, for stable listings.
func sortCohorts(cohorts []models.UserCohort) {
	sort.Slice(cohorts, func(i, j int) bool {
		if !cohorts[i].StartDate.Equal(cohorts[j].StartDate) {
			return cohorts[i].StartDate.Before(cohorts[j].StartDate)
		}
		return cohorts[i].CohortID < cohorts[j].CohortID
	})
}

// snapshotCohort returns a defensive copy so callers cannot mutate the
// frozen membership.
func snapshotCohort(cohort *models.UserCohort) models.UserCohort {
	copied := *cohort
	copied.Users = append([]string(nil), cohort.Users...)
	return copied
}
