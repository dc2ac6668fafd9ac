// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package analytics

import (
	"errors"
	"sync"
	"time"

	"github.com/rupiya-app/pulse/internal/models"
)

// millisPerDay is the fixed day length used for retention offsets.
const millisPerDay = 86400000

// Sentinel errors for lookups of unknown derived objects. Callers that
// surface these over HTTP map them to NOT_FOUND responses.
var (
	// ErrCohortNotFound indicates an unknown cohort id.
	ErrCohortNotFound = errors.New("cohort not found")

	// ErrSegmentNotFound indicates an unknown segment id.
	ErrSegmentNotFound = errors.New("segment not found")

	// ErrInvalidCriteria indicates a segment criteria descriptor that
	// cannot be compiled to a membership rule.
	ErrInvalidCriteria = errors.New("invalid segment criteria")
)

// Engine is the product analytics engine: the event log plus the cohorts
// and segments derived from it.
type Engine struct {
	mu       sync.RWMutex
	store    *eventStore
	cohorts  map[string]*models.UserCohort
	segments map[string]*models.UserSegment

	// retentionWindow is the lookback used for a cohort's creation-time
	// retention rate.
	retentionWindow time.Duration

	// now is the clock used for event timestamps and retention lookback.
	// Injectable for deterministic tests.
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the engine clock. Tests use this to control event
// timestamps and the retention lookback reference point.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRetentionWindow overrides the 7-day lookback used for creation-time
// cohort retention rates.
func WithRetentionWindow(window time.Duration) Option {
	return func(e *Engine) {
		if window > 0 {
			e.retentionWindow = window
		}
	}
}

// NewEngine creates an empty analytics engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		store:           newEventStore(),
		cohorts:         make(map[string]*models.UserCohort),
		segments:        make(map[string]*models.UserSegment),
		retentionWindow: 7 * 24 * time.Hour,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordEvent appends one event to the log, timestamped with the engine
// clock. This is the only way events enter the engine.
func (e *Engine) RecordEvent(userID, eventName string, properties map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.append(models.AnalyticsEvent{
		UserID:     userID,
		EventName:  eventName,
		Timestamp:  e.now().UnixMilli(),
		Properties: properties,
	})
}

// ClearData resets the engine: the event log, its indexes, and all derived
// cohorts and segments are dropped.
func (e *Engine) ClearData() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.reset()
	e.cohorts = make(map[string]*models.UserCohort)
	e.segments = make(map[string]*models.UserSegment)
}

// EventCount returns the number of events in the log.
func (e *Engine) EventCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.store.events)
}

// UserCount returns the number of distinct users seen in the log.
func (e *Engine) UserCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.store.userOrder)
}
