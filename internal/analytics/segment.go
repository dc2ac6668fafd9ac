// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/rupiya-app/pulse/internal/models"
)

// Predicate decides segment membership for one userID.
type Predicate func(userID string) bool

// CreateSegment derives a named segment by evaluating the predicate over
// every distinct userID seen in the event log, in first-seen order. A user
// the log has never seen cannot become a member, whatever the predicate
// would say about them.
//
// The predicate itself is not stored; the segment's criteria records only
// the "custom" marker. Use CreateSegmentFromCriteria when the membership
// rule should remain visible on dashboards.
func (e *Engine) CreateSegment(name string, predicate Predicate, properties map[string]interface{}) models.UserSegment {
	e.mu.Lock()
	defer e.mu.Unlock()

	criteria := models.SegmentCriteria{Kind: models.SegmentCriteriaCustom}
	return e.createSegmentLocked(name, predicate, criteria, properties)
}

// CreateSegmentFromCriteria derives a segment from a serializable criteria
// descriptor. The descriptor is compiled to a predicate, evaluated once,
// and stored on the segment so the rule that produced the membership stays
// inspectable. Returns ErrInvalidCriteria for descriptors that cannot be
// compiled.
func (e *Engine) CreateSegmentFromCriteria(name string, criteria models.SegmentCriteria, properties map[string]interface{}) (models.UserSegment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	predicate, err := e.compileCriteria(criteria)
	if err != nil {
		return models.UserSegment{}, err
	}

	return e.createSegmentLocked(name, predicate, criteria, properties), nil
}

// createSegmentLocked snapshots matching users into a new stored segment.
// Callers must hold the engine lock.
func (e *Engine) createSegmentLocked(name string, predicate Predicate, criteria models.SegmentCriteria, properties map[string]interface{}) models.UserSegment {
	var users []string
	for _, userID := range e.store.userOrder {
		if predicate(userID) {
			users = append(users, userID)
		}
	}

	segment := &models.UserSegment{
		SegmentID:   uuid.NewString(),
		SegmentName: name,
		Criteria:    criteria,
		Users:       users,
		Size:        len(users),
		Properties:  properties,
	}
	e.segments[segment.SegmentID] = segment

	return snapshotSegment(segment)
}

// compileCriteria turns a criteria descriptor into a membership predicate.
// Callers must hold the engine lock; the returned predicate reads the
// store and is only valid while the lock is held.
func (e *Engine) compileCriteria(criteria models.SegmentCriteria) (Predicate, error) {
	switch criteria.Kind {
	case models.SegmentCriteriaPerformedEvent:
		if criteria.EventName == "" {
			return nil, fmt.Errorf("%w: performed_event requires event_name", ErrInvalidCriteria)
		}
		minCount := criteria.MinCount
		if minCount < 1 {
			minCount = 1
		}
		return func(userID string) bool {
			count := 0
			for _, pos := range e.store.userEvents(userID) {
				if e.store.events[pos].EventName == criteria.EventName {
					count++
					if count >= minCount {
						return true
					}
				}
			}
			return false
		}, nil

	case models.SegmentCriteriaMinEvents:
		minCount := criteria.MinCount
		if minCount < 1 {
			minCount = 1
		}
		return func(userID string) bool {
			return len(e.store.userEvents(userID)) >= minCount
		}, nil

	case models.SegmentCriteriaUserIDs:
		wanted := make(map[string]struct{}, len(criteria.UserIDs))
		for _, id := range criteria.UserIDs {
			wanted[id] = struct{}{}
		}
		return func(userID string) bool {
			_, ok := wanted[userID]
			return ok
		}, nil

	case models.SegmentCriteriaAllUsers:
		return func(string) bool { return true }, nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidCriteria, criteria.Kind)
	}
}

// GetSegmentProperties computes engagement statistics for one segment:
// average events per member (two decimals), the top five event names among
// member events, and a linear engagement score saturating at 100 once
// members average ten events each. Returns ErrSegmentNotFound for an
// unknown id.
func (e *Engine) GetSegmentProperties(segmentID string) (models.SegmentStats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	segment, ok := e.segments[segmentID]
	if !ok {
		return models.SegmentStats{}, fmt.Errorf("%w: %s", ErrSegmentNotFound, segmentID)
	}

	totalEvents := 0
	counts := make(map[string]int)
	var nameOrder []string
	for _, userID := range segment.Users {
		for _, pos := range e.store.userEvents(userID) {
			name := e.store.events[pos].EventName
			if _, seen := counts[name]; !seen {
				nameOrder = append(nameOrder, name)
			}
			counts[name]++
			totalEvents++
		}
	}

	average := 0.0
	if segment.Size > 0 {
		average = round2(float64(totalEvents) / float64(segment.Size))
	}

	top := make([]models.EventCount, 0, len(nameOrder))
	for _, name := range nameOrder {
		top = append(top, models.EventCount{EventName: name, Count: counts[name]})
	}
	// Stable sort keeps first-seen order among equal counts.
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > 5 {
		top = top[:5]
	}

	score := int(math.Round(average / 10 * 100))
	if score > 100 {
		score = 100
	}

	return models.SegmentStats{
		AverageEventsPerUser: average,
		TopEvents:            top,
		EngagementScore:      score,
	}, nil
}

// ListSegments returns all segments sorted by name, then id.
func (e *Engine) ListSegments() []models.UserSegment {
	e.mu.RLock()
	defer e.mu.RUnlock()

	segments := make([]models.UserSegment, 0, len(e.segments))
	for _, segment := range e.segments {
		segments = append(segments, snapshotSegment(segment))
	}
	sort.Slice(segments, func(i, j int) bool {
		if segments[i].SegmentName != segments[j].SegmentName {
			return segments[i].SegmentName < segments[j].SegmentName
		}
		return segments[i].SegmentID < segments[j].SegmentID
	})
	return segments
}

// snapshotSegment returns a defensive copy of a stored segment.
func snapshotSegment(segment *models.UserSegment) models.UserSegment {
	copied := *segment
	copied.Users = append([]string(nil), segment.Users...)
	return copied
}
