// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package analytics

import "github.com/rupiya-app/pulse/internal/models"

// eventStore is the append-only event log plus the incremental indexes the
// query methods run against. It is not safe for concurrent use on its own;
// the Engine serializes access through its lock.
//
// Indexes hold positions into events rather than copies, so the log remains
// the single source of truth for ordering.
type eventStore struct {
	events []models.AnalyticsEvent

	// byUser and byName map to ascending positions in events.
	byUser map[string][]int
	byName map[string][]int

	// userOrder preserves first-seen order of userIDs. Queries that rank or
	// enumerate users iterate this slice so ties and membership evaluation
	// are deterministic.
	userOrder []string
}

func newEventStore() *eventStore {
	return &eventStore{
		byUser: make(map[string][]int),
		byName: make(map[string][]int),
	}
}

// append records one event. No validation, no size bound, no dedup.
func (s *eventStore) append(event models.AnalyticsEvent) {
	pos := len(s.events)
	s.events = append(s.events, event)

	if _, seen := s.byUser[event.UserID]; !seen {
		s.userOrder = append(s.userOrder, event.UserID)
	}
	s.byUser[event.UserID] = append(s.byUser[event.UserID], pos)
	s.byName[event.EventName] = append(s.byName[event.EventName], pos)
}

// reset drops the log and all indexes.
func (s *eventStore) reset() {
	s.events = nil
	s.byUser = make(map[string][]int)
	s.byName = make(map[string][]int)
	s.userOrder = nil
}

// userEvents returns the positions of one user's events, in record order.
func (s *eventStore) userEvents(userID string) []int {
	return s.byUser[userID]
}

// namedEvents returns the positions of events with the given name, in
// record order.
func (s *eventStore) namedEvents(eventName string) []int {
	return s.byName[eventName]
}

// distinctUsersFor returns the number of distinct users among events with
// the given name.
func (s *eventStore) distinctUsersFor(eventName string) int {
	seen := make(map[string]struct{})
	for _, pos := range s.byName[eventName] {
		seen[s.events[pos].UserID] = struct{}{}
	}
	return len(seen)
}

// hasEventAtOrAfter reports whether the user has at least one event with
// timestamp >= cutoff (epoch milliseconds).
func (s *eventStore) hasEventAtOrAfter(userID string, cutoff int64) bool {
	positions := s.byUser[userID]
	// Positions are in record order and timestamps are assigned from the
	// engine clock at record time, so scanning from the tail finds recent
	// events first.
	for i := len(positions) - 1; i >= 0; i-- {
		if s.events[positions[i]].Timestamp >= cutoff {
			return true
		}
	}
	return false
}
