// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package models

// SegmentCriteriaKind discriminates the supported segment membership rules.
type SegmentCriteriaKind string

const (
	// SegmentCriteriaPerformedEvent matches users who fired a named event
	// at least MinCount times (MinCount 0 is treated as 1).
	SegmentCriteriaPerformedEvent SegmentCriteriaKind = "performed_event"

	// SegmentCriteriaMinEvents matches users with at least MinCount events
	// of any name.
	SegmentCriteriaMinEvents SegmentCriteriaKind = "min_events"

	// SegmentCriteriaUserIDs matches an explicit list of userIDs.
	SegmentCriteriaUserIDs SegmentCriteriaKind = "user_ids"

	// SegmentCriteriaAllUsers matches every user seen in the event log.
	SegmentCriteriaAllUsers SegmentCriteriaKind = "all_users"

	// SegmentCriteriaCustom marks a segment built from an opaque in-process
	// predicate. The membership rule itself is not serializable; only this
	// marker is stored.
	SegmentCriteriaCustom SegmentCriteriaKind = "custom"
)

// SegmentCriteria is a serializable membership rule for a user segment.
//
// Segments created through the HTTP API carry one of the tagged kinds so the
// rule that produced the segment remains visible on dashboards. Segments
// created in-process from a raw predicate carry only the "custom" marker -
// the predicate is evaluated once at creation and never re-applied.
type SegmentCriteria struct {
	Kind SegmentCriteriaKind `json:"kind"`

	// EventName applies to the performed_event kind.
	EventName string `json:"event_name,omitempty"`

	// MinCount applies to the performed_event and min_events kinds.
	MinCount int `json:"min_count,omitempty"`

	// UserIDs applies to the user_ids kind.
	UserIDs []string `json:"user_ids,omitempty"`
}

// UserSegment is a named, frozen set of userIDs matching a membership rule
// evaluated once at creation time against the users seen in the event log.
// A userID that never recorded an event cannot be a member, regardless of
// the rule.
type UserSegment struct {
	// SegmentID is the unique identifier generated at creation time.
	SegmentID string `json:"segment_id"`

	// SegmentName is the caller-supplied display name.
	SegmentName string `json:"segment_name"`

	// Criteria describes the rule that selected the members.
	Criteria SegmentCriteria `json:"criteria"`

	// Users holds the matching userIDs in first-seen order.
	Users []string `json:"users"`

	// Size is len(Users).
	Size int `json:"size"`

	// Properties carries free-form caller-supplied metadata.
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// EventCount pairs an event name with its occurrence count, used for
// top-events rankings.
type EventCount struct {
	EventName string `json:"event_name"`
	Count     int    `json:"count"`
}

// SegmentStats holds derived engagement statistics for one segment.
type SegmentStats struct {
	// AverageEventsPerUser is total member events / segment size, rounded
	// to two decimals. Zero for an empty segment.
	AverageEventsPerUser float64 `json:"average_events_per_user"`

	// TopEvents are the five most frequent event names among member
	// events, most frequent first. Ties keep first-seen order.
	TopEvents []EventCount `json:"top_events"`

	// EngagementScore is min(100, round(AverageEventsPerUser / 10 * 100)):
	// a linear score saturating at 100 once members average 10 events each.
	EngagementScore int `json:"engagement_score"`
}
