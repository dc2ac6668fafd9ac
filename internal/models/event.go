// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

// Package models provides data structures shared across the Pulse application.
// This file contains the core analytics event type that every analytics query
// is ultimately derived from.
package models

// AnalyticsEvent is one timestamped user action recorded by the Rupiya PWA
// instrumentation (screen views, expense entries, budget edits, signups).
//
// Events are immutable once recorded: they are never updated or deleted
// individually, only cleared wholesale when the analytics engine is reset.
type AnalyticsEvent struct {
	// UserID identifies the user who performed the action.
	UserID string `json:"user_id"`

	// EventName is the instrumentation name of the action, e.g.
	// "user_signup", "expense_created", "budget_viewed".
	EventName string `json:"event_name"`

	// Timestamp is the event time in Unix epoch milliseconds.
	Timestamp int64 `json:"timestamp"`

	// Properties carries free-form event attributes supplied by the caller.
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// SignupEventName is the event name that defines cohort membership.
// Users whose signup event falls inside a cohort's date window belong
// to that cohort.
const SignupEventName = "user_signup"
