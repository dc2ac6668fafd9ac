// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package models

// UserActivity ranks one user by total recorded events.
type UserActivity struct {
	UserID     string `json:"user_id"`
	EventCount int    `json:"event_count"`
}
