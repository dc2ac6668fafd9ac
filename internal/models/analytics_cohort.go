// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

// This file contains cohort retention analytics models for user engagement
// tracking, following the convention of fixed day-offset retention buckets
// used by Mixpanel, Amplitude, and similar platforms.
package models

import "time"

// UserCohort represents a fixed set of users grouped by signup date window.
//
// Membership is a snapshot taken at creation time: signup events recorded
// after the cohort is created never change Users or Size, even when their
// timestamps fall inside the cohort's window.
type UserCohort struct {
	// CohortID is the unique identifier generated at creation time.
	CohortID string `json:"cohort_id"`

	// StartDate is the beginning of the signup window that defined the cohort.
	StartDate time.Time `json:"start_date"`

	// Users holds the userIDs whose signup event fell inside the window,
	// in the order they first appeared in the event log.
	Users []string `json:"users"`

	// Size is len(Users), denormalized for dashboard convenience.
	Size int `json:"size"`

	// RetentionRate is the integer percentage [0,100] of cohort members
	// with at least one event in the 7 days preceding cohort creation.
	// It is computed once, at creation, against wall-clock time - not
	// against the cohort's own start date.
	RetentionRate int `json:"retention_rate"`
}

// RetentionData holds per-cohort retention counts at the canonical day
// offsets. Each DayN field is the count of cohort members with at least one
// event at or after cohortStart + N days.
//
// Only the five canonical offsets (0, 1, 7, 30, 90) are represented here;
// retention requested at other offsets is computed but has no field to land
// in and is discarded.
type RetentionData struct {
	// CohortDate is the cohort start date as an ISO date string (YYYY-MM-DD).
	CohortDate string `json:"cohort_date"`

	Day0  int `json:"day0"`
	Day1  int `json:"day1"`
	Day7  int `json:"day7"`
	Day30 int `json:"day30"`
	Day90 int `json:"day90"`
}

// DefaultRetentionDays are the day offsets computed when a retention query
// does not specify its own.
var DefaultRetentionDays = []int{0, 1, 7, 30, 90}
