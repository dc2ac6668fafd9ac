// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

// Package analytics implements the in-memory product analytics engine:
// an append-only event log with cohort retention, funnel conversion,
// user segmentation, and activity aggregation queries on top of it.
//
// The engine is an explicit instance (analytics.NewEngine), never shared
// package state, so tests and callers control their own isolated copies.
// All state lives in process memory; nothing survives a restart. Events are
// indexed by user and by event name as they are recorded, so queries scan
// only the slice of the log they need while producing exactly the same
// ordering and rounding a full-log scan would.
//
// Derived objects follow snapshot semantics throughout: cohorts freeze
// their membership at creation, segments evaluate their membership rule
// once, and neither is re-evaluated when later events arrive.
//
// The engine is safe for concurrent use. Every operation takes the engine
// lock, so each mutation or query is atomic with respect to the others.
package analytics
