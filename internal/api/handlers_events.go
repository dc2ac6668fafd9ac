// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package api

import (
	"net/http"
	"time"

	"github.com/rupiya-app/pulse/internal/logging"
	"github.com/rupiya-app/pulse/internal/metrics"
)

// IngestEventRequest is the payload for POST /api/v1/events.
type IngestEventRequest struct {
	UserID     string                 `json:"user_id" validate:"required,max=128"`
	EventName  string                 `json:"event_name" validate:"required,max=128"`
	Properties map[string]interface{} `json:"properties"`
}

// IngestEvent records a single analytics event. The server assigns the
// timestamp; client timestamps are not trusted.
func (h *Handler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req IngestEventRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	h.engine.RecordEvent(req.UserID, req.EventName, req.Properties)
	h.ClearCache()

	metrics.RecordEvent(req.EventName, h.engine.EventCount(), h.engine.UserCount())

	logging.Debug().
		Str("event_name", sanitizeLogValue(req.EventName)).
		Msg("event recorded")

	respondSuccess(w, http.StatusAccepted, map[string]interface{}{
		"recorded":     true,
		"total_events": h.engine.EventCount(),
	}, start)
}

// ClearEvents wipes the event log, cohorts, and segments. Intended for
// test fixtures and development resets.
func (h *Handler) ClearEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	h.engine.ClearData()
	h.ClearCache()

	metrics.EventLogSize.Set(0)
	metrics.DistinctUsers.Set(0)

	logging.Info().Msg("analytics state cleared")

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"cleared": true,
	}, start)
}
