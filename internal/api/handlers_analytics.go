// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rupiya-app/pulse/internal/analytics"
	"github.com/rupiya-app/pulse/internal/metrics"
	"github.com/rupiya-app/pulse/internal/models"
)

// AnalyticsDistribution returns event counts grouped by event name.
func (h *Handler) AnalyticsDistribution(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("distribution", time.Now())

	h.cachedQuery(w, "analytics:distribution", func() interface{} {
		return h.engine.GetEventDistribution()
	})
}

// AnalyticsJourney returns one user's events in chronological order.
func (h *Handler) AnalyticsJourney(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("journey", time.Now())

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id is required", nil)
		return
	}

	start := time.Now()
	journey := h.engine.GetUserJourney(userID)
	respondSuccess(w, http.StatusOK, journey, start)
}

// AnalyticsTopUsers returns the most active users by event count.
func (h *Handler) AnalyticsTopUsers(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("top_users", time.Now())

	limit := getIntParam(r, "limit", analytics.DefaultTopUsersLimit)

	start := time.Now()
	users := h.engine.GetTopUsersByActivity(limit)
	respondSuccess(w, http.StatusOK, users, start)
}

// AnalyticsAdoption returns the integer percentage of users who
// performed the named event.
func (h *Handler) AnalyticsAdoption(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("adoption", time.Now())

	event := r.URL.Query().Get("event")
	if event == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "event is required", nil)
		return
	}

	start := time.Now()
	rate := h.engine.GetFeatureAdoptionRate(event)
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"event_name":    event,
		"adoption_rate": rate,
	}, start)
}

// AnalyticsFrequency returns per-day usage counts for the named event.
func (h *Handler) AnalyticsFrequency(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("frequency", time.Now())

	event := r.URL.Query().Get("event")
	if event == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "event is required", nil)
		return
	}

	start := time.Now()
	frequency := h.engine.GetFeatureUsageFrequency(event)
	respondSuccess(w, http.StatusOK, frequency, start)
}

// CreateCohortRequest is the payload for POST /api/v1/analytics/cohorts.
type CreateCohortRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// CreateCohort builds a signup cohort from an inclusive date window.
func (h *Handler) CreateCohort(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("cohort", time.Now())

	var req CreateCohortRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	startDate, _ := time.ParseInLocation("2006-01-02", req.StartDate, time.UTC)
	endDate, _ := time.ParseInLocation("2006-01-02", req.EndDate, time.UTC)
	// The window is inclusive of the whole end day.
	endDate = endDate.Add(24*time.Hour - time.Millisecond)

	if endDate.Before(startDate) {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "end_date must not be before start_date", nil)
		return
	}

	start := time.Now()
	cohort := h.engine.CreateCohort(startDate, endDate)
	respondSuccess(w, http.StatusCreated, cohort, start)
}

// ListCohorts returns all cohorts ordered by start date.
func (h *Handler) ListCohorts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.engine.ListCohorts(), start)
}

// CohortRetention returns retention counts at the canonical day offsets
// for one cohort. Custom offsets may be requested via ?days=0,1,7.
func (h *Handler) CohortRetention(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("retention", time.Now())

	cohortID := chi.URLParam(r, "id")
	days := parseCommaSeparatedInts(r.URL.Query().Get("days"))

	start := time.Now()
	retention, err := h.engine.GetCohortRetention(cohortID, days...)
	if err != nil {
		if errors.Is(err, analytics.ErrCohortNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "cohort not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to compute retention", err)
		return
	}

	respondSuccess(w, http.StatusOK, retention, start)
}

// FunnelRequest is the payload for POST /api/v1/analytics/funnel.
type FunnelRequest struct {
	Steps []string `json:"steps" validate:"required,min=1,dive,required"`
}

// AnalyzeFunnel computes step-to-step conversion for an ordered list of
// event names.
func (h *Handler) AnalyzeFunnel(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("funnel", time.Now())

	var req FunnelRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()
	steps := h.engine.AnalyzeFunnel(req.Steps)
	respondSuccess(w, http.StatusOK, steps, start)
}

// CreateSegmentRequest is the payload for POST /api/v1/analytics/segments.
type CreateSegmentRequest struct {
	Name       string                 `json:"name" validate:"required,max=128"`
	Criteria   models.SegmentCriteria `json:"criteria"`
	Properties map[string]interface{} `json:"properties"`
}

// CreateSegment builds a user segment from a serializable criteria
// descriptor.
func (h *Handler) CreateSegment(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("segment", time.Now())

	var req CreateSegmentRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()
	segment, err := h.engine.CreateSegmentFromCriteria(req.Name, req.Criteria, req.Properties)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidCriteria) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create segment", err)
		return
	}

	respondSuccess(w, http.StatusCreated, segment, start)
}

// ListSegments returns all segments ordered by name.
func (h *Handler) ListSegments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.engine.ListSegments(), start)
}

// SegmentProperties returns derived engagement statistics for one segment.
func (h *Handler) SegmentProperties(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("segment_properties", time.Now())

	segmentID := chi.URLParam(r, "id")

	start := time.Now()
	stats, err := h.engine.GetSegmentProperties(segmentID)
	if err != nil {
		if errors.Is(err, analytics.ErrSegmentNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "segment not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to compute segment properties", err)
		return
	}

	respondSuccess(w, http.StatusOK, stats, start)
}

// observeQuery records analytics query latency.
func observeQuery(query string, start time.Time) {
	metrics.RecordAnalyticsQuery(query, time.Since(start))
}
