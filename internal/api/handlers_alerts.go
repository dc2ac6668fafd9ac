// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rupiya-app/pulse/internal/alerting"
	"github.com/rupiya-app/pulse/internal/metrics"
)

// DurationSampleRequest is the payload for timing-based perf reports.
type DurationSampleRequest struct {
	DurationMs float64 `json:"duration_ms" validate:"gte=0"`
}

// NamedDurationSampleRequest adds an identifier to a timing report.
type NamedDurationSampleRequest struct {
	Name       string  `json:"name" validate:"required,max=256"`
	DurationMs float64 `json:"duration_ms" validate:"gte=0"`
}

// EndpointDurationSampleRequest reports an observed API call duration.
type EndpointDurationSampleRequest struct {
	Endpoint   string  `json:"endpoint" validate:"required,max=256"`
	DurationMs float64 `json:"duration_ms" validate:"gte=0"`
}

// ResourceSizeSampleRequest reports a loaded asset size.
type ResourceSizeSampleRequest struct {
	Name      string  `json:"name" validate:"required,max=256"`
	SizeBytes float64 `json:"size_bytes" validate:"gte=0"`
}

// alertCheckResponse reports whether a sample breached its threshold.
type alertCheckResponse struct {
	Triggered bool                       `json:"triggered"`
	Alert     *alerting.PerformanceAlert `json:"alert,omitempty"`
}

func (h *Handler) respondAlertCheck(w http.ResponseWriter, alert *alerting.PerformanceAlert, start time.Time) {
	respondSuccess(w, http.StatusOK, alertCheckResponse{
		Triggered: alert != nil,
		Alert:     alert,
	}, start)
}

// ReportPageLoad checks a page load duration against the threshold.
func (h *Handler) ReportPageLoad(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req DurationSampleRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	h.perfMon.RecordMetric("pageLoadTime", req.DurationMs, "ms")
	alert := h.alerts.CheckPageLoadTime(req.DurationMs)
	h.respondAlertCheck(w, alert, start)
}

// ReportDomContentLoaded checks a DOM-ready duration against the threshold.
func (h *Handler) ReportDomContentLoaded(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req DurationSampleRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	h.perfMon.RecordMetric("domContentLoaded", req.DurationMs, "ms")
	alert := h.alerts.CheckDomContentLoaded(req.DurationMs)
	h.respondAlertCheck(w, alert, start)
}

// ReportAPIResponse checks an observed API call duration against the
// threshold.
func (h *Handler) ReportAPIResponse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req EndpointDurationSampleRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	h.perfMon.RecordMetric("apiResponseTime", req.DurationMs, "ms")
	alert := h.alerts.CheckAPIResponseTime(req.Endpoint, req.DurationMs)
	h.respondAlertCheck(w, alert, start)
}

// ReportLongTask checks a long task duration against the threshold.
func (h *Handler) ReportLongTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req NamedDurationSampleRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	h.perfMon.RecordMetric("longTask", req.DurationMs, "ms")
	alert := h.alerts.CheckLongTask(req.Name, req.DurationMs)
	h.respondAlertCheck(w, alert, start)
}

// ReportResourceSize checks a loaded asset size against the threshold.
func (h *Handler) ReportResourceSize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ResourceSizeSampleRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	h.perfMon.RecordMetric("resourceSize", req.SizeBytes, "bytes")
	alert := h.alerts.CheckResourceSize(req.Name, req.SizeBytes)
	h.respondAlertCheck(w, alert, start)
}

// ListAlerts returns active alerts, optionally filtered by severity.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	severity := r.URL.Query().Get("severity")
	if severity != "" {
		switch alerting.Severity(severity) {
		case alerting.SeverityInfo, alerting.SeverityWarning, alerting.SeverityCritical:
			respondSuccess(w, http.StatusOK, h.alerts.GetAlertsBySeverity(alerting.Severity(severity)), start)
		default:
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "severity must be one of: info, warning, critical", nil)
		}
		return
	}

	respondSuccess(w, http.StatusOK, h.alerts.GetActiveAlerts(), start)
}

// ResolveAlert marks an alert as resolved.
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	alertID := chi.URLParam(r, "id")
	if !h.alerts.ResolveAlert(alertID) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "alert not found", nil)
		return
	}

	metrics.AlertsResolved.Inc()
	metrics.AlertsActive.Set(float64(len(h.alerts.GetActiveAlerts())))

	if h.wsHub != nil {
		h.wsHub.BroadcastAlertResolved(alertID)
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"resolved": true,
		"alert_id": alertID,
	}, start)
}

// ClearAlerts removes all alerts, including resolved history.
func (h *Handler) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	h.alerts.ClearAlerts()
	metrics.AlertsActive.Set(0)

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"cleared": true,
	}, start)
}

// AlertStatistics returns all-time alert counts by state and severity.
func (h *Handler) AlertStatistics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.alerts.GetAlertStatistics(), start)
}

// AlertRecommendations returns deduplicated optimization hints for
// active alerts.
func (h *Handler) AlertRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.alerts.GetOptimizationRecommendations(), start)
}

// BudgetStatus evaluates supplied metric values against the fixed
// performance budget catalogue. Metric values are passed as query
// parameters named after the budget metrics.
func (h *Handler) BudgetStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	observed := make(map[string]float64)
	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		if v, err := strconv.ParseFloat(values[0], 64); err == nil {
			observed[key] = v
		}
	}

	respondSuccess(w, http.StatusOK, h.alerts.GetPerformanceBudgetStatus(observed), start)
}

// GetThresholds returns the current alert thresholds.
func (h *Handler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.alerts.Thresholds(), start)
}

// SetThresholdRequest is the payload for PUT /api/v1/alerts/thresholds/{metric}.
type SetThresholdRequest struct {
	Value float64 `json:"value" validate:"gt=0"`
}

// SetThreshold updates one alert threshold at runtime.
func (h *Handler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	metric := chi.URLParam(r, "metric")

	var req SetThresholdRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if err := h.alerts.SetThreshold(metric, req.Value); err != nil {
		if errors.Is(err, alerting.ErrUnknownMetric) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown threshold metric: "+metric, nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to set threshold", err)
		return
	}

	respondSuccess(w, http.StatusOK, h.alerts.Thresholds(), start)
}

// ExportAlerts returns a pretty-printed JSON dump of alerts,
// statistics, and thresholds.
func (h *Handler) ExportAlerts(w http.ResponseWriter, r *http.Request) {
	data, err := h.alerts.ExportJSON()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to export alerts", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="alerts-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
