// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package api

import (
	"net/http"
	"time"
)

// PerfStats returns aggregated latency percentiles per tracked endpoint.
func (h *Handler) PerfStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.perfMon.GetStats(), start)
}

// ExportMetricsCSV streams all recorded metric samples as CSV.
func (h *Handler) ExportMetricsCSV(w http.ResponseWriter, r *http.Request) {
	csv, err := h.perfMon.ExportMetricsCSV()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to export metrics CSV", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="metrics.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

// ExportRequestsCSV streams all recorded request samples as CSV.
func (h *Handler) ExportRequestsCSV(w http.ResponseWriter, r *http.Request) {
	csv, err := h.perfMon.ExportRequestsCSV()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to export requests CSV", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="requests.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

// ExportMetricsJSON streams recorded samples as pretty-printed JSON.
func (h *Handler) ExportMetricsJSON(w http.ResponseWriter, r *http.Request) {
	data, err := h.perfMon.ExportJSON()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to export metrics JSON", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="metrics.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
