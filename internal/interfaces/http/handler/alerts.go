package handler

import (
	"net/http"
	"strconv"
	"time"

	"fraud-scoring-engine/internal/application/dto"
	"fraud-scoring-engine/internal/domain/scoring"
)

// AlertHandler exposes persisted alerts to investigators
type AlertHandler struct {
	service *scoring.Service
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(service *scoring.Service) *AlertHandler {
	return &AlertHandler{service: service}
}

// ListAlerts handles GET /api/v1/alerts
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	alerts, err := h.service.RecentAlerts(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list alerts: "+err.Error())
		return
	}

	out := make([]dto.AlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = dto.FromAlert(a)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": out,
		"count":  len(out),
	})
}

// AlertStats handles GET /api/v1/alerts/stats
func (h *AlertHandler) AlertStats(w http.ResponseWriter, r *http.Request) {
	window := 24 * time.Hour
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "window must be a positive duration")
			return
		}
		window = parsed
	}

	since := time.Now().Add(-window)
	counts, err := h.service.AlertStats(r.Context(), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get alert stats: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"since":  since.UTC().Format(time.RFC3339),
		"review": counts[scoring.DecisionReview],
		"block":  counts[scoring.DecisionBlock],
	})
}
