package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fraud-scoring-engine/internal/application/dto"
	scoringapp "fraud-scoring-engine/internal/application/scoring"
	"fraud-scoring-engine/internal/domain/scoring"
)

// ScoreHandler handles scoring HTTP requests
type ScoreHandler struct {
	scoreUseCase *scoringapp.ScoreTransactionUseCase
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scoreUseCase *scoringapp.ScoreTransactionUseCase) *ScoreHandler {
	return &ScoreHandler{scoreUseCase: scoreUseCase}
}

// Score handles POST /api/v1/score
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req dto.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id, err := req.ToTransactionID()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.scoreUseCase.Execute(r.Context(), id)
	if err != nil {
		writeScoringError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// BatchScore handles POST /api/v1/score/batch
func (h *ScoreHandler) BatchScore(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.TransactionIDs) == 0 {
		writeError(w, http.StatusBadRequest, "No transaction IDs provided")
		return
	}

	if len(req.TransactionIDs) > 100 {
		writeError(w, http.StatusBadRequest, "Maximum 100 transactions per batch")
		return
	}

	result, err := h.scoreUseCase.ExecuteBatch(r.Context(), req.TransactionIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Batch scoring failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeScoringError maps domain scoring errors to HTTP statuses. The
// NotFound/NotReady split matters to callers: NotReady is retryable,
// NotFound is not.
func writeScoringError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scoring.ErrNotFound):
		writeError(w, http.StatusNotFound, "Unknown transaction")
	case errors.Is(err, scoring.ErrNotReady):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusConflict, "Features not yet materialized, retry shortly")
	case errors.Is(err, scoring.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Feature store unavailable, retry later")
	case errors.Is(err, scoring.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "No model loaded")
	default:
		writeError(w, http.StatusInternalServerError, "Scoring failed: "+err.Error())
	}
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
