package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// VelocityReader reads the hot transaction window kept by the
// aggregation engine
type VelocityReader interface {
	TransactionCount(ctx context.Context, userID string, window time.Duration) (int64, error)
	TransactionSum(ctx context.Context, userID string, window time.Duration) (decimal.Decimal, error)
}

// UserHandler serves user velocity profiles from the hot cache
type UserHandler struct {
	velocity VelocityReader
}

// NewUserHandler creates a new user handler
func NewUserHandler(velocity VelocityReader) *UserHandler {
	return &UserHandler{velocity: velocity}
}

// VelocityWindow is one trailing window of the profile
type VelocityWindow struct {
	TxnCount  int64           `json:"txn_count"`
	AmountSum decimal.Decimal `json:"amount_sum"`
}

// VelocityProfileResponse is the body of the velocity profile endpoint
type VelocityProfileResponse struct {
	UserID  string                    `json:"user_id"`
	Windows map[string]VelocityWindow `json:"windows"`
}

// GetVelocityProfile handles GET /api/v1/users/{id}/velocity
func (h *UserHandler) GetVelocityProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	windows := map[string]time.Duration{
		"1h":  time.Hour,
		"24h": 24 * time.Hour,
		"7d":  7 * 24 * time.Hour,
	}

	profile := VelocityProfileResponse{
		UserID:  userID,
		Windows: make(map[string]VelocityWindow, len(windows)),
	}

	for name, window := range windows {
		count, err := h.velocity.TransactionCount(r.Context(), userID, window)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "Velocity cache unavailable: "+err.Error())
			return
		}
		sum, err := h.velocity.TransactionSum(r.Context(), userID, window)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "Velocity cache unavailable: "+err.Error())
			return
		}
		profile.Windows[name] = VelocityWindow{TxnCount: count, AmountSum: sum}
	}

	writeJSON(w, http.StatusOK, profile)
}
