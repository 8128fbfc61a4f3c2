package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"fraud-scoring-engine/internal/domain/scoring"
)

// ScoreRequest is the body of POST /api/v1/score
type ScoreRequest struct {
	TransactionID string `json:"transaction_id"`
}

// ToTransactionID validates and parses the request
func (r *ScoreRequest) ToTransactionID() (uuid.UUID, error) {
	if r.TransactionID == "" {
		return uuid.Nil, fmt.Errorf("transaction_id is required")
	}
	id, err := uuid.Parse(r.TransactionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid transaction_id: %w", err)
	}
	return id, nil
}

// BatchScoreRequest is the body of POST /api/v1/score/batch
type BatchScoreRequest struct {
	TransactionIDs []string `json:"transaction_ids"`
}

// ScoreResponse is the scoring result returned to callers
type ScoreResponse struct {
	TransactionID    string               `json:"transaction_id"`
	FraudProbability float64              `json:"fraud_probability"`
	AnomalyScore     float64              `json:"anomaly_score"`
	Decision         string               `json:"decision"`
	RiskFactors      []RiskFactorResponse `json:"risk_factors"`
	ModelVersion     string               `json:"model_version"`
	LatencyMs        int64                `json:"latency_ms"`
	Timestamp        time.Time            `json:"timestamp"`
}

// RiskFactorResponse is one explained contributor
type RiskFactorResponse struct {
	Feature     string  `json:"feature"`
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// FromResult maps a domain result to the response shape
func FromResult(res *scoring.Result) *ScoreResponse {
	factors := make([]RiskFactorResponse, len(res.RiskFactors))
	for i, f := range res.RiskFactors {
		factors[i] = RiskFactorResponse{
			Feature:     f.Feature,
			Value:       f.Value,
			Weight:      f.Weight,
			Description: f.Description,
		}
	}
	return &ScoreResponse{
		TransactionID:    res.TransactionID.String(),
		FraudProbability: res.FraudProbability,
		AnomalyScore:     res.AnomalyScore,
		Decision:         string(res.Decision),
		RiskFactors:      factors,
		ModelVersion:     res.ModelVersion,
		LatencyMs:        res.ProcessingTime.Milliseconds(),
		Timestamp:        res.Timestamp,
	}
}

// BatchScoreItem is one entry of a batch response; exactly one of
// Result and Error is set
type BatchScoreItem struct {
	TransactionID string         `json:"transaction_id"`
	Result        *ScoreResponse `json:"result,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// BatchScoreResponse is the body of a batch scoring response
type BatchScoreResponse struct {
	Results []BatchScoreItem `json:"results"`
	Scored  int              `json:"scored"`
	Failed  int              `json:"failed"`
}

// AlertResponse is one persisted alert
type AlertResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	Decision      string    `json:"decision"`
	Score         float64   `json:"score"`
	AnomalyScore  float64   `json:"anomaly_score"`
	ModelVersion  string    `json:"model_version"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromAlert maps a domain alert to the response shape
func FromAlert(a *scoring.Alert) AlertResponse {
	return AlertResponse{
		ID:            a.ID.String(),
		TransactionID: a.TransactionID.String(),
		Decision:      string(a.Decision),
		Score:         a.Score,
		AnomalyScore:  a.AnomalyScore,
		ModelVersion:  a.ModelVersion,
		CreatedAt:     a.CreatedAt,
	}
}
