package scoring

import (
	"time"

	"github.com/google/uuid"
)

// Decision is the three-tier outcome of scoring a transaction
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReview  Decision = "REVIEW"
	DecisionBlock   Decision = "BLOCK"
)

// Result is the scoring decision service's answer for one transaction
type Result struct {
	TransactionID    uuid.UUID     `json:"transaction_id"`
	FraudProbability float64       `json:"fraud_probability"`
	AnomalyScore     float64       `json:"anomaly_score"`
	Decision         Decision      `json:"decision"`
	RiskFactors      []RiskFactor  `json:"risk_factors"`
	ModelVersion     string        `json:"model_version"`
	ProcessingTime   time.Duration `json:"processing_time"`
	Timestamp        time.Time     `json:"timestamp"`
}

// RiskFactor is a human-readable top contributor to the fraud
// probability, ordered by contribution
type RiskFactor struct {
	Feature     string  `json:"feature"`
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Alert persists a non-APPROVE decision for downstream investigation.
// Alerts stay until they are resolved externally; this system only
// creates them.
type Alert struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Decision      Decision  `json:"decision"`
	Score         float64   `json:"score"`
	AnomalyScore  float64   `json:"anomaly_score"`
	ModelVersion  string    `json:"model_version"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewAlert creates an alert for a REVIEW or BLOCK result
func NewAlert(res *Result) *Alert {
	return &Alert{
		ID:            uuid.New(),
		TransactionID: res.TransactionID,
		Decision:      res.Decision,
		Score:         res.FraudProbability,
		AnomalyScore:  res.AnomalyScore,
		ModelVersion:  res.ModelVersion,
		CreatedAt:     res.Timestamp,
	}
}
