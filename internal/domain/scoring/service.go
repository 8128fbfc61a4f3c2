package scoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fraud-scoring-engine/internal/domain/event"
	"fraud-scoring-engine/internal/domain/feature"
	"fraud-scoring-engine/internal/domain/model"
)

// ServiceConfig tunes the scoring decision service
type ServiceConfig struct {
	Thresholds        Thresholds
	TopKFactors       int
	MaterialityCutoff float64

	// Bounded wait for features of transactions scored before the
	// aggregation engine catches up
	PollAttempts int
	PollInterval time.Duration
}

// Service is the scoring decision service. Stateless per request; the
// model snapshot and the stores are the only shared resources.
type Service struct {
	features  feature.Repository
	events    event.Repository
	alerts    AlertRepository
	publisher AlertPublisher
	models    SnapshotProvider
	cfg       ServiceConfig
}

// NewService creates the scoring decision service. publisher may be nil.
func NewService(
	features feature.Repository,
	events event.Repository,
	alerts AlertRepository,
	publisher AlertPublisher,
	models SnapshotProvider,
	cfg ServiceConfig,
) *Service {
	if cfg.TopKFactors <= 0 {
		cfg.TopKFactors = 5
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 5
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 20 * time.Millisecond
	}
	return &Service{
		features:  features,
		events:    events,
		alerts:    alerts,
		publisher: publisher,
		models:    models,
		cfg:       cfg,
	}
}

// Score runs the ensemble over a transaction's features and returns
// the three-tier decision. The caller is expected to bound ctx with
// the request deadline; Score fails fast once it expires.
func (s *Service) Score(ctx context.Context, transactionID uuid.UUID) (*Result, error) {
	start := time.Now()

	rec, err := s.awaitFeatures(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	snap, err := s.models.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	vector := model.Vectorize(rec)
	probability := snap.Supervised.Score(vector)
	anomaly := snap.Anomaly.Score(vector)
	decision := s.cfg.Thresholds.Decide(probability)

	res := &Result{
		TransactionID:    transactionID,
		FraudProbability: probability,
		AnomalyScore:     anomaly,
		Decision:         decision,
		RiskFactors:      s.riskFactors(snap.Supervised, vector),
		ModelVersion:     snap.Version,
		Timestamp:        time.Now().UTC(),
	}

	if decision != DecisionApprove {
		s.raiseAlert(ctx, res)
	}

	res.ProcessingTime = time.Since(start)
	return res, nil
}

// awaitFeatures loads the feature record, polling briefly when the raw
// event is already archived but features are not yet materialized
func (s *Service) awaitFeatures(ctx context.Context, id uuid.UUID) (*feature.Record, error) {
	for attempt := 1; ; attempt++ {
		rec, err := s.features.GetByTransactionID(ctx, id)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, feature.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		// No feature row. An archived raw event means the aggregation
		// engine just has not caught up; no raw event means the
		// transaction is unknown.
		if attempt == 1 {
			exists, exErr := s.events.Exists(ctx, id)
			if exErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, exErr)
			}
			if !exists {
				return nil, ErrNotFound
			}
		}

		if attempt >= s.cfg.PollAttempts {
			return nil, ErrNotReady
		}

		select {
		case <-time.After(s.cfg.PollInterval):
		case <-ctx.Done():
			return nil, ErrNotReady
		}
	}
}

// riskFactors derives the ordered set of human-readable contributors
// from the supervised model's ranking, filtered to the top K above
// the materiality cutoff
func (s *Service) riskFactors(m model.Explainable, vector []float64) []RiskFactor {
	values := make(map[string]float64, len(model.FeatureNames))
	for i, name := range model.FeatureNames {
		values[name] = vector[i]
	}

	factors := make([]RiskFactor, 0, s.cfg.TopKFactors)
	for _, c := range m.Contributions(vector) {
		if c.Weight <= s.cfg.MaterialityCutoff {
			break
		}
		factors = append(factors, RiskFactor{
			Feature:     c.Name,
			Value:       values[c.Name],
			Weight:      c.Weight,
			Description: describeFactor(c.Name, values[c.Name]),
		})
		if len(factors) == s.cfg.TopKFactors {
			break
		}
	}
	return factors
}

// raiseAlert persists the alert row and pushes it to the alert sink.
// Alerting is secondary to the decision itself: failures are logged
// loudly but do not change or fail the returned result.
func (s *Service) raiseAlert(ctx context.Context, res *Result) {
	alert := NewAlert(res)

	if err := s.alerts.Create(ctx, alert); err != nil {
		log.Printf("ALERT WRITE FAILED txn=%s decision=%s score=%.4f: %v",
			res.TransactionID, res.Decision, res.FraudProbability, err)
	}

	if s.publisher != nil {
		go func() {
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.publisher.Publish(pubCtx, alert); err != nil {
				log.Printf("alert publish failed txn=%s: %v", res.TransactionID, err)
			}
		}()
	}
}

// RecentAlerts exposes the latest alerts for the ops endpoint
func (s *Service) RecentAlerts(ctx context.Context, limit int) ([]*Alert, error) {
	return s.alerts.ListRecent(ctx, limit)
}

// AlertStats returns the decision distribution of alerts since a time
func (s *Service) AlertStats(ctx context.Context, since time.Time) (map[Decision]int64, error) {
	return s.alerts.CountByDecision(ctx, since)
}
