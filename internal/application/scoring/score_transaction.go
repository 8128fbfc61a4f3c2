package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fraud-scoring-engine/internal/application/dto"
	"fraud-scoring-engine/internal/domain/scoring"
	"fraud-scoring-engine/internal/pkg/telemetry"
)

// maxBatchConcurrency bounds parallel store and model work per batch
const maxBatchConcurrency = 8

// ScoreTransactionUseCase drives the scoring decision service for HTTP
// callers: it bounds each request with the configured deadline and
// records decision telemetry.
type ScoreTransactionUseCase struct {
	service        *scoring.Service
	metrics        *telemetry.Metrics
	requestTimeout time.Duration
}

// NewScoreTransactionUseCase creates the scoring use case
func NewScoreTransactionUseCase(service *scoring.Service, metrics *telemetry.Metrics, requestTimeout time.Duration) *ScoreTransactionUseCase {
	if requestTimeout <= 0 {
		requestTimeout = 500 * time.Millisecond
	}
	return &ScoreTransactionUseCase{
		service:        service,
		metrics:        metrics,
		requestTimeout: requestTimeout,
	}
}

// Execute scores a single transaction
func (uc *ScoreTransactionUseCase) Execute(ctx context.Context, transactionID uuid.UUID) (*dto.ScoreResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.requestTimeout)
	defer cancel()

	res, err := uc.service.Score(ctx, transactionID)
	if err != nil {
		if errors.Is(err, scoring.ErrNotReady) {
			uc.metrics.FeatureWaitMiss.Inc()
		}
		return nil, err
	}

	uc.metrics.ObserveDecision(string(res.Decision), res.ProcessingTime)
	return dto.FromResult(res), nil
}

// ExecuteBatch scores a set of transactions concurrently. Individual
// failures do not abort the batch; each item carries its own outcome.
func (uc *ScoreTransactionUseCase) ExecuteBatch(ctx context.Context, transactionIDs []string) (*dto.BatchScoreResponse, error) {
	items := make([]dto.BatchScoreItem, len(transactionIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchConcurrency)

	for i, raw := range transactionIDs {
		g.Go(func() error {
			items[i].TransactionID = raw

			id, err := uuid.Parse(raw)
			if err != nil {
				items[i].Error = "invalid transaction_id"
				return nil
			}

			res, err := uc.Execute(gctx, id)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Result = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.BatchScoreResponse{Results: items}
	for _, item := range items {
		if item.Error == "" {
			out.Scored++
		} else {
			out.Failed++
		}
	}
	return out, nil
}
