package feature

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"fraud-scoring-engine/internal/domain/event"
)

// VelocityRecorder receives processed transactions for hot-window
// tracking. Best effort; the store remains the source of truth.
type VelocityRecorder interface {
	Record(ctx context.Context, evt *event.RawEvent) error
}

// EngineConfig tunes the aggregation engine's retry and window behavior
type EngineConfig struct {
	AmountHistoryDays   int
	MaxMinutesSinceLast int
	MaxWriteRetries     int
	RetryBackoff        time.Duration
	StoreTimeout        time.Duration
}

// Engine is the windowed aggregation engine. It consumes one event at
// a time and emits exactly one feature record per transaction_id.
//
// Correctness relies on two mechanisms:
//   - the feature store's unique constraint on transaction_id, which
//     makes duplicate delivery a benign no-op across engine instances;
//   - per-user serialization, so a user's events are processed in
//     non-decreasing event_time order even when the source only
//     guarantees per-partition ordering.
type Engine struct {
	events   event.Repository
	features Repository
	calc     *Calculator
	velocity VelocityRecorder
	cfg      EngineConfig

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewEngine creates an aggregation engine. velocity may be nil.
func NewEngine(events event.Repository, features Repository, velocity VelocityRecorder, cfg EngineConfig) *Engine {
	if cfg.MaxWriteRetries <= 0 {
		cfg.MaxWriteRetries = 5
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	return &Engine{
		events:   events,
		features: features,
		calc: NewCalculator(CalculatorConfig{
			AmountHistoryDays:   cfg.AmountHistoryDays,
			MaxMinutesSinceLast: cfg.MaxMinutesSinceLast,
		}),
		velocity:  velocity,
		cfg:       cfg,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// OnEvent processes a single transaction event.
//
// Returns the materialized record, ErrDuplicateRecord when the
// transaction was already processed (callers must still acknowledge
// the source event), or an error wrapping ErrStoreUnavailable when the
// store stayed down through the retry budget (poison pill).
func (e *Engine) OnEvent(ctx context.Context, evt *event.RawEvent) (*Record, error) {
	if err := evt.Validate(); err != nil {
		return nil, err
	}

	lock := e.userLock(evt.UserID)
	lock.Lock()
	defer lock.Unlock()

	// Archive the raw event first so the scoring side can distinguish
	// "not yet computed" from "unknown transaction", and so features
	// stay reproducible from the archive alone.
	if err := e.withRetry(ctx, "archive event", func(opCtx context.Context) error {
		return e.events.Save(opCtx, evt)
	}); err != nil {
		return nil, err
	}

	hist, err := e.loadHistory(ctx, evt)
	if err != nil {
		return nil, err
	}

	rec := e.calc.Calculate(evt, hist)

	var duplicate bool
	err = e.withRetry(ctx, "write features", func(opCtx context.Context) error {
		createErr := e.features.Create(opCtx, rec)
		if errors.Is(createErr, ErrDuplicateRecord) {
			duplicate = true
			return nil
		}
		return createErr
	})
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ErrDuplicateRecord
	}

	if e.velocity != nil {
		if verr := e.velocity.Record(ctx, evt); verr != nil {
			log.Printf("velocity cache record failed for %s: %v", evt.TransactionID, verr)
		}
	}

	return rec, nil
}

func (e *Engine) loadHistory(ctx context.Context, evt *event.RawEvent) (UserHistory, error) {
	var hist UserHistory

	from := evt.EventTime.Add(-time.Duration(e.calc.cfg.AmountHistoryDays) * 24 * time.Hour)

	err := e.withRetry(ctx, "load history", func(opCtx context.Context) error {
		events, err := e.events.ListUserHistory(opCtx, evt.UserID, from, evt.EventTime)
		if err != nil {
			return err
		}
		// The event was archived above; drop it from its own history
		prior := events[:0]
		for _, p := range events {
			if p.TransactionID != evt.TransactionID {
				prior = append(prior, p)
			}
		}

		var last *event.RawEvent
		if n := len(prior); n > 0 {
			last = prior[n-1]
		} else {
			last, err = e.events.LastBefore(opCtx, evt.UserID, evt.EventTime)
			if err != nil && !errors.Is(err, event.ErrEventNotFound) {
				return err
			}
		}

		home, err := e.events.FirstSeenCountry(opCtx, evt.UserID, evt.EventTime)
		if err != nil {
			return err
		}

		seen, err := e.events.HasPriorAtMerchant(opCtx, evt.UserID, evt.MerchantID, evt.EventTime)
		if err != nil {
			return err
		}

		hist = UserHistory{
			Events:       prior,
			LastEvent:    last,
			HomeCountry:  home,
			SeenMerchant: seen,
		}
		return nil
	})

	return hist, err
}

// withRetry runs op with a per-attempt store timeout and exponential
// backoff, classifying exhaustion as ErrStoreUnavailable
func (e *Engine) withRetry(ctx context.Context, what string, op func(context.Context) error) error {
	backoff := e.cfg.RetryBackoff
	var lastErr error

	for attempt := 1; attempt <= e.cfg.MaxWriteRetries; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
		lastErr = op(opCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		log.Printf("engine: %s attempt %d/%d failed: %v", what, attempt, e.cfg.MaxWriteRetries, lastErr)

		if attempt < e.cfg.MaxWriteRetries {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}

	return fmt.Errorf("%s after %d attempts: %v: %w", what, e.cfg.MaxWriteRetries, lastErr, ErrStoreUnavailable)
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.userLocks[userID] = l
	}
	return l
}
