package feature

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-scoring-engine/internal/domain/event"
)

type memEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*event.RawEvent
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uuid.UUID]*event.RawEvent)}
}

func (r *memEventRepo) Save(_ context.Context, e *event.RawEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.TransactionID]; !ok {
		r.events[e.TransactionID] = e
	}
	return nil
}

func (r *memEventRepo) GetByTransactionID(_ context.Context, id uuid.UUID) (*event.RawEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return e, nil
}

func (r *memEventRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[id]
	return ok, nil
}

func (r *memEventRepo) ListUserHistory(_ context.Context, userID string, from, until time.Time) ([]*event.RawEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*event.RawEvent
	for _, e := range r.events {
		if e.UserID == userID && !e.EventTime.Before(from) && !e.EventTime.After(until) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventTime.Before(out[j].EventTime) })
	return out, nil
}

func (r *memEventRepo) LastBefore(_ context.Context, userID string, before time.Time) (*event.RawEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *event.RawEvent
	for _, e := range r.events {
		if e.UserID == userID && e.EventTime.Before(before) {
			if last == nil || e.EventTime.After(last.EventTime) {
				last = e
			}
		}
	}
	if last == nil {
		return nil, event.ErrEventNotFound
	}
	return last, nil
}

func (r *memEventRepo) FirstSeenCountry(_ context.Context, userID string, before time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first *event.RawEvent
	for _, e := range r.events {
		if e.UserID == userID && e.EventTime.Before(before) {
			if first == nil || e.EventTime.Before(first.EventTime) {
				first = e
			}
		}
	}
	if first == nil {
		return "", nil
	}
	return first.Country, nil
}

func (r *memEventRepo) HasPriorAtMerchant(_ context.Context, userID, merchantID string, before time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.UserID == userID && e.MerchantID == merchantID && e.EventTime.Before(before) {
			return true, nil
		}
	}
	return false, nil
}

type memFeatureRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
	failN   int // fail the next N Create calls
}

func newMemFeatureRepo() *memFeatureRepo {
	return &memFeatureRepo{records: make(map[uuid.UUID]*Record)}
}

func (r *memFeatureRepo) Create(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failN > 0 {
		r.failN--
		return errors.New("connection refused")
	}
	if _, ok := r.records[rec.TransactionID]; ok {
		return ErrDuplicateRecord
	}
	r.records[rec.TransactionID] = rec
	return nil
}

func (r *memFeatureRepo) GetByTransactionID(_ context.Context, id uuid.UUID) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

func (r *memFeatureRepo) ListLabeled(_ context.Context, from, until time.Time, limit int) ([]*Record, error) {
	return nil, nil
}

func testEngine(events event.Repository, features Repository) *Engine {
	return NewEngine(events, features, nil, EngineConfig{
		AmountHistoryDays:   30,
		MaxMinutesSinceLast: 10080,
		MaxWriteRetries:     3,
		RetryBackoff:        time.Millisecond,
		StoreTimeout:        time.Second,
	})
}

func TestEngineMaterializesRecord(t *testing.T) {
	events := newMemEventRepo()
	features := newMemFeatureRepo()
	engine := testEngine(events, features)

	evt := newEvent("u1", 50, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC))
	rec, err := engine.OnEvent(context.Background(), evt)
	require.NoError(t, err)
	require.NotNil(t, rec)

	// Event archived and features written
	exists, err := events.Exists(context.Background(), evt.TransactionID)
	require.NoError(t, err)
	assert.True(t, exists)

	stored, err := features.GetByTransactionID(context.Background(), evt.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TxnCount1h)
}

func TestEngineRedeliveryIsIdempotent(t *testing.T) {
	events := newMemEventRepo()
	features := newMemFeatureRepo()
	engine := testEngine(events, features)

	evt := newEvent("u1", 50, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC))

	_, err := engine.OnEvent(context.Background(), evt)
	require.NoError(t, err)

	// Redelivery of the same event is a benign, distinct outcome
	_, err = engine.OnEvent(context.Background(), evt)
	assert.ErrorIs(t, err, ErrDuplicateRecord)

	assert.Len(t, features.records, 1)
}

func TestEngineRecoversFromTransientFailure(t *testing.T) {
	events := newMemEventRepo()
	features := newMemFeatureRepo()
	features.failN = 2
	engine := testEngine(events, features)

	evt := newEvent("u1", 50, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC))
	_, err := engine.OnEvent(context.Background(), evt)
	require.NoError(t, err)
	assert.Len(t, features.records, 1)
}

func TestEngineSurfacesPoisonAfterRetryBudget(t *testing.T) {
	events := newMemEventRepo()
	features := newMemFeatureRepo()
	features.failN = 100
	engine := testEngine(events, features)

	evt := newEvent("u1", 50, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC))
	_, err := engine.OnEvent(context.Background(), evt)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestEngineRejectsInvalidEvent(t *testing.T) {
	engine := testEngine(newMemEventRepo(), newMemFeatureRepo())

	evt := newEvent("", 50, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC))
	_, err := engine.OnEvent(context.Background(), evt)
	assert.ErrorIs(t, err, event.ErrMissingUserID)
}

func TestEngineUsesArchivedHistory(t *testing.T) {
	events := newMemEventRepo()
	features := newMemFeatureRepo()
	engine := testEngine(events, features)

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	first := newEvent("u1", 100, now.Add(-30*time.Minute))
	second := newEvent("u1", 100, now)

	_, err := engine.OnEvent(context.Background(), first)
	require.NoError(t, err)

	rec, err := engine.OnEvent(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, 2, rec.TxnCount1h)
	assert.True(t, rec.AmountSum1h.Equal(decimal.NewFromInt(200)), "got %s", rec.AmountSum1h)
	require.NotNil(t, rec.MinutesSinceLastTxn)
	assert.Equal(t, 30, *rec.MinutesSinceLastTxn)
	assert.False(t, rec.MerchantFirstTime)
}
