package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-scoring-engine/internal/domain/event"
	"fraud-scoring-engine/internal/domain/feature"
	"fraud-scoring-engine/internal/domain/model"
)

// stubFeatureRepo serves a fixed record after a configurable number of
// misses, or a permanent error
type stubFeatureRepo struct {
	mu        sync.Mutex
	record    *feature.Record
	missFirst int
	err       error
	calls     int
}

func (r *stubFeatureRepo) GetByTransactionID(_ context.Context, id uuid.UUID) (*feature.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.record == nil || r.calls <= r.missFirst {
		return nil, feature.ErrRecordNotFound
	}
	return r.record, nil
}

func (r *stubFeatureRepo) Create(context.Context, *feature.Record) error { return nil }
func (r *stubFeatureRepo) ListLabeled(context.Context, time.Time, time.Time, int) ([]*feature.Record, error) {
	return nil, nil
}

type stubEventRepo struct {
	exists bool
	err    error
}

func (r *stubEventRepo) Exists(context.Context, uuid.UUID) (bool, error) {
	return r.exists, r.err
}
func (r *stubEventRepo) Save(context.Context, *event.RawEvent) error { return nil }
func (r *stubEventRepo) GetByTransactionID(context.Context, uuid.UUID) (*event.RawEvent, error) {
	return nil, event.ErrEventNotFound
}
func (r *stubEventRepo) ListUserHistory(context.Context, string, time.Time, time.Time) ([]*event.RawEvent, error) {
	return nil, nil
}
func (r *stubEventRepo) LastBefore(context.Context, string, time.Time) (*event.RawEvent, error) {
	return nil, event.ErrEventNotFound
}
func (r *stubEventRepo) FirstSeenCountry(context.Context, string, time.Time) (string, error) {
	return "", nil
}
func (r *stubEventRepo) HasPriorAtMerchant(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}

type stubAlertRepo struct {
	mu     sync.Mutex
	alerts []*Alert
}

func (r *stubAlertRepo) Create(_ context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}
func (r *stubAlertRepo) ListRecent(context.Context, int) ([]*Alert, error) {
	return nil, nil
}
func (r *stubAlertRepo) CountByDecision(context.Context, time.Time) (map[Decision]int64, error) {
	return nil, nil
}

type stubSnapshots struct {
	snap *model.Snapshot
	err  error
}

func (s *stubSnapshots) Snapshot() (*model.Snapshot, error) { return s.snap, s.err }

// snapshotWithBias builds a model set whose supervised probability is
// sigmoid(bias) regardless of input
func snapshotWithBias(bias float64) *model.Snapshot {
	n := len(model.FeatureNames)
	return &model.Snapshot{
		Version: "v-test",
		Supervised: &model.LogisticModel{
			Features: model.FeatureNames,
			Weights:  make([]float64, n),
			Bias:     bias,
			Means:    make([]float64, n),
			Stds:     ones(n),
		},
		Anomaly: &model.AnomalyDetector{
			Features: model.FeatureNames,
			Means:    make([]float64, n),
			Stds:     ones(n),
		},
	}
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func testRecord(id uuid.UUID) *feature.Record {
	return &feature.Record{
		TransactionID: id,
		UserID:        "u1",
		EventTime:     time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		Amount:        decimal.NewFromInt(50),
	}
}

func testService(features feature.Repository, events event.Repository, alerts AlertRepository, models SnapshotProvider) *Service {
	return NewService(features, events, alerts, nil, models, ServiceConfig{
		Thresholds:        DefaultThresholds(),
		TopKFactors:       5,
		MaterialityCutoff: 0.01,
		PollAttempts:      3,
		PollInterval:      time.Millisecond,
	})
}

func TestScoreApprove(t *testing.T) {
	id := uuid.New()
	alerts := &stubAlertRepo{}
	svc := testService(
		&stubFeatureRepo{record: testRecord(id)},
		&stubEventRepo{exists: true},
		alerts,
		&stubSnapshots{snap: snapshotWithBias(-40)},
	)

	res, err := svc.Score(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, DecisionApprove, res.Decision)
	assert.Zero(t, res.FraudProbability)
	assert.Equal(t, "v-test", res.ModelVersion)

	// APPROVE never raises an alert
	assert.Empty(t, alerts.alerts)
}

func TestScoreBlockRaisesAlert(t *testing.T) {
	id := uuid.New()
	alerts := &stubAlertRepo{}
	svc := testService(
		&stubFeatureRepo{record: testRecord(id)},
		&stubEventRepo{exists: true},
		alerts,
		&stubSnapshots{snap: snapshotWithBias(40)},
	)

	res, err := svc.Score(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, res.Decision)
	assert.Equal(t, 1.0, res.FraudProbability)

	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, id, alerts.alerts[0].TransactionID)
	assert.Equal(t, DecisionBlock, alerts.alerts[0].Decision)
}

func TestScoreNotFound(t *testing.T) {
	svc := testService(
		&stubFeatureRepo{},
		&stubEventRepo{exists: false},
		&stubAlertRepo{},
		&stubSnapshots{snap: snapshotWithBias(0)},
	)

	_, err := svc.Score(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScoreNotReady(t *testing.T) {
	// Raw event archived but features never materialize within the budget
	svc := testService(
		&stubFeatureRepo{},
		&stubEventRepo{exists: true},
		&stubAlertRepo{},
		&stubSnapshots{snap: snapshotWithBias(0)},
	)

	_, err := svc.Score(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestScoreWaitsOutFeatureRace(t *testing.T) {
	id := uuid.New()
	svc := testService(
		&stubFeatureRepo{record: testRecord(id), missFirst: 2},
		&stubEventRepo{exists: true},
		&stubAlertRepo{},
		&stubSnapshots{snap: snapshotWithBias(0)},
	)

	res, err := svc.Score(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, DecisionReview, res.Decision)
}

func TestScoreStoreUnavailable(t *testing.T) {
	svc := testService(
		&stubFeatureRepo{err: errors.New("connection refused")},
		&stubEventRepo{exists: true},
		&stubAlertRepo{},
		&stubSnapshots{snap: snapshotWithBias(0)},
	)

	_, err := svc.Score(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestScoreModelUnavailable(t *testing.T) {
	id := uuid.New()
	svc := testService(
		&stubFeatureRepo{record: testRecord(id)},
		&stubEventRepo{exists: true},
		&stubAlertRepo{},
		&stubSnapshots{err: model.ErrNoPassingModel},
	)

	_, err := svc.Score(context.Background(), id)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
