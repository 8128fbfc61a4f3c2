package ml

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-scoring-engine/internal/domain/feature"
	"fraud-scoring-engine/internal/domain/model"
	"fraud-scoring-engine/internal/pkg/config"
)

type fakeFeatureRepo struct {
	rows []*feature.Record
}

func (r *fakeFeatureRepo) Create(context.Context, *feature.Record) error { return nil }
func (r *fakeFeatureRepo) GetByTransactionID(context.Context, uuid.UUID) (*feature.Record, error) {
	return nil, feature.ErrRecordNotFound
}
func (r *fakeFeatureRepo) ListLabeled(_ context.Context, _, _ time.Time, limit int) ([]*feature.Record, error) {
	if len(r.rows) > limit {
		return r.rows[:limit], nil
	}
	return r.rows, nil
}

type fakeRegistry struct {
	saved   []*model.Artifact
	current string
}

func (r *fakeRegistry) Save(_ context.Context, a *model.Artifact) error {
	r.saved = append(r.saved, a)
	return nil
}
func (r *fakeRegistry) SetCurrent(_ context.Context, version string) error {
	r.current = version
	return nil
}
func (r *fakeRegistry) Current(context.Context) (*model.Set, error) {
	if r.current == "" {
		return nil, model.ErrNoPassingModel
	}
	set := &model.Set{Version: r.current}
	for _, a := range r.saved {
		if a.Version != r.current {
			continue
		}
		switch a.Kind {
		case model.KindSupervised:
			set.Supervised = a
		case model.KindAnomaly:
			set.Anomaly = a
		}
	}
	return set, nil
}
func (r *fakeRegistry) CurrentVersion(context.Context) (string, error) {
	if r.current == "" {
		return "", model.ErrNoPassingModel
	}
	return r.current, nil
}

// labeledRows builds a cleanly separable training set: fraud rows
// carry extreme amounts and z-scores, legit rows stay near baseline.
// Every fifth row is fraud so both halves of a time split see both
// classes.
func labeledRows(n int) []*feature.Record {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]*feature.Record, n)
	for i := range rows {
		fraud := i%5 == 0
		rec := &feature.Record{
			TransactionID: uuid.New(),
			UserID:        "u1",
			EventTime:     start.Add(time.Duration(i) * time.Minute),
			Amount:        decimal.NewFromInt(50),
			TxnCount1h:    1,
			TxnCount24h:   3,
			HourOfDay:     12,
			Label:         &fraud,
		}
		if fraud {
			rec.Amount = decimal.NewFromInt(5000)
			rec.AmountZScore = 6
			rec.TxnCount1h = 8
			rec.IsForeignTxn = true
		}
		rows[i] = rec
	}
	return rows
}

func trainerConfig() config.TrainerConfig {
	cfg := config.DefaultConfig().Trainer
	cfg.MinRows = 100
	return cfg
}

func TestTrainerRegistersPassingModel(t *testing.T) {
	repo := &fakeFeatureRepo{rows: labeledRows(500)}
	registry := &fakeRegistry{}
	trainer := NewTrainer(repo, registry, trainerConfig())

	report, err := trainer.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.GatePassed, report.GateReason)
	assert.True(t, report.Registered)
	assert.InDelta(t, 0.2, report.FraudRate, 0.01)
	assert.Equal(t, 400, report.TrainRows)
	assert.Equal(t, 100, report.TestRows)

	// Both ensemble members saved, pointer advanced
	require.Len(t, registry.saved, 2)
	assert.Equal(t, model.KindSupervised, registry.saved[0].Kind)
	assert.Equal(t, model.KindAnomaly, registry.saved[1].Kind)
	assert.Equal(t, report.Version, registry.current)

	// A separable set should be learned nearly perfectly
	assert.Greater(t, report.Supervised.PRAUC, 0.9)
	assert.Greater(t, report.Supervised.Recall, 0.9)
}

func TestTrainerArtifactsServeScoring(t *testing.T) {
	repo := &fakeFeatureRepo{rows: labeledRows(500)}
	registry := &fakeRegistry{}
	trainer := NewTrainer(repo, registry, trainerConfig())

	_, err := trainer.Run(context.Background())
	require.NoError(t, err)

	supervised, err := model.DecodeSupervised(registry.saved[0])
	require.NoError(t, err)

	fraudVec := model.Vectorize(repo.rows[0])
	legitVec := model.Vectorize(repo.rows[1])
	assert.Greater(t, supervised.Score(fraudVec), supervised.Score(legitVec))
}

func TestTrainerRefusesThinWindow(t *testing.T) {
	repo := &fakeFeatureRepo{rows: labeledRows(40)}
	trainer := NewTrainer(repo, &fakeRegistry{}, trainerConfig())

	_, err := trainer.Run(context.Background())
	assert.Error(t, err)
}

func TestTrainerHonorsCancellation(t *testing.T) {
	repo := &fakeFeatureRepo{rows: labeledRows(500)}
	trainer := NewTrainer(repo, &fakeRegistry{}, trainerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := trainer.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
