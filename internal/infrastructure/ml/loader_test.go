package ml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-scoring-engine/internal/domain/model"
)

func TestLoaderFailsWithoutPassingModel(t *testing.T) {
	loader := NewLoader(&fakeRegistry{})

	err := loader.Load(context.Background())
	assert.ErrorIs(t, err, model.ErrNoPassingModel)
	assert.False(t, loader.Loaded())

	_, err = loader.Snapshot()
	assert.ErrorIs(t, err, model.ErrNoPassingModel)
}

func TestLoaderServesRegisteredVersion(t *testing.T) {
	registry := &fakeRegistry{}
	trainer := NewTrainer(&fakeFeatureRepo{rows: labeledRows(500)}, registry, trainerConfig())

	report, err := trainer.Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.Registered)

	loader := NewLoader(registry)
	require.NoError(t, loader.Load(context.Background()))

	assert.True(t, loader.Loaded())
	assert.Equal(t, report.Version, loader.Version())

	snap, err := loader.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, report.Version, snap.Version)
	assert.NotNil(t, snap.Supervised)
	assert.NotNil(t, snap.Anomaly)
}
