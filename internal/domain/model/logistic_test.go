package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogistic() *LogisticModel {
	return &LogisticModel{
		Features: []string{"a", "b", "c"},
		Weights:  []float64{2, -1, 0.5},
		Bias:     -0.5,
		Means:    []float64{10, 5, 0},
		Stds:     []float64{2, 1, 1},
	}
}

func TestLogisticScore(t *testing.T) {
	m := testLogistic()

	// x = (12, 6, 2) standardizes to (1, 1, 2); logit = -0.5 + 2 - 1 + 1 = 1.5
	got := m.Score([]float64{12, 6, 2})
	want := 1 / (1 + math.Exp(-1.5))
	assert.InDelta(t, want, got, 1e-12)
}

func TestLogisticScoreClampsExtremeLogits(t *testing.T) {
	m := testLogistic()

	assert.Equal(t, 1.0, m.Score([]float64{1000, 5, 0}))
	assert.Equal(t, 0.0, m.Score([]float64{-1000, 5, 0}))
}

func TestLogisticZeroStdContributesNothing(t *testing.T) {
	m := testLogistic()
	m.Stds[0] = 0

	// First feature is frozen out; logit = bias only for mean inputs
	got := m.Score([]float64{999, 5, 0})
	want := 1 / (1 + math.Exp(0.5))
	assert.InDelta(t, want, got, 1e-12)
}

func TestLogisticContributionsOrdered(t *testing.T) {
	m := testLogistic()

	// standardized (1, 2, 1): contributions a=2, b=-2, c=0.5
	contribs := m.Contributions([]float64{12, 7, 1})
	require.Len(t, contribs, 3)
	assert.Equal(t, "a", contribs[0].Name)
	assert.InDelta(t, 2.0, contribs[0].Weight, 1e-12)
	assert.Equal(t, "c", contribs[1].Name)
	assert.Equal(t, "b", contribs[2].Name)
	assert.InDelta(t, -2.0, contribs[2].Weight, 1e-12)
}

func TestAnomalyScore(t *testing.T) {
	d := &AnomalyDetector{
		Features: []string{"a", "b"},
		Means:    []float64{0, 10},
		Stds:     []float64{1, 2},
	}

	// |z| = (3, 1) → mean 2
	assert.InDelta(t, 2.0, d.Score([]float64{3, 12}), 1e-12)

	// Single wild feature is clipped at 10
	assert.InDelta(t, 5.0, d.Score([]float64{1e9, 10}), 1e-12)
}

func TestArtifactRoundTrip(t *testing.T) {
	m := testLogistic()
	metrics := map[string]float64{"pr_auc": 0.42, "recall": 0.61}

	artifact, err := NewSupervisedArtifact("v20250601T000000", m, metrics, true)
	require.NoError(t, err)
	assert.Equal(t, KindSupervised, artifact.Kind)
	assert.True(t, artifact.GatePassed)

	decoded, err := DecodeSupervised(artifact)
	require.NoError(t, err)
	assert.Equal(t, m.Weights, decoded.Weights)
	assert.Equal(t, m.Bias, decoded.Bias)
}

func TestDecodeRejectsKindMismatch(t *testing.T) {
	artifact, err := NewSupervisedArtifact("v1", testLogistic(), nil, true)
	require.NoError(t, err)

	_, err = DecodeAnomaly(artifact)
	assert.Error(t, err)
}

func TestDecodeRejectsInconsistentDimensions(t *testing.T) {
	m := testLogistic()
	m.Weights = m.Weights[:2]

	artifact, err := NewSupervisedArtifact("v1", m, nil, true)
	require.NoError(t, err)

	_, err = DecodeSupervised(artifact)
	assert.Error(t, err)
}
