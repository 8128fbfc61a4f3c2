package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluatePerfectClassifier(t *testing.T) {
	labels := []bool{false, false, false, true, true}
	scores := []float64{0.1, 0.2, 0.3, 0.8, 0.9}

	m := Evaluate(labels, scores, 0.5)

	assert.Equal(t, 1.0, m.ROCAUC)
	assert.Equal(t, 1.0, m.PRAUC)
	assert.Equal(t, 1.0, m.Precision)
	assert.Equal(t, 1.0, m.Recall)
	assert.Equal(t, 1.0, m.F1)
	assert.Equal(t, 2, m.TruePositives)
	assert.Equal(t, 3, m.TrueNegatives)
}

func TestEvaluateInvertedClassifier(t *testing.T) {
	labels := []bool{true, true, false, false}
	scores := []float64{0.1, 0.2, 0.8, 0.9}

	m := Evaluate(labels, scores, 0.5)

	assert.Equal(t, 0.0, m.ROCAUC)
	assert.Zero(t, m.Recall)
	assert.Equal(t, 2, m.FalsePositives)
	assert.Equal(t, 2, m.FalseNegatives)
}

func TestEvaluateConstantScoresAreChance(t *testing.T) {
	labels := []bool{true, false, true, false}
	scores := []float64{0.5, 0.5, 0.5, 0.5}

	m := Evaluate(labels, scores, 0.5)

	// Tied ranks collapse to the chance diagonal
	assert.InDelta(t, 0.5, m.ROCAUC, 1e-12)
}

func TestEvaluateConfusionCounts(t *testing.T) {
	labels := []bool{true, true, true, false, false, false}
	scores := []float64{0.9, 0.6, 0.2, 0.7, 0.3, 0.1}

	m := Evaluate(labels, scores, 0.5)

	assert.Equal(t, 2, m.TruePositives)
	assert.Equal(t, 1, m.FalseNegatives)
	assert.Equal(t, 1, m.FalsePositives)
	assert.Equal(t, 2, m.TrueNegatives)
	assert.InDelta(t, 2.0/3.0, m.Precision, 1e-12)
	assert.InDelta(t, 2.0/3.0, m.Recall, 1e-12)
}

func TestQualityGate(t *testing.T) {
	gate := QualityGate{MinPRAUC: 0.15, MinRecall: 0.30}

	tests := []struct {
		name    string
		metrics Metrics
		want    bool
	}{
		{"both clear", Metrics{PRAUC: 0.20, Recall: 0.40}, true},
		{"exactly at thresholds", Metrics{PRAUC: 0.15, Recall: 0.30}, true},
		{"pr-auc too low", Metrics{PRAUC: 0.10, Recall: 0.90}, false},
		{"recall too low", Metrics{PRAUC: 0.50, Recall: 0.10}, false},
		{"both too low", Metrics{PRAUC: 0.01, Recall: 0.01}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passed, reason := gate.Check(tt.metrics)
			assert.Equal(t, tt.want, passed)
			assert.NotEmpty(t, reason)
		})
	}
}
