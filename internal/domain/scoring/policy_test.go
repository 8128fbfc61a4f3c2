package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideBoundaries(t *testing.T) {
	thresholds := DefaultThresholds()

	tests := []struct {
		name        string
		probability float64
		want        Decision
	}{
		{"well below review", 0.05, DecisionApprove},
		{"just below review", 0.29999, DecisionApprove},
		{"exactly review boundary", 0.3, DecisionReview},
		{"mid band", 0.5, DecisionReview},
		{"exactly block boundary", 0.7, DecisionReview},
		{"just above block", 0.70001, DecisionBlock},
		{"certain fraud", 0.999, DecisionBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, thresholds.Decide(tt.probability))
		})
	}
}

func TestDecideCustomThresholds(t *testing.T) {
	thresholds := Thresholds{Review: 0.1, Block: 0.9}

	assert.Equal(t, DecisionApprove, thresholds.Decide(0.05))
	assert.Equal(t, DecisionReview, thresholds.Decide(0.5))
	assert.Equal(t, DecisionBlock, thresholds.Decide(0.95))
}
