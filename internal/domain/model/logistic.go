package model

import (
	"errors"
	"math"
	"sort"
)

// LogisticModel is the supervised ensemble member: a class-weighted
// logistic regression over standardized inputs. Weights are fitted by
// the trainer; this type only holds parameters and scores.
type LogisticModel struct {
	Features []string  `json:"features"`
	Weights  []float64 `json:"weights"`
	Bias     float64   `json:"bias"`

	// Standardization parameters captured at training time
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

func (m *LogisticModel) validate() error {
	n := len(m.Features)
	if n == 0 || len(m.Weights) != n || len(m.Means) != n || len(m.Stds) != n {
		return errors.New("inconsistent parameter dimensions")
	}
	return nil
}

// Score returns the fraud probability for a canonical feature vector
func (m *LogisticModel) Score(x []float64) float64 {
	z := m.Bias
	for i, w := range m.Weights {
		z += w * m.standardize(i, x[i])
	}
	return sigmoid(z)
}

// Contributions ranks per-feature contributions to the logit,
// descending. Positive weights push toward fraud.
func (m *LogisticModel) Contributions(x []float64) []Contribution {
	out := make([]Contribution, 0, len(m.Weights))
	for i, w := range m.Weights {
		out = append(out, Contribution{
			Name:   m.Features[i],
			Weight: w * m.standardize(i, x[i]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

func (m *LogisticModel) standardize(i int, v float64) float64 {
	if m.Stds[i] == 0 {
		return 0
	}
	return (v - m.Means[i]) / m.Stds[i]
}

func sigmoid(z float64) float64 {
	if z > 30 {
		return 1
	}
	if z < -30 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}
