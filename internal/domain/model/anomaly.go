package model

import (
	"errors"
	"math"
	"sort"
)

// zClip bounds a single feature's influence on the anomaly score so
// one wild input cannot saturate the aggregate
const zClip = 10.0

// AnomalyDetector is the unsupervised ensemble member. It is fitted on
// unlabeled training vectors and scores how far a transaction sits
// from the bulk of observed behavior: the mean absolute z-score across
// features, each clipped. Higher is more anomalous; the scale is
// unbounded in principle and roughly 0-10 in practice.
type AnomalyDetector struct {
	Features []string  `json:"features"`
	Means    []float64 `json:"means"`
	Stds     []float64 `json:"stds"`
}

func (d *AnomalyDetector) validate() error {
	n := len(d.Features)
	if n == 0 || len(d.Means) != n || len(d.Stds) != n {
		return errors.New("inconsistent parameter dimensions")
	}
	return nil
}

// Score returns the anomaly score for a canonical feature vector
func (d *AnomalyDetector) Score(x []float64) float64 {
	total := 0.0
	for i := range d.Means {
		total += d.deviation(i, x[i])
	}
	return total / float64(len(d.Means))
}

// Contributions ranks features by their deviation from training-time
// behavior, descending
func (d *AnomalyDetector) Contributions(x []float64) []Contribution {
	out := make([]Contribution, 0, len(d.Means))
	for i := range d.Means {
		out = append(out, Contribution{
			Name:   d.Features[i],
			Weight: d.deviation(i, x[i]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

func (d *AnomalyDetector) deviation(i int, v float64) float64 {
	if d.Stds[i] == 0 {
		return 0
	}
	return math.Min(math.Abs(v-d.Means[i])/d.Stds[i], zClip)
}
