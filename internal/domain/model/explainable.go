package model

// Contribution is a single feature's share of a model's output
type Contribution struct {
	Name   string  `json:"feature"`
	Weight float64 `json:"weight"`
}

// Scorer produces a score for a canonical feature vector
type Scorer interface {
	Score(x []float64) float64
}

// Explainable is the capability interface for models that can rank
// per-feature contributions to their output, ordered by descending
// weight. The decision service depends on this, not on any concrete
// model implementation.
type Explainable interface {
	Contributions(x []float64) []Contribution
}
