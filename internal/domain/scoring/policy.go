package scoring

// Thresholds holds the decision boundaries. Configuration, not
// constants, so policy can be tuned without redeploying logic.
type Thresholds struct {
	Review float64
	Block  float64
}

// DefaultThresholds returns the standard three-tier boundaries
func DefaultThresholds() Thresholds {
	return Thresholds{Review: 0.3, Block: 0.7}
}

// Decide maps a fraud probability to a decision. Boundaries are exact:
// p < review → APPROVE, review <= p <= block → REVIEW, p > block → BLOCK.
func (t Thresholds) Decide(probability float64) Decision {
	switch {
	case probability < t.Review:
		return DecisionApprove
	case probability > t.Block:
		return DecisionBlock
	default:
		return DecisionReview
	}
}
