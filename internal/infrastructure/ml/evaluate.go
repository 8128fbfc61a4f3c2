package ml

import (
	"fmt"
	"sort"
)

// Metrics captures classifier quality on a held-out split. PR-AUC and
// recall carry the quality gate because fraud is rare: accuracy and
// even ROC-AUC look flattering under severe class imbalance.
type Metrics struct {
	ROCAUC    float64 `json:"roc_auc"`
	PRAUC     float64 `json:"pr_auc"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`

	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalseNegatives int `json:"false_negatives"`
}

// Map flattens metrics for artifact metadata
func (m Metrics) Map() map[string]float64 {
	return map[string]float64{
		"roc_auc":   m.ROCAUC,
		"pr_auc":    m.PRAUC,
		"precision": m.Precision,
		"recall":    m.Recall,
		"f1":        m.F1,
	}
}

// Evaluate computes all metrics for predicted probabilities against
// binary labels, using threshold for the point metrics
func Evaluate(labels []bool, scores []float64, threshold float64) Metrics {
	m := Metrics{
		ROCAUC: rocAUC(labels, scores),
		PRAUC:  averagePrecision(labels, scores),
	}

	for i, label := range labels {
		predicted := scores[i] >= threshold
		switch {
		case predicted && label:
			m.TruePositives++
		case predicted && !label:
			m.FalsePositives++
		case !predicted && label:
			m.FalseNegatives++
		default:
			m.TrueNegatives++
		}
	}

	if m.TruePositives+m.FalsePositives > 0 {
		m.Precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}
	if m.TruePositives+m.FalseNegatives > 0 {
		m.Recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	return m
}

// rocAUC computes the area under the ROC curve via the rank statistic,
// with average ranks for tied scores
func rocAUC(labels []bool, scores []float64) float64 {
	n := len(labels)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores[idx[j]] == scores[idx[i]] {
			j++
		}
		// ranks are 1-based; ties share the average rank
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}

	var posRankSum float64
	var nPos, nNeg int
	for i, label := range labels {
		if label {
			nPos++
			posRankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0.5
	}

	u := posRankSum - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg))
}

// averagePrecision computes PR-AUC as average precision over the
// descending score ranking
func averagePrecision(labels []bool, scores []float64) float64 {
	n := len(labels)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	var nPos int
	for _, label := range labels {
		if label {
			nPos++
		}
	}
	if nPos == 0 {
		return 0
	}

	var hits int
	var ap float64
	for k, i := range idx {
		if labels[i] {
			hits++
			ap += float64(hits) / float64(k+1)
		}
	}
	return ap / float64(nPos)
}

// QualityGate holds the registration thresholds
type QualityGate struct {
	MinPRAUC  float64
	MinRecall float64
}

// Check reports whether the metrics clear the gate, with a
// human-readable reason either way
func (g QualityGate) Check(m Metrics) (bool, string) {
	var failures []string
	if m.PRAUC < g.MinPRAUC {
		failures = append(failures, fmt.Sprintf("PR-AUC %.4f < %.2f", m.PRAUC, g.MinPRAUC))
	}
	if m.Recall < g.MinRecall {
		failures = append(failures, fmt.Sprintf("recall %.4f < %.2f", m.Recall, g.MinRecall))
	}
	if len(failures) > 0 {
		reason := "quality gate failed: " + failures[0]
		for _, f := range failures[1:] {
			reason += "; " + f
		}
		return false, reason
	}
	return true, fmt.Sprintf("quality gate passed: PR-AUC=%.4f recall=%.4f", m.PRAUC, m.Recall)
}
