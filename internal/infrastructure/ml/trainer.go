package ml

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"fraud-scoring-engine/internal/domain/feature"
	"fraud-scoring-engine/internal/domain/model"
	"fraud-scoring-engine/internal/pkg/config"
)

// Report is the outcome of one training run. A failed quality gate is
// a reported outcome, not an error: metrics are always present.
type Report struct {
	Version    string  `json:"version"`
	Supervised Metrics `json:"supervised"`
	GatePassed bool    `json:"gate_passed"`
	GateReason string  `json:"gate_reason"`
	Registered bool    `json:"registered"`
	TrainRows  int     `json:"train_rows"`
	TestRows   int     `json:"test_rows"`
	FraudRate  float64 `json:"fraud_rate"`
}

// Trainer builds new model versions from labeled feature rows and
// registers them behind the quality gate
type Trainer struct {
	features feature.Repository
	registry model.Registry
	cfg      config.TrainerConfig
}

// NewTrainer creates a trainer
func NewTrainer(features feature.Repository, registry model.Registry, cfg config.TrainerConfig) *Trainer {
	return &Trainer{features: features, registry: registry, cfg: cfg}
}

// Run executes one training cycle: load, split, fit, evaluate, gate,
// register. Cancellable between stages via ctx.
func (t *Trainer) Run(ctx context.Context) (*Report, error) {
	until := time.Now().UTC()
	from := until.AddDate(0, 0, -t.cfg.WindowDays)

	log.Printf("trainer: loading labeled rows from %s to %s", from.Format(time.RFC3339), until.Format(time.RFC3339))
	rows, err := t.features.ListLabeled(ctx, from, until, t.cfg.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("load labeled features: %w", err)
	}
	if len(rows) < t.cfg.MinRows {
		return nil, fmt.Errorf("only %d labeled rows in window, need at least %d", len(rows), t.cfg.MinRows)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Rows arrive ordered by event_time, so a positional split is a
	// time-based split: never validate on the past of what we train on
	vectors, labels := vectorize(rows)
	cut := int(float64(len(rows)) * (1 - t.cfg.TestRatio))
	trainX, trainY := vectors[:cut], labels[:cut]
	testX, testY := vectors[cut:], labels[cut:]

	report := &Report{
		TrainRows: len(trainX),
		TestRows:  len(testX),
		FraudRate: fraudRate(labels),
	}
	log.Printf("trainer: %d train / %d test rows, fraud rate %.4f", report.TrainRows, report.TestRows, report.FraudRate)

	supervised := t.fitLogistic(trainX, trainY)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	anomaly := fitAnomaly(trainX)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make([]float64, len(testX))
	for i, x := range testX {
		scores[i] = supervised.Score(x)
	}
	report.Supervised = Evaluate(testY, scores, t.cfg.DecisionThreshold)

	gate := QualityGate{MinPRAUC: t.cfg.MinPRAUC, MinRecall: t.cfg.MinRecall}
	report.GatePassed, report.GateReason = gate.Check(report.Supervised)
	log.Printf("trainer: ROC-AUC=%.4f PR-AUC=%.4f precision=%.4f recall=%.4f F1=%.4f",
		report.Supervised.ROCAUC, report.Supervised.PRAUC,
		report.Supervised.Precision, report.Supervised.Recall, report.Supervised.F1)
	log.Printf("trainer: %s", report.GateReason)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Version = "v" + time.Now().UTC().Format("20060102T150405")
	if err := t.register(ctx, report, supervised, anomaly); err != nil {
		return nil, err
	}

	return report, nil
}

// register stores both artifacts (always, for auditability) and
// advances the current-passing pointer only behind the gate
func (t *Trainer) register(ctx context.Context, report *Report, supervised *model.LogisticModel, anomaly *model.AnomalyDetector) error {
	supArtifact, err := model.NewSupervisedArtifact(report.Version, supervised, report.Supervised.Map(), report.GatePassed)
	if err != nil {
		return err
	}
	anomArtifact, err := model.NewAnomalyArtifact(report.Version, anomaly, nil, report.GatePassed)
	if err != nil {
		return err
	}

	if err := t.registry.Save(ctx, supArtifact); err != nil {
		return fmt.Errorf("save supervised artifact: %w", err)
	}
	if err := t.registry.Save(ctx, anomArtifact); err != nil {
		return fmt.Errorf("save anomaly artifact: %w", err)
	}

	if !report.GatePassed {
		log.Printf("trainer: version %s left unregistered, previous passing version stays current", report.Version)
		return nil
	}

	if err := t.registry.SetCurrent(ctx, report.Version); err != nil {
		return fmt.Errorf("advance current version: %w", err)
	}
	report.Registered = true
	log.Printf("trainer: version %s registered as current passing model", report.Version)
	return nil
}

// fitLogistic trains a class-weighted logistic regression with
// gradient descent over standardized inputs
func (t *Trainer) fitLogistic(xs [][]float64, ys []bool) *model.LogisticModel {
	nFeatures := len(model.FeatureNames)
	means, stds := standardization(xs, nFeatures)

	// Standardize once up front
	std := make([][]float64, len(xs))
	for i, x := range xs {
		z := make([]float64, nFeatures)
		for j := range x {
			if stds[j] != 0 {
				z[j] = (x[j] - means[j]) / stds[j]
			}
		}
		std[i] = z
	}

	// Weight the minority class up so the fit does not collapse to
	// "never fraud"
	var nPos, nNeg float64
	for _, y := range ys {
		if y {
			nPos++
		} else {
			nNeg++
		}
	}
	posWeight := 1.0
	if nPos > 0 {
		posWeight = nNeg / nPos
	}

	weights := make([]float64, nFeatures)
	bias := 0.0
	n := float64(len(xs))

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		grad := make([]float64, nFeatures)
		gradBias := 0.0

		for i, z := range std {
			logit := bias
			for j, w := range weights {
				logit += w * z[j]
			}
			p := 1 / (1 + math.Exp(-clamp(logit, -30, 30)))

			target := 0.0
			sampleWeight := 1.0
			if ys[i] {
				target = 1
				sampleWeight = posWeight
			}
			residual := sampleWeight * (p - target)

			for j := range grad {
				grad[j] += residual * z[j]
			}
			gradBias += residual
		}

		for j := range weights {
			weights[j] -= t.cfg.LearningRate * (grad[j]/n + t.cfg.L2Penalty*weights[j])
		}
		bias -= t.cfg.LearningRate * gradBias / n
	}

	return &model.LogisticModel{
		Features: model.FeatureNames,
		Weights:  weights,
		Bias:     bias,
		Means:    means,
		Stds:     stds,
	}
}

// fitAnomaly captures per-feature location and scale of normal-ish
// behavior; labels are deliberately unused
func fitAnomaly(xs [][]float64) *model.AnomalyDetector {
	means, stds := standardization(xs, len(model.FeatureNames))
	return &model.AnomalyDetector{
		Features: model.FeatureNames,
		Means:    means,
		Stds:     stds,
	}
}

func standardization(xs [][]float64, nFeatures int) (means, stds []float64) {
	means = make([]float64, nFeatures)
	stds = make([]float64, nFeatures)
	col := make([]float64, len(xs))
	for j := 0; j < nFeatures; j++ {
		for i, x := range xs {
			col[i] = x[j]
		}
		means[j] = stat.Mean(col, nil)
		stds[j] = stat.StdDev(col, nil)
		if math.IsNaN(stds[j]) {
			stds[j] = 0
		}
	}
	return means, stds
}

func vectorize(rows []*feature.Record) ([][]float64, []bool) {
	xs := make([][]float64, len(rows))
	ys := make([]bool, len(rows))
	for i, rec := range rows {
		xs[i] = model.Vectorize(rec)
		if rec.Label != nil {
			ys[i] = *rec.Label
		}
	}
	return xs, ys
}

func fraudRate(ys []bool) float64 {
	if len(ys) == 0 {
		return 0
	}
	var pos int
	for _, y := range ys {
		if y {
			pos++
		}
	}
	return float64(pos) / float64(len(ys))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
