package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind distinguishes the two ensemble members
type Kind string

const (
	KindSupervised Kind = "supervised"
	KindAnomaly    Kind = "anomaly"
)

// Artifact is a versioned, immutable trained model. The payload is
// opaque to the registry; only the model implementations in this
// package know how to decode it.
type Artifact struct {
	Version      string             `json:"version"`
	Kind         Kind               `json:"kind"`
	Payload      []byte             `json:"payload"`
	Metrics      map[string]float64 `json:"metrics"`
	GatePassed   bool               `json:"gate_passed"`
	RegisteredAt time.Time          `json:"registered_at"`
}

// NewSupervisedArtifact packages a logistic model
func NewSupervisedArtifact(version string, m *LogisticModel, metrics map[string]float64, passed bool) (*Artifact, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode supervised model: %w", err)
	}
	return &Artifact{
		Version:      version,
		Kind:         KindSupervised,
		Payload:      payload,
		Metrics:      metrics,
		GatePassed:   passed,
		RegisteredAt: time.Now().UTC(),
	}, nil
}

// NewAnomalyArtifact packages an anomaly detector
func NewAnomalyArtifact(version string, d *AnomalyDetector, metrics map[string]float64, passed bool) (*Artifact, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode anomaly detector: %w", err)
	}
	return &Artifact{
		Version:      version,
		Kind:         KindAnomaly,
		Payload:      payload,
		Metrics:      metrics,
		GatePassed:   passed,
		RegisteredAt: time.Now().UTC(),
	}, nil
}

// DecodeSupervised unpacks a supervised artifact payload
func DecodeSupervised(a *Artifact) (*LogisticModel, error) {
	if a.Kind != KindSupervised {
		return nil, fmt.Errorf("artifact %s has kind %q, want %q", a.Version, a.Kind, KindSupervised)
	}
	var m LogisticModel
	if err := json.Unmarshal(a.Payload, &m); err != nil {
		return nil, fmt.Errorf("decode supervised model %s: %w", a.Version, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("supervised model %s: %w", a.Version, err)
	}
	return &m, nil
}

// DecodeAnomaly unpacks an anomaly artifact payload
func DecodeAnomaly(a *Artifact) (*AnomalyDetector, error) {
	if a.Kind != KindAnomaly {
		return nil, fmt.Errorf("artifact %s has kind %q, want %q", a.Version, a.Kind, KindAnomaly)
	}
	var d AnomalyDetector
	if err := json.Unmarshal(a.Payload, &d); err != nil {
		return nil, fmt.Errorf("decode anomaly detector %s: %w", a.Version, err)
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("anomaly detector %s: %w", a.Version, err)
	}
	return &d, nil
}
