package model

import (
	"context"
	"errors"
)

var (
	// ErrNoPassingModel signals that no version has ever cleared the
	// quality gate. Fatal for the scoring service at startup.
	ErrNoPassingModel = errors.New("no passing model version registered")

	// ErrVersionExists guards artifact immutability: a registered
	// version is never overwritten in place
	ErrVersionExists = errors.New("model version already registered")
)

// Set is both ensemble members of one registered version
type Set struct {
	Version    string
	Supervised *Artifact
	Anomaly    *Artifact
}

// Registry stores versioned model artifacts and the pointer to the
// currently passing version. Pointer updates are atomic: readers never
// observe a partially updated reference.
type Registry interface {
	// Save registers an immutable artifact; ErrVersionExists when the
	// (version, kind) pair was already registered
	Save(ctx context.Context, a *Artifact) error

	// SetCurrent atomically advances the current-passing pointer
	SetCurrent(ctx context.Context, version string) error

	// Current returns both artifacts of the currently passing version,
	// or ErrNoPassingModel
	Current(ctx context.Context) (*Set, error)

	// CurrentVersion returns the passing version without loading
	// payloads, for cheap change detection
	CurrentVersion(ctx context.Context) (string, error)
}

// Snapshot is an immutable, decoded view of the current model set.
// The scoring service holds one per process and swaps it atomically on
// registry-version change.
type Snapshot struct {
	Version    string
	Supervised *LogisticModel
	Anomaly    *AnomalyDetector
}

// DecodeSet decodes both members of a registered set
func DecodeSet(set *Set) (*Snapshot, error) {
	supervised, err := DecodeSupervised(set.Supervised)
	if err != nil {
		return nil, err
	}
	anomaly, err := DecodeAnomaly(set.Anomaly)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Version:    set.Version,
		Supervised: supervised,
		Anomaly:    anomaly,
	}, nil
}
