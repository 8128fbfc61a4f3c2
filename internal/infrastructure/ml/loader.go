package ml

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"fraud-scoring-engine/internal/domain/model"
)

// Loader resolves the registry's current passing version into a
// decoded in-process snapshot, swapped atomically so concurrent
// scoring requests always see one consistent model set. Models are
// loaded once per process lifetime and on registry-version change,
// never per request.
type Loader struct {
	registry model.Registry
	snap     atomic.Pointer[model.Snapshot]
}

// NewLoader creates a model loader
func NewLoader(registry model.Registry) *Loader {
	return &Loader{registry: registry}
}

// Load fetches and decodes the current passing version. Callers treat
// a failure at startup as fatal: the service must not serve without a
// model.
func (l *Loader) Load(ctx context.Context) error {
	set, err := l.registry.Current(ctx)
	if err != nil {
		return err
	}
	snap, err := model.DecodeSet(set)
	if err != nil {
		return err
	}
	l.snap.Store(snap)
	log.Printf("model loader: serving version %s", snap.Version)
	return nil
}

// Snapshot returns the current snapshot. Implements
// scoring.SnapshotProvider.
func (l *Loader) Snapshot() (*model.Snapshot, error) {
	snap := l.snap.Load()
	if snap == nil {
		return nil, model.ErrNoPassingModel
	}
	return snap, nil
}

// Loaded reports whether a snapshot is held, for the health endpoint
func (l *Loader) Loaded() bool {
	return l.snap.Load() != nil
}

// Version returns the served version or "" when none is loaded
func (l *Loader) Version() string {
	if snap := l.snap.Load(); snap != nil {
		return snap.Version
	}
	return ""
}

// Run polls the registry for version changes until ctx is cancelled.
// Refresh failures keep the previous snapshot serving; that fallback
// is deliberate and audited through the log.
func (l *Loader) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current, err := l.registry.CurrentVersion(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Printf("model loader: version check failed, keeping %s: %v", l.Version(), err)
				}
				continue
			}
			if current == l.Version() {
				continue
			}
			if err := l.Load(ctx); err != nil {
				log.Printf("model loader: refresh to %s failed, keeping %s: %v", current, l.Version(), err)
			}
		}
	}
}
