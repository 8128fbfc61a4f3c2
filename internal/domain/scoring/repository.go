package scoring

import (
	"context"
	"time"

	"fraud-scoring-engine/internal/domain/model"
)

// AlertRepository persists alerts for REVIEW/BLOCK decisions
type AlertRepository interface {
	Create(ctx context.Context, alert *Alert) error
	ListRecent(ctx context.Context, limit int) ([]*Alert, error)
	CountByDecision(ctx context.Context, since time.Time) (map[Decision]int64, error)
}

// AlertPublisher pushes alerts to the downstream alert sink
type AlertPublisher interface {
	Publish(ctx context.Context, alert *Alert) error
}

// SnapshotProvider hands out the current decoded model snapshot.
// Implementations swap the snapshot atomically on registry-version
// change; every request scores against one consistent version.
type SnapshotProvider interface {
	Snapshot() (*model.Snapshot, error)
}
