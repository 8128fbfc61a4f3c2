package feature

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository provides access to the feature store
type Repository interface {
	// Create inserts a record. Returns ErrDuplicateRecord when a row
	// for the same transaction_id exists; the uniqueness constraint is
	// enforced at the storage layer so the guarantee holds across
	// concurrent engine instances.
	Create(ctx context.Context, rec *Record) error

	// GetByTransactionID returns the record or ErrRecordNotFound
	GetByTransactionID(ctx context.Context, id uuid.UUID) (*Record, error)

	// ListLabeled returns labeled records within the window ordered by
	// event_time ascending, capped at limit. Consumed by the trainer.
	ListLabeled(ctx context.Context, from, until time.Time, limit int) ([]*Record, error)
}
