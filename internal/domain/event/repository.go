package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository provides access to the raw event archive.
// The archive is append-only; Save on an existing transaction_id is a no-op.
type Repository interface {
	// Save persists an event, ignoring duplicates
	Save(ctx context.Context, e *RawEvent) error

	// GetByTransactionID returns the event or ErrEventNotFound
	GetByTransactionID(ctx context.Context, id uuid.UUID) (*RawEvent, error)

	// Exists reports whether an event with this transaction_id was archived
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// ListUserHistory returns the user's events with
	// from <= event_time <= until, ordered by event_time ascending.
	// Backed by the (user_id, event_time) index. Callers exclude the
	// in-flight transaction themselves when replaying.
	ListUserHistory(ctx context.Context, userID string, from, until time.Time) ([]*RawEvent, error)

	// LastBefore returns the user's most recent event with
	// event_time strictly before the given time, or ErrEventNotFound
	LastBefore(ctx context.Context, userID string, before time.Time) (*RawEvent, error)

	// FirstSeenCountry returns the country of the user's earliest event
	// strictly before the given time, or "" when the user is unseen
	FirstSeenCountry(ctx context.Context, userID string, before time.Time) (string, error)

	// HasPriorAtMerchant reports whether the user transacted at the
	// merchant strictly before the given time
	HasPriorAtMerchant(ctx context.Context, userID, merchantID string, before time.Time) (bool, error)
}
