package feature

import "errors"

var (
	// ErrDuplicateRecord signals that a feature record for this
	// transaction_id already exists. Benign under at-least-once
	// redelivery; callers acknowledge the source event and move on.
	ErrDuplicateRecord = errors.New("feature record already exists for transaction")

	// ErrRecordNotFound signals that no feature record has been
	// materialized for the transaction
	ErrRecordNotFound = errors.New("feature record not found")

	// ErrStoreUnavailable wraps transient storage failures that
	// survived the bounded retry budget. Events failing with this are
	// surfaced as poison pills for manual inspection, never dropped
	// silently.
	ErrStoreUnavailable = errors.New("feature store unavailable")
)
