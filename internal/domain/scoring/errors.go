package scoring

import "errors"

var (
	// ErrNotReady: the raw event exists but its feature record has not
	// been materialized yet. Retryable by the caller.
	ErrNotReady = errors.New("features not yet materialized for transaction")

	// ErrNotFound: neither a raw event nor a feature record exists
	ErrNotFound = errors.New("unknown transaction")

	// ErrStoreUnavailable: the feature store could not be reached.
	// Retryable; never converted into a default APPROVE.
	ErrStoreUnavailable = errors.New("feature store unavailable")

	// ErrModelUnavailable: no usable model snapshot. Fatal at startup;
	// after startup the service keeps serving the previous version, so
	// seeing this at request time indicates a wiring bug.
	ErrModelUnavailable = errors.New("model unavailable")
)
