package event

import "errors"

var (
	ErrEventNotFound        = errors.New("raw event not found")
	ErrMissingTransactionID = errors.New("event is missing transaction_id")
	ErrMissingUserID        = errors.New("event is missing user_id")
	ErrMissingEventTime     = errors.New("event is missing event_time")
	ErrNegativeAmount       = errors.New("event amount must not be negative")
)
