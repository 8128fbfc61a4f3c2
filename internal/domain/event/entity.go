package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel identifies how a transaction was made
type Channel string

const (
	ChannelPOS  Channel = "POS"
	ChannelEcom Channel = "ECOM"
	ChannelATM  Channel = "ATM"
)

// Encode returns the stable numeric encoding used as model input.
// Unknown channels encode to -1.
func (c Channel) Encode() int {
	switch c {
	case ChannelPOS:
		return 0
	case ChannelEcom:
		return 1
	case ChannelATM:
		return 2
	default:
		return -1
	}
}

// RawEvent is a transaction event consumed from the event log.
// Events are immutable once written; TransactionID is the idempotency key.
type RawEvent struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	CardID        string          `json:"card_id"`
	MerchantID    string          `json:"merchant_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	EventTime     time.Time       `json:"event_time"`
	Channel       Channel         `json:"channel"`
	Country       string          `json:"country"`
	City          string          `json:"city"`
	DeviceID      string          `json:"device_id"`

	// Label is filled later by the labeling pipeline and is only
	// consumed by the trainer.
	Label *bool `json:"label,omitempty"`
}

// Validate checks that the event carries the fields feature
// computation depends on
func (e *RawEvent) Validate() error {
	if e.TransactionID == uuid.Nil {
		return ErrMissingTransactionID
	}
	if e.UserID == "" {
		return ErrMissingUserID
	}
	if e.EventTime.IsZero() {
		return ErrMissingEventTime
	}
	if e.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}
