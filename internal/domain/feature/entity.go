package feature

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fraud-scoring-engine/internal/domain/event"
)

// Record is the immutable per-transaction snapshot of derived
// behavioral and statistical attributes. Exactly one record exists per
// transaction_id; the storage layer enforces this with a unique
// constraint, which is the sole dedup mechanism under at-least-once
// delivery.
type Record struct {
	// Identity
	TransactionID uuid.UUID `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	EventTime     time.Time `json:"event_time"`
	ComputedAt    time.Time `json:"computed_at"`

	// Amount group
	Amount          decimal.Decimal `json:"amount"`
	AmountZScore    float64         `json:"amount_zscore"`
	UserAvgAmount30 decimal.Decimal `json:"user_avg_amount_30d"`
	UserStdAmount30 decimal.Decimal `json:"user_std_amount_30d"`

	// Velocity group (windows trail from event_time, current event included)
	TxnCount1h  int             `json:"user_txn_count_1h"`
	TxnCount24h int             `json:"user_txn_count_24h"`
	TxnCount7d  int             `json:"user_txn_count_7d"`
	TxnCount30d int             `json:"user_txn_count_30d"`
	AmountSum1h decimal.Decimal `json:"user_amount_sum_1h"`
	AmountSum24h decimal.Decimal `json:"user_amount_sum_24h"`
	AmountSum7d  decimal.Decimal `json:"user_amount_sum_7d"`
	AmountSum30d decimal.Decimal `json:"user_amount_sum_30d"`

	// Behavioral group
	CountryChangeFlag    bool `json:"country_change_flag"`
	DeviceChangeFlag     bool `json:"device_change_flag"`
	UniqueCountries24h   int  `json:"unique_countries_24h"`
	UniqueMerchants24h   int  `json:"unique_merchants_24h"`
	UniqueDevices24h     int  `json:"unique_devices_24h"`
	MerchantFirstTime    bool `json:"user_merchant_first_time"`

	// Temporal group
	HourOfDay            int  `json:"hour_of_day"`
	DayOfWeek            int  `json:"day_of_week"` // 0=Monday .. 6=Sunday
	IsWeekend            bool `json:"is_weekend"`
	IsNight              bool `json:"is_night"` // 00:00-06:00 UTC
	MinutesSinceLastTxn  *int `json:"minutes_since_last_txn,omitempty"`

	// Channel / geo group
	Channel        event.Channel `json:"channel"`
	ChannelEncoded int           `json:"channel_encoded"`
	Country        string        `json:"country"`
	IsForeignTxn   bool          `json:"is_foreign_txn"`

	// Label, copied from the raw event when present; training only
	Label *bool `json:"label,omitempty"`
}
