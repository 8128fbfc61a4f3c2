package feature

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"fraud-scoring-engine/internal/domain/event"
)

// UserHistory is the slice of a user's past the calculator works from.
// Events holds the user's prior transactions within the amount-history
// window (ascending event_time, the current transaction excluded);
// LastEvent is the immediately preceding transaction by event_time
// regardless of window, nil for a first-time user.
type UserHistory struct {
	Events       []*event.RawEvent
	LastEvent    *event.RawEvent
	HomeCountry  string // first-seen country, "" for a first-time user
	SeenMerchant bool   // user transacted at this merchant before
}

// CalculatorConfig tunes window statistics
type CalculatorConfig struct {
	AmountHistoryDays   int
	MaxMinutesSinceLast int
}

// Calculator derives a feature record from a transaction and the
// user's history. It is pure: the same event and history always yield
// the same record, so features are reproducible offline by replaying
// the raw event archive.
type Calculator struct {
	cfg CalculatorConfig
}

// NewCalculator creates a feature calculator
func NewCalculator(cfg CalculatorConfig) *Calculator {
	if cfg.AmountHistoryDays <= 0 {
		cfg.AmountHistoryDays = 30
	}
	if cfg.MaxMinutesSinceLast <= 0 {
		cfg.MaxMinutesSinceLast = 10080
	}
	return &Calculator{cfg: cfg}
}

// Calculate computes every feature group for the event. History must
// only contain events with event_time <= the current event's
// event_time; the calculator never looks ahead.
func (c *Calculator) Calculate(evt *event.RawEvent, hist UserHistory) *Record {
	rec := &Record{
		TransactionID:  evt.TransactionID,
		UserID:         evt.UserID,
		EventTime:      evt.EventTime,
		ComputedAt:     time.Now().UTC(),
		Amount:         evt.Amount,
		Channel:        evt.Channel,
		ChannelEncoded: evt.Channel.Encode(),
		Country:        evt.Country,
		Label:          evt.Label,
	}

	c.velocityGroup(rec, evt, hist.Events)
	c.amountGroup(rec, evt, hist.Events)
	c.behavioralGroup(rec, evt, hist)
	c.temporalGroup(rec, evt, hist.LastEvent)

	return rec
}

// velocityGroup fills trailing-window counts and sums. Window boundary
// is event_time minus the window, inclusive, and the current event is
// counted in every window.
func (c *Calculator) velocityGroup(rec *Record, evt *event.RawEvent, prior []*event.RawEvent) {
	windows := []struct {
		d     time.Duration
		count *int
		sum   *decimal.Decimal
	}{
		{time.Hour, &rec.TxnCount1h, &rec.AmountSum1h},
		{24 * time.Hour, &rec.TxnCount24h, &rec.AmountSum24h},
		{7 * 24 * time.Hour, &rec.TxnCount7d, &rec.AmountSum7d},
		{time.Duration(c.cfg.AmountHistoryDays) * 24 * time.Hour, &rec.TxnCount30d, &rec.AmountSum30d},
	}

	for i := range windows {
		boundary := evt.EventTime.Add(-windows[i].d)
		count := 1
		sum := evt.Amount
		for _, p := range prior {
			if !p.EventTime.Before(boundary) {
				count++
				sum = sum.Add(p.Amount)
			}
		}
		*windows[i].count = count
		*windows[i].sum = sum
	}
}

// amountGroup fills the z-score over the trailing amount-history
// window. Fewer than 2 prior points reports a z-score of 0 rather
// than propagating an undefined value, keeping model input numeric.
func (c *Calculator) amountGroup(rec *Record, evt *event.RawEvent, prior []*event.RawEvent) {
	boundary := evt.EventTime.Add(-time.Duration(c.cfg.AmountHistoryDays) * 24 * time.Hour)

	var amounts []float64
	for _, p := range prior {
		if !p.EventTime.Before(boundary) {
			amounts = append(amounts, p.Amount.InexactFloat64())
		}
	}

	if len(amounts) < 2 {
		rec.AmountZScore = 0
		if len(amounts) == 1 {
			rec.UserAvgAmount30 = decimal.NewFromFloat(amounts[0]).Round(2)
		}
		return
	}

	mean := 0.0
	for _, a := range amounts {
		mean += a
	}
	mean /= float64(len(amounts))

	variance := 0.0
	for _, a := range amounts {
		variance += (a - mean) * (a - mean)
	}
	// Sample standard deviation over the window
	std := math.Sqrt(variance / float64(len(amounts)-1))

	rec.UserAvgAmount30 = decimal.NewFromFloat(mean).Round(2)
	rec.UserStdAmount30 = decimal.NewFromFloat(std).Round(2)

	if std > 0 {
		rec.AmountZScore = (evt.Amount.InexactFloat64() - mean) / std
	}
}

func (c *Calculator) behavioralGroup(rec *Record, evt *event.RawEvent, hist UserHistory) {
	if last := hist.LastEvent; last != nil {
		rec.CountryChangeFlag = last.Country != "" && last.Country != evt.Country
		rec.DeviceChangeFlag = last.DeviceID != "" && evt.DeviceID != "" && last.DeviceID != evt.DeviceID
	}

	boundary := evt.EventTime.Add(-24 * time.Hour)
	countries := map[string]struct{}{evt.Country: {}}
	merchants := map[string]struct{}{evt.MerchantID: {}}
	devices := map[string]struct{}{}
	if evt.DeviceID != "" {
		devices[evt.DeviceID] = struct{}{}
	}
	for _, p := range hist.Events {
		if p.EventTime.Before(boundary) {
			continue
		}
		countries[p.Country] = struct{}{}
		merchants[p.MerchantID] = struct{}{}
		if p.DeviceID != "" {
			devices[p.DeviceID] = struct{}{}
		}
	}
	rec.UniqueCountries24h = len(countries)
	rec.UniqueMerchants24h = len(merchants)
	rec.UniqueDevices24h = len(devices)

	rec.MerchantFirstTime = !hist.SeenMerchant

	// Home country is the user's first-seen country; a first-time user's
	// home is the current country, so their transaction is never foreign.
	home := hist.HomeCountry
	if home == "" {
		home = evt.Country
	}
	rec.IsForeignTxn = evt.Country != home
}

func (c *Calculator) temporalGroup(rec *Record, evt *event.RawEvent, last *event.RawEvent) {
	t := evt.EventTime.UTC()

	rec.HourOfDay = t.Hour()
	// time.Weekday counts from Sunday; shift to 0=Monday
	rec.DayOfWeek = (int(t.Weekday()) + 6) % 7
	rec.IsWeekend = rec.DayOfWeek >= 5
	rec.IsNight = rec.HourOfDay < 6

	if last != nil {
		minutes := int(t.Sub(last.EventTime).Minutes())
		if minutes > c.cfg.MaxMinutesSinceLast {
			minutes = c.cfg.MaxMinutesSinceLast
		}
		if minutes < 0 {
			minutes = 0
		}
		rec.MinutesSinceLastTxn = &minutes
	}
}
