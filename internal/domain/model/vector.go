package model

import (
	"fraud-scoring-engine/internal/domain/feature"
)

// FeatureNames is the canonical model input order. Training and
// serving both vectorize through this list; changing it invalidates
// every registered artifact.
var FeatureNames = []string{
	"amount",
	"amount_zscore",
	"user_avg_amount_30d",
	"user_txn_count_1h",
	"user_txn_count_24h",
	"user_txn_count_7d",
	"user_amount_sum_1h",
	"user_amount_sum_24h",
	"country_change_flag",
	"device_change_flag",
	"unique_countries_24h",
	"unique_merchants_24h",
	"unique_devices_24h",
	"user_merchant_first_time",
	"hour_of_day",
	"day_of_week",
	"is_weekend",
	"is_night",
	"minutes_since_last_txn",
	"channel_encoded",
	"is_foreign_txn",
}

// Vectorize converts a feature record into the canonical model input
// vector. A missing minutes_since_last_txn (first transaction for the
// user) maps to the one-week cap, matching its meaning of "a long gap".
func Vectorize(rec *feature.Record) []float64 {
	minutes := 10080.0
	if rec.MinutesSinceLastTxn != nil {
		minutes = float64(*rec.MinutesSinceLastTxn)
	}

	return []float64{
		rec.Amount.InexactFloat64(),
		rec.AmountZScore,
		rec.UserAvgAmount30.InexactFloat64(),
		float64(rec.TxnCount1h),
		float64(rec.TxnCount24h),
		float64(rec.TxnCount7d),
		rec.AmountSum1h.InexactFloat64(),
		rec.AmountSum24h.InexactFloat64(),
		boolToFloat(rec.CountryChangeFlag),
		boolToFloat(rec.DeviceChangeFlag),
		float64(rec.UniqueCountries24h),
		float64(rec.UniqueMerchants24h),
		float64(rec.UniqueDevices24h),
		boolToFloat(rec.MerchantFirstTime),
		float64(rec.HourOfDay),
		float64(rec.DayOfWeek),
		boolToFloat(rec.IsWeekend),
		boolToFloat(rec.IsNight),
		minutes,
		float64(rec.ChannelEncoded),
		boolToFloat(rec.IsForeignTxn),
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
