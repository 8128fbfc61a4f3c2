package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-scoring-engine/internal/domain/feature"
)

func TestVectorizeMatchesCanonicalOrder(t *testing.T) {
	minutes := 42
	rec := &feature.Record{
		Amount:              decimal.NewFromInt(100),
		AmountZScore:        1.5,
		UserAvgAmount30:     decimal.NewFromInt(80),
		TxnCount1h:          2,
		TxnCount24h:         5,
		TxnCount7d:          9,
		AmountSum1h:         decimal.NewFromInt(150),
		AmountSum24h:        decimal.NewFromInt(400),
		CountryChangeFlag:   true,
		UniqueCountries24h:  2,
		UniqueMerchants24h:  3,
		UniqueDevices24h:    1,
		MerchantFirstTime:   true,
		HourOfDay:           14,
		DayOfWeek:           2,
		IsNight:             false,
		MinutesSinceLastTxn: &minutes,
		ChannelEncoded:      1,
		IsForeignTxn:        true,
	}

	vec := Vectorize(rec)
	require.Len(t, vec, len(FeatureNames))

	byName := make(map[string]float64, len(vec))
	for i, name := range FeatureNames {
		byName[name] = vec[i]
	}

	assert.Equal(t, 100.0, byName["amount"])
	assert.Equal(t, 1.5, byName["amount_zscore"])
	assert.Equal(t, 2.0, byName["user_txn_count_1h"])
	assert.Equal(t, 1.0, byName["country_change_flag"])
	assert.Equal(t, 0.0, byName["device_change_flag"])
	assert.Equal(t, 1.0, byName["user_merchant_first_time"])
	assert.Equal(t, 42.0, byName["minutes_since_last_txn"])
	assert.Equal(t, 1.0, byName["channel_encoded"])
	assert.Equal(t, 1.0, byName["is_foreign_txn"])
}

func TestVectorizeFirstTransactionGap(t *testing.T) {
	vec := Vectorize(&feature.Record{})
	require.Len(t, vec, len(FeatureNames))

	for i, name := range FeatureNames {
		if name == "minutes_since_last_txn" {
			// No preceding transaction reads as the widest possible gap
			assert.Equal(t, 10080.0, vec[i])
		}
	}
}
