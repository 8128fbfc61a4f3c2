package scoring

import "fmt"

// featureDescriptions maps model feature names to investigator-facing
// explanations
var featureDescriptions = map[string]string{
	"amount":                   "Transaction amount",
	"amount_zscore":            "Amount compared to user's 30-day average",
	"user_avg_amount_30d":      "User's typical spending amount",
	"user_txn_count_1h":        "Transactions in last hour",
	"user_txn_count_24h":       "Transactions in last 24 hours",
	"user_txn_count_7d":        "Transactions in last 7 days",
	"user_amount_sum_1h":       "Total spent in last hour",
	"user_amount_sum_24h":      "Total spent in last 24 hours",
	"country_change_flag":      "Country changed from previous transaction",
	"device_change_flag":       "Device changed from previous transaction",
	"unique_countries_24h":     "Different countries in 24 hours",
	"unique_merchants_24h":     "Different merchants in 24 hours",
	"unique_devices_24h":       "Different devices in 24 hours",
	"user_merchant_first_time": "First time at this merchant",
	"hour_of_day":              "Hour of transaction",
	"day_of_week":              "Day of week",
	"is_weekend":               "Weekend transaction",
	"is_night":                 "Night-time transaction (midnight-6am UTC)",
	"minutes_since_last_txn":   "Minutes since user's previous transaction",
	"channel_encoded":          "Transaction channel",
	"is_foreign_txn":           "Outside user's home country",
}

func describeFactor(name string, value float64) string {
	desc, ok := featureDescriptions[name]
	if !ok {
		return name
	}

	switch name {
	case "amount_zscore":
		if value > 3 {
			return fmt.Sprintf("Amount is %.1f std devs above user average (very unusual)", value)
		}
		if value > 2 {
			return fmt.Sprintf("Amount is %.1f std devs above user average", value)
		}
	case "amount":
		return fmt.Sprintf("Transaction amount: %.2f", value)
	case "user_txn_count_1h":
		if value >= 5 {
			return fmt.Sprintf("%d transactions in the last hour (rapid-fire pattern)", int(value))
		}
	case "unique_countries_24h":
		if value >= 3 {
			return fmt.Sprintf("%d different countries in 24 hours", int(value))
		}
	}

	return desc
}
