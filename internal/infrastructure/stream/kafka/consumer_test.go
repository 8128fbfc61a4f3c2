package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-scoring-engine/internal/domain/event"
)

func TestTransactionMessageToEvent(t *testing.T) {
	txID := uuid.New()
	payload := []byte(`{
		"transaction_id": "` + txID.String() + `",
		"user_id": "u1",
		"card_id": "c1",
		"merchant_id": "m1",
		"amount": "129.99",
		"currency": "EUR",
		"event_time": "2025-06-02T12:00:00Z",
		"channel": "ECOM",
		"country": "DE",
		"device_id": "d1"
	}`)

	var msg TransactionMessage
	require.NoError(t, json.Unmarshal(payload, &msg))

	evt, err := msg.ToEvent()
	require.NoError(t, err)

	assert.Equal(t, txID, evt.TransactionID)
	assert.Equal(t, "u1", evt.UserID)
	assert.True(t, evt.Amount.Equal(decimal.RequireFromString("129.99")))
	assert.Equal(t, event.ChannelEcom, evt.Channel)
	assert.Equal(t, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), evt.EventTime.UTC())
	assert.NoError(t, evt.Validate())
}

func TestTransactionMessageRejectsBadID(t *testing.T) {
	msg := TransactionMessage{TransactionID: "not-a-uuid", UserID: "u1"}

	_, err := msg.ToEvent()
	assert.Error(t, err)
}

func TestTransactionMessageCarriesLabel(t *testing.T) {
	var msg TransactionMessage
	require.NoError(t, json.Unmarshal([]byte(`{
		"transaction_id": "`+uuid.NewString()+`",
		"user_id": "u1",
		"amount": "10",
		"event_time": "2025-06-02T12:00:00Z",
		"label": true
	}`), &msg))

	evt, err := msg.ToEvent()
	require.NoError(t, err)
	require.NotNil(t, evt.Label)
	assert.True(t, *evt.Label)
}
