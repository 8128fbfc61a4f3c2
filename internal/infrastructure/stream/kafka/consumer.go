package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"fraud-scoring-engine/internal/domain/event"
	"fraud-scoring-engine/internal/domain/feature"
	"fraud-scoring-engine/internal/pkg/telemetry"
)

// TransactionMessage is the wire format of a transaction event on the
// transactions topic
type TransactionMessage struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	CardID        string          `json:"card_id"`
	MerchantID    string          `json:"merchant_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	EventTime     time.Time       `json:"event_time"`
	Channel       string          `json:"channel"`
	Country       string          `json:"country"`
	City          string          `json:"city,omitempty"`
	DeviceID      string          `json:"device_id,omitempty"`
	Label         *bool           `json:"label,omitempty"`
}

// ToEvent converts the wire message into a domain event
func (m *TransactionMessage) ToEvent() (*event.RawEvent, error) {
	txID, err := uuid.Parse(m.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction_id %q: %w", m.TransactionID, err)
	}
	return &event.RawEvent{
		TransactionID: txID,
		UserID:        m.UserID,
		CardID:        m.CardID,
		MerchantID:    m.MerchantID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		EventTime:     m.EventTime,
		Channel:       event.Channel(m.Channel),
		Country:       m.Country,
		City:          m.City,
		DeviceID:      m.DeviceID,
		Label:         m.Label,
	}, nil
}

// ConsumerConfig holds transaction consumer configuration
type ConsumerConfig struct {
	Brokers         []string
	Topic           string
	DeadLetterTopic string
	GroupID         string
	MinBytes        int
	MaxBytes        int
	MaxWait         time.Duration
}

// Consumer reads transaction events from Kafka and feeds them to the
// aggregation engine. Offsets are committed only after the engine has
// durably materialized the record, classified the event as a benign
// duplicate, or parked it on the dead-letter topic. Together with the
// store's unique constraint this gives at-least-once delivery with
// exactly-once effects.
type Consumer struct {
	reader  *kafka.Reader
	dlq     *kafka.Writer
	engine  *feature.Engine
	metrics *telemetry.Metrics
}

// NewConsumer creates a transaction consumer
func NewConsumer(cfg ConsumerConfig, engine *feature.Engine, metrics *telemetry.Metrics) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
		MaxWait:  cfg.MaxWait,
	})
	dlq := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.DeadLetterTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return &Consumer{reader: reader, dlq: dlq, engine: engine, metrics: metrics}
}

// Run consumes until the context is cancelled
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("consumer: fetch failed: %v", err)
			continue
		}

		if err := c.handle(ctx, msg); err != nil {
			// Could not process the event or park it; leave the offset
			// uncommitted so the event is redelivered after restart
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("consumer: commit failed at offset %d: %v", msg.Offset, err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	start := time.Now()

	var wire TransactionMessage
	if err := json.Unmarshal(msg.Value, &wire); err != nil {
		log.Printf("consumer: undecodable message at offset %d: %v", msg.Offset, err)
		return c.park(ctx, msg, err)
	}

	evt, err := wire.ToEvent()
	if err != nil {
		log.Printf("consumer: malformed event at offset %d: %v", msg.Offset, err)
		return c.park(ctx, msg, err)
	}

	_, err = c.engine.OnEvent(ctx, evt)
	switch {
	case err == nil:
		c.metrics.EventsProcessed.Inc()
		c.metrics.ProcessingTime.Observe(time.Since(start).Seconds())
		return nil
	case errors.Is(err, feature.ErrDuplicateRecord):
		c.metrics.DuplicateEvents.Inc()
		return nil
	case errors.Is(err, feature.ErrStoreUnavailable):
		log.Printf("consumer: store unavailable for %s after retries: %v", evt.TransactionID, err)
		return c.park(ctx, msg, err)
	default:
		// Validation failures never become processable on redelivery
		log.Printf("consumer: rejected event %s: %v", evt.TransactionID, err)
		return c.park(ctx, msg, err)
	}
}

// park moves an unprocessable event to the dead-letter topic for
// manual inspection, annotated with the failure reason
func (c *Consumer) park(ctx context.Context, msg kafka.Message, cause error) error {
	dead := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers, kafka.Header{
			Key:   "x-dead-letter-reason",
			Value: []byte(cause.Error()),
		}),
	}
	if err := c.dlq.WriteMessages(ctx, dead); err != nil {
		return fmt.Errorf("park poison event at offset %d: %w", msg.Offset, err)
	}
	c.metrics.PoisonEvents.Inc()
	return nil
}

// Close closes the Kafka reader and dead-letter writer
func (c *Consumer) Close() error {
	rerr := c.reader.Close()
	werr := c.dlq.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}
