package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"fraud-scoring-engine/internal/domain/scoring"
)

// AlertPublisher pushes REVIEW/BLOCK alerts to the alerts topic for
// downstream case-management consumers. Implements
// scoring.AlertPublisher.
type AlertPublisher struct {
	writer *kafka.Writer
}

// NewAlertPublisher creates an alert publisher
func NewAlertPublisher(brokers []string, topic string) *AlertPublisher {
	return &AlertPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish sends one alert, keyed by transaction so redeliveries of the
// same transaction land on the same partition
func (p *AlertPublisher) Publish(ctx context.Context, alert *scoring.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert %s: %w", alert.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(alert.TransactionID.String()),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish alert %s: %w", alert.ID, err)
	}
	return nil
}

// Close closes the underlying writer
func (p *AlertPublisher) Close() error {
	return p.writer.Close()
}
