package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fraud-scoring-engine/internal/domain/event"
)

// RawEventModel is the database model for archived raw events
type RawEventModel struct {
	TransactionID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        string          `gorm:"type:varchar(64);index:idx_events_user_time,priority:1;not null"`
	CardID        string          `gorm:"type:varchar(64)"`
	MerchantID    string          `gorm:"type:varchar(64);index"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	EventTime     time.Time       `gorm:"index:idx_events_user_time,priority:2;not null"`
	Channel       string          `gorm:"type:varchar(10);not null"`
	Country       string          `gorm:"type:varchar(2)"`
	City          string          `gorm:"type:varchar(100)"`
	DeviceID      string          `gorm:"type:varchar(64)"`
	Label         *bool
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for raw events
func (RawEventModel) TableName() string {
	return "raw_events"
}

// EventRepository implements event.Repository
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(client *Client) *EventRepository {
	return &EventRepository{db: client.DB()}
}

// Save archives an event. Re-delivery of an already archived
// transaction is a no-op; events are immutable once written.
func (r *EventRepository) Save(ctx context.Context, e *event.RawEvent) error {
	model := eventToModel(e)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
}

// GetByTransactionID retrieves an archived event
func (r *EventRepository) GetByTransactionID(ctx context.Context, id uuid.UUID) (*event.RawEvent, error) {
	var model RawEventModel
	if err := r.db.WithContext(ctx).First(&model, "transaction_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, event.ErrEventNotFound
		}
		return nil, err
	}
	return modelToEvent(&model), nil
}

// Exists reports whether the transaction was archived
func (r *EventRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RawEventModel{}).
		Where("transaction_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// ListUserHistory retrieves the user's events in the window ordered by
// event_time ascending, served by the (user_id, event_time) index
func (r *EventRepository) ListUserHistory(ctx context.Context, userID string, from, until time.Time) ([]*event.RawEvent, error) {
	var models []RawEventModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_time >= ? AND event_time <= ?", userID, from, until).
		Order("event_time ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	events := make([]*event.RawEvent, len(models))
	for i := range models {
		events[i] = modelToEvent(&models[i])
	}
	return events, nil
}

// LastBefore retrieves the user's most recent event strictly before a time
func (r *EventRepository) LastBefore(ctx context.Context, userID string, before time.Time) (*event.RawEvent, error) {
	var model RawEventModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_time < ?", userID, before).
		Order("event_time DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, event.ErrEventNotFound
		}
		return nil, err
	}
	return modelToEvent(&model), nil
}

// FirstSeenCountry returns the country of the user's earliest event
// strictly before the given time
func (r *EventRepository) FirstSeenCountry(ctx context.Context, userID string, before time.Time) (string, error) {
	var model RawEventModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_time < ?", userID, before).
		Order("event_time ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return model.Country, nil
}

// HasPriorAtMerchant reports whether the user transacted at the
// merchant strictly before the given time
func (r *EventRepository) HasPriorAtMerchant(ctx context.Context, userID, merchantID string, before time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RawEventModel{}).
		Where("user_id = ? AND merchant_id = ? AND event_time < ?", userID, merchantID, before).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func eventToModel(e *event.RawEvent) *RawEventModel {
	return &RawEventModel{
		TransactionID: e.TransactionID,
		UserID:        e.UserID,
		CardID:        e.CardID,
		MerchantID:    e.MerchantID,
		Amount:        e.Amount,
		Currency:      e.Currency,
		EventTime:     e.EventTime.UTC(),
		Channel:       string(e.Channel),
		Country:       e.Country,
		City:          e.City,
		DeviceID:      e.DeviceID,
		Label:         e.Label,
		CreatedAt:     time.Now().UTC(),
	}
}

func modelToEvent(m *RawEventModel) *event.RawEvent {
	return &event.RawEvent{
		TransactionID: m.TransactionID,
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
	}
}
