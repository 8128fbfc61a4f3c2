package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fraud-scoring-engine/internal/domain/event"
	"fraud-scoring-engine/internal/domain/feature"
)

// FeatureRecordModel is the database model for computed features. The
// unique constraint on transaction_id is the system's exactly-once
// surface: it must live in the schema, not in application logic, to be
// race-free across concurrent engine instances.
type FeatureRecordModel struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	TransactionID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	UserID        string    `gorm:"type:varchar(64);index:idx_features_user_time,priority:1;not null"`
	EventTime     time.Time `gorm:"index:idx_features_user_time,priority:2;not null"`
	ComputedAt    time.Time `gorm:"not null"`

	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	AmountZScore    float64         `gorm:"not null"`
	UserAvgAmount30 decimal.Decimal `gorm:"type:decimal(15,2)"`
	UserStdAmount30 decimal.Decimal `gorm:"type:decimal(15,2)"`

	TxnCount1h   int             `gorm:"not null"`
	TxnCount24h  int             `gorm:"not null"`
	TxnCount7d   int             `gorm:"not null"`
	TxnCount30d  int             `gorm:"not null"`
	AmountSum1h  decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	AmountSum24h decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	AmountSum7d  decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	AmountSum30d decimal.Decimal `gorm:"type:decimal(15,2);not null"`

	CountryChangeFlag  bool `gorm:"not null"`
	DeviceChangeFlag   bool `gorm:"not null"`
	UniqueCountries24h int  `gorm:"not null"`
	UniqueMerchants24h int  `gorm:"not null"`
	UniqueDevices24h   int  `gorm:"not null"`
	MerchantFirstTime  bool `gorm:"not null"`

	HourOfDay           int  `gorm:"not null"`
	DayOfWeek           int  `gorm:"not null"`
	IsWeekend           bool `gorm:"not null"`
	IsNight             bool `gorm:"not null"`
	MinutesSinceLastTxn *int

	Channel        string `gorm:"type:varchar(10);not null"`
	ChannelEncoded int    `gorm:"not null"`
	Country        string `gorm:"type:varchar(2)"`
	IsForeignTxn   bool   `gorm:"not null"`

	Label *bool `gorm:"index"`
}

// TableName returns the table name for feature records
func (FeatureRecordModel) TableName() string {
	return "transaction_features"
}

// FeatureRepository implements feature.Repository
type FeatureRepository struct {
	db *gorm.DB
}

// NewFeatureRepository creates a new feature repository
func NewFeatureRepository(client *Client) *FeatureRepository {
	return &FeatureRepository{db: client.DB()}
}

// Create inserts a feature record, translating unique-constraint
// violations into feature.ErrDuplicateRecord so callers can tell
// benign redelivery apart from genuine storage failure
func (r *FeatureRepository) Create(ctx context.Context, rec *feature.Record) error {
	model := recordToModel(rec)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return feature.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

// GetByTransactionID retrieves a feature record
func (r *FeatureRepository) GetByTransactionID(ctx context.Context, id uuid.UUID) (*feature.Record, error) {
	var model FeatureRecordModel
	if err := r.db.WithContext(ctx).First(&model, "transaction_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, feature.ErrRecordNotFound
		}
		return nil, err
	}
	return modelToRecord(&model), nil
}

// ListLabeled retrieves labeled records in the window ordered by event
// time, for training
func (r *FeatureRepository) ListLabeled(ctx context.Context, from, until time.Time, limit int) ([]*feature.Record, error) {
	var models []FeatureRecordModel
	if err := r.db.WithContext(ctx).
		Where("label IS NOT NULL AND event_time >= ? AND event_time <= ?", from, until).
		Order("event_time ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*feature.Record, len(models))
	for i := range models {
		records[i] = modelToRecord(&models[i])
	}
	return records, nil
}

func recordToModel(rec *feature.Record) *FeatureRecordModel {
	return &FeatureRecordModel{
		TransactionID:       rec.TransactionID,
		UserID:              rec.UserID,
		EventTime:           rec.EventTime.UTC(),
		ComputedAt:          rec.ComputedAt,
		Amount:              rec.Amount,
		AmountZScore:        rec.AmountZScore,
		UserAvgAmount30:     rec.UserAvgAmount30,
		UserStdAmount30:     rec.UserStdAmount30,
		TxnCount1h:          rec.TxnCount1h,
		TxnCount24h:         rec.TxnCount24h,
		TxnCount7d:          rec.TxnCount7d,
		TxnCount30d:         rec.TxnCount30d,
		AmountSum1h:         rec.AmountSum1h,
		AmountSum24h:        rec.AmountSum24h,
		AmountSum7d:         rec.AmountSum7d,
		AmountSum30d:        rec.AmountSum30d,
		CountryChangeFlag:   rec.CountryChangeFlag,
		DeviceChangeFlag:    rec.DeviceChangeFlag,
		UniqueCountries24h:  rec.UniqueCountries24h,
		UniqueMerchants24h:  rec.UniqueMerchants24h,
		UniqueDevices24h:    rec.UniqueDevices24h,
		MerchantFirstTime:   rec.MerchantFirstTime,
		HourOfDay:           rec.HourOfDay,
		DayOfWeek:           rec.DayOfWeek,
		IsWeekend:           rec.IsWeekend,
		IsNight:             rec.IsNight,
		MinutesSinceLastTxn: rec.MinutesSinceLastTxn,
		Channel:             string(rec.Channel),
		ChannelEncoded:      rec.ChannelEncoded,
		Country:             rec.Country,
		IsForeignTxn:        rec.IsForeignTxn,
		Label:               rec.Label,
	}
}

func modelToRecord(m *FeatureRecordModel) *feature.Record {
	return &feature.Record{
		TransactionID:       m.TransactionID,
		UserID:              m.UserID,
		EventTime:           m.EventTime,
		ComputedAt:          m.ComputedAt,
		Amount:              m.Amount,
		AmountZScore:        m.AmountZScore,
		UserAvgAmount30:     m.UserAvgAmount30,
		UserStdAmount30:     m.UserStdAmount30,
		TxnCount1h:          m.TxnCount1h,
		TxnCount24h:         m.TxnCount24h,
		TxnCount7d:          m.TxnCount7d,
		TxnCount30d:         m.TxnCount30d,
		AmountSum1h:         m.AmountSum1h,
		AmountSum24h:        m.AmountSum24h,
		AmountSum7d:         m.AmountSum7d,
		AmountSum30d:        m.AmountSum30d,
		CountryChangeFlag:   m.CountryChangeFlag,
		DeviceChangeFlag:    m.DeviceChangeFlag,
		UniqueCountries24h:  m.UniqueCountries24h,
		UniqueMerchants24h:  m.UniqueMerchants24h,
		UniqueDevices24h:    m.UniqueDevices24h,
		MerchantFirstTime:   m.MerchantFirstTime,
		HourOfDay:           m.HourOfDay,
		DayOfWeek:           m.DayOfWeek,
		IsWeekend:           m.IsWeekend,
		IsNight:             m.IsNight,
		MinutesSinceLastTxn: m.MinutesSinceLastTxn,
		Channel:             event.Channel(m.Channel),
		ChannelEncoded:      m.ChannelEncoded,
		Country:             m.Country,
		IsForeignTxn:        m.IsForeignTxn,
		Label:               m.Label,
	}
}
