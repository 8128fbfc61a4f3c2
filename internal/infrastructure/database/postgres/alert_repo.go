package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fraud-scoring-engine/internal/domain/scoring"
)

// AlertModel is the database model for fraud alerts
type AlertModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID `gorm:"type:uuid;index;not null"`
	Decision      string    `gorm:"type:varchar(10);index;not null"`
	Score         float64   `gorm:"not null"`
	AnomalyScore  float64   `gorm:"not null"`
	ModelVersion  string    `gorm:"type:varchar(32);not null"`
	CreatedAt     time.Time `gorm:"index;not null"`
}

// TableName returns the table name for alerts
func (AlertModel) TableName() string {
	return "fraud_alerts"
}

// AlertRepository implements scoring.AlertRepository
type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(client *Client) *AlertRepository {
	return &AlertRepository{db: client.DB()}
}

// Create persists an alert
func (r *AlertRepository) Create(ctx context.Context, alert *scoring.Alert) error {
	model := &AlertModel{
		ID:            alert.ID,
		TransactionID: alert.TransactionID,
		Decision:      string(alert.Decision),
		Score:         alert.Score,
		AnomalyScore:  alert.AnomalyScore,
		ModelVersion:  alert.ModelVersion,
		CreatedAt:     alert.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// ListRecent returns the newest alerts first
func (r *AlertRepository) ListRecent(ctx context.Context, limit int) ([]*scoring.Alert, error) {
	var models []AlertModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}

	alerts := make([]*scoring.Alert, len(models))
	for i, m := range models {
		alerts[i] = &scoring.Alert{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			Decision:      scoring.Decision(m.Decision),
			Score:         m.Score,
			AnomalyScore:  m.AnomalyScore,
			ModelVersion:  m.ModelVersion,
			CreatedAt:     m.CreatedAt,
		}
	}
	return alerts, nil
}

// CountByDecision aggregates alert counts per decision since the given time
func (r *AlertRepository) CountByDecision(ctx context.Context, since time.Time) (map[scoring.Decision]int64, error) {
	type row struct {
		Decision string
		Count    int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&AlertModel{}).
		Select("decision, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("decision").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[scoring.Decision]int64, len(rows))
	for _, r := range rows {
		counts[scoring.Decision(r.Decision)] = r.Count
	}
	return counts, nil
}
