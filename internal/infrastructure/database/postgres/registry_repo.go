package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fraud-scoring-engine/internal/domain/model"
)

// ModelArtifactModel is the database model for registered artifacts.
// Rows are immutable; the unique (version, kind) index rejects
// re-registration of an existing version.
type ModelArtifactModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Version      string    `gorm:"type:varchar(32);uniqueIndex:idx_artifacts_version_kind,priority:1;not null"`
	Kind         string    `gorm:"type:varchar(16);uniqueIndex:idx_artifacts_version_kind,priority:2;not null"`
	Payload      []byte    `gorm:"type:bytea;not null"`
	Metrics      []byte    `gorm:"type:jsonb"`
	GatePassed   bool      `gorm:"not null"`
	RegisteredAt time.Time `gorm:"not null"`
}

// TableName returns the table name for model artifacts
func (ModelArtifactModel) TableName() string {
	return "model_artifacts"
}

// ModelPointerModel is the single-row table holding the currently
// passing model version. The fixed primary key makes updates an upsert
// on one row, so pointer advances are atomic.
type ModelPointerModel struct {
	ID        int       `gorm:"primaryKey"`
	Version   string    `gorm:"type:varchar(32);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the current-model pointer
func (ModelPointerModel) TableName() string {
	return "model_current"
}

const currentPointerID = 1

// RegistryRepository implements model.Registry
type RegistryRepository struct {
	db *gorm.DB
}

// NewRegistryRepository creates a new model registry repository
func NewRegistryRepository(client *Client) *RegistryRepository {
	return &RegistryRepository{db: client.DB()}
}

// Save registers an immutable artifact
func (r *RegistryRepository) Save(ctx context.Context, a *model.Artifact) error {
	metrics, err := json.Marshal(a.Metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	row := &ModelArtifactModel{
		Version:      a.Version,
		Kind:         string(a.Kind),
		Payload:      a.Payload,
		Metrics:      metrics,
		GatePassed:   a.GatePassed,
		RegisteredAt: a.RegisteredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ErrVersionExists
		}
		return err
	}
	return nil
}

// SetCurrent advances the current-passing pointer inside a transaction
// that verifies both gate-passing artifacts exist for the version
func (r *RegistryRepository) SetCurrent(ctx context.Context, version string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ModelArtifactModel{}).
			Where("version = ? AND gate_passed = ?", version, true).
			Count(&count).Error; err != nil {
			return err
		}
		if count != 2 {
			return fmt.Errorf("version %s is not a complete passing set", version)
		}
		pointer := &ModelPointerModel{
			ID:        currentPointerID,
			Version:   version,
			UpdatedAt: time.Now().UTC(),
		}
		return tx.Save(pointer).Error
	})
}

// Current loads both artifacts of the currently passing version
func (r *RegistryRepository) Current(ctx context.Context) (*model.Set, error) {
	version, err := r.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	var rows []ModelArtifactModel
	if err := r.db.WithContext(ctx).
		Where("version = ?", version).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	set := &model.Set{Version: version}
	for i := range rows {
		artifact, err := rowToArtifact(&rows[i])
		if err != nil {
			return nil, err
		}
		switch artifact.Kind {
		case model.KindSupervised:
			set.Supervised = artifact
		case model.KindAnomaly:
			set.Anomaly = artifact
		}
	}
	if set.Supervised == nil || set.Anomaly == nil {
		return nil, fmt.Errorf("version %s is missing an ensemble member", version)
	}
	return set, nil
}

// CurrentVersion reads the pointer without loading payloads
func (r *RegistryRepository) CurrentVersion(ctx context.Context) (string, error) {
	var pointer ModelPointerModel
	if err := r.db.WithContext(ctx).First(&pointer, "id = ?", currentPointerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", model.ErrNoPassingModel
		}
		return "", err
	}
	return pointer.Version, nil
}

func rowToArtifact(row *ModelArtifactModel) (*model.Artifact, error) {
	metrics := make(map[string]float64)
	if len(row.Metrics) > 0 {
		if err := json.Unmarshal(row.Metrics, &metrics); err != nil {
			return nil, fmt.Errorf("decode metrics for %s/%s: %w", row.Version, row.Kind, err)
		}
	}
	return &model.Artifact{
		Version:      row.Version,
		Kind:         model.Kind(row.Kind),
		Payload:      row.Payload,
		Metrics:      metrics,
		GatePassed:   row.GatePassed,
		RegisteredAt: row.RegisteredAt,
	}, nil
}
