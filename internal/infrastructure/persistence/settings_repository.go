package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/settings"
	"github.com/opsdesk/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

var _ settings.Repository = (*GormSettingsRepository)(nil)

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// GetNumber returns the numeric value of a key, or the default when the
// key has never been written
func (r *GormSettingsRepository) GetNumber(ctx context.Context, key string, def decimal.Decimal) (decimal.Decimal, error) {
	var model models.SettingModel
	if err := dbFor(ctx, r.db).First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return def, nil
		}
		return decimal.Zero, err
	}
	value, err := decimal.NewFromString(model.Value)
	if err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

// SetNumber upserts a numeric value. A base-balance write additionally
// appends its audit row; both statements share the caller's transaction,
// so the trail never diverges from the stored value.
func (r *GormSettingsRepository) SetNumber(ctx context.Context, key string, value decimal.Decimal, changedBy uuid.UUID) error {
	db := dbFor(ctx, r.db)

	if key == settings.KeyBaseBalance {
		previous, err := r.GetNumber(ctx, key, settings.DefaultBaseBalance)
		if err != nil {
			return err
		}
		audit := models.BaseBalanceAuditModel{
			ID:            uuid.New(),
			PreviousValue: previous,
			NewValue:      value,
			ChangedBy:     changedBy,
			ChangedAt:     time.Now(),
		}
		if err := db.Create(&audit).Error; err != nil {
			return err
		}
	}

	now := time.Now()
	model := models.SettingModel{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Key:       key,
		Value:     value.String(),
		UpdatedBy: &changedBy,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&model).Error
}

// BaseBalanceAuditTrail returns the most recent base-balance changes,
// newest first
func (r *GormSettingsRepository) BaseBalanceAuditTrail(ctx context.Context, limit int) ([]settings.BaseBalanceAudit, error) {
	var auditModels []models.BaseBalanceAuditModel
	if err := dbFor(ctx, r.db).
		Order("changed_at DESC").
		Limit(limit).
		Find(&auditModels).Error; err != nil {
		return nil, err
	}
	trail := make([]settings.BaseBalanceAudit, len(auditModels))
	for i, model := range auditModels {
		trail[i] = model.ToDomain()
	}
	return trail, nil
}
