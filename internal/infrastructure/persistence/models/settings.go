package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
)

// SettingModel is the persistence model for one named setting
type SettingModel struct {
	BaseModel
	Key       string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Value     string     `gorm:"type:varchar(500);not null"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}

// ToDomain converts the persistence model to a domain Setting
func (m *SettingModel) ToDomain() *settings.Setting {
	return &settings.Setting{
		BaseEntity: m.BaseModel.ToDomain(),
		Key:        m.Key,
		Value:      m.Value,
		UpdatedBy:  m.UpdatedBy,
	}
}

// BaseBalanceAuditModel is the append-only persistence model for
// base-balance changes
type BaseBalanceAuditModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	PreviousValue decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewValue      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ChangedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	ChangedAt     time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (BaseBalanceAuditModel) TableName() string {
	return "base_balance_audits"
}

// ToDomain converts the persistence model to a domain BaseBalanceAudit
func (m *BaseBalanceAuditModel) ToDomain() settings.BaseBalanceAudit {
	return settings.BaseBalanceAudit{
		ID:            m.ID,
		PreviousValue: m.PreviousValue,
		NewValue:      m.NewValue,
		ChangedBy:     m.ChangedBy,
		ChangedAt:     m.ChangedAt,
	}
}
