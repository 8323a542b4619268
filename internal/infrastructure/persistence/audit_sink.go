package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/opsdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditSink appends audit entries to the audit_logs table. It
// writes outside any ambient transaction: audit is best-effort and a
// failed write must never roll back the recorded operation.
type GormAuditSink struct {
	db *gorm.DB
}

var _ treasury.AuditSink = (*GormAuditSink)(nil)

// NewGormAuditSink creates a new GormAuditSink
func NewGormAuditSink(db *gorm.DB) *GormAuditSink {
	return &GormAuditSink{db: db}
}

// Record appends one audit row
func (s *GormAuditSink) Record(ctx context.Context, entity, action string, actor uuid.UUID, detail string) error {
	row := models.AuditLogModel{
		ID:        uuid.New(),
		Entity:    entity,
		Action:    action,
		Actor:     actor,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}
