package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/opsdesk/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

var _ treasury.MovementRepository = (*GormMovementRepository)(nil)

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindByID finds a movement by id
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Movement, error) {
	var model models.MovementModel
	if err := dbFor(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new movement
func (r *GormMovementRepository) Create(ctx context.Context, movement *treasury.Movement) error {
	model := models.MovementModelFromDomain(movement)
	return dbFor(ctx, r.db).Create(model).Error
}

// Save updates an existing movement
func (r *GormMovementRepository) Save(ctx context.Context, movement *treasury.Movement) error {
	model := models.MovementModelFromDomain(movement)
	return dbFor(ctx, r.db).Save(model).Error
}

// MarkApproved performs the conditional pending-to-approved update. Only
// a withdrawal still awaiting approval matches the WHERE clause, so a
// second approval of the same movement reports false instead of silently
// overwriting the first approver.
func (r *GormMovementRepository) MarkApproved(ctx context.Context, id, approvedBy uuid.UUID, at time.Time) (bool, error) {
	result := dbFor(ctx, r.db).
		Model(&models.MovementModel{}).
		Where("id = ? AND type = ? AND approval_status = ?",
			id, treasury.MovementTypeWithdrawal, treasury.ApprovalStatusPending).
		Updates(map[string]any{
			"approval_status": treasury.ApprovalStatusApproved,
			"approved_by":     approvedBy,
			"approved_at":     at,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a movement administratively
func (r *GormMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFor(ctx, r.db).Delete(&models.MovementModel{}, "id = ?", id).Error
}

// SumApprovedByType sums approved movements of a type, optionally
// restricted by registration date. Pending withdrawals are excluded:
// until approved they have no balance effect.
func (r *GormMovementRepository) SumApprovedByType(ctx context.Context, movementType treasury.MovementType, from, to *time.Time) (valueobject.Money, error) {
	query := dbFor(ctx, r.db).
		Model(&models.MovementModel{}).
		Where("type = ? AND approval_status = ?", movementType, treasury.ApprovalStatusApproved)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var total decimal.NullDecimal
	if err := query.Select("SUM(amount)").Scan(&total).Error; err != nil {
		return valueobject.Zero(), err
	}
	if !total.Valid {
		return valueobject.Zero(), nil
	}
	return valueobject.NewMoney(total.Decimal), nil
}
