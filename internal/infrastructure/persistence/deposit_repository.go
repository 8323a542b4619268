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

// GormDepositRepository implements DepositRepository using GORM
type GormDepositRepository struct {
	db *gorm.DB
}

var _ treasury.DepositRepository = (*GormDepositRepository)(nil)

// NewGormDepositRepository creates a new GormDepositRepository
func NewGormDepositRepository(db *gorm.DB) *GormDepositRepository {
	return &GormDepositRepository{db: db}
}

// FindByID finds a deposit with its details
func (r *GormDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Deposit, error) {
	var model models.DepositModel
	if err := dbFor(ctx, r.db).
		Preload("Details").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CreateWithDetails inserts the deposit header and all details in one
// insert graph. Callers wrap it in a transaction, so a detail failure
// (including the unique order constraint) rolls back the header too.
func (r *GormDepositRepository) CreateWithDetails(ctx context.Context, deposit *treasury.Deposit) error {
	model := models.DepositModelFromDomain(deposit)
	return dbFor(ctx, r.db).Create(model).Error
}

// Save updates the deposit header without touching the detail set
func (r *GormDepositRepository) Save(ctx context.Context, deposit *treasury.Deposit) error {
	model := models.DepositModelFromDomain(deposit)
	return dbFor(ctx, r.db).Omit("Details").Save(model).Error
}

// ExistsRecentDuplicate reports whether an identical (amount, reference,
// depositor) deposit was created within the trailing window
func (r *GormDepositRepository) ExistsRecentDuplicate(ctx context.Context, amount valueobject.Money, referenceNumber string, depositedBy uuid.UUID, window time.Duration) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db).
		Model(&models.DepositModel{}).
		Where("amount = ? AND reference_number = ? AND deposited_by = ? AND created_at >= ?",
			amount.Amount(), referenceNumber, depositedBy, time.Now().Add(-window)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// OrdersAlreadyAssigned returns which of the given orders already appear
// in any deposit's detail set
func (r *GormDepositRepository) OrdersAlreadyAssigned(ctx context.Context, orderIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var assigned []uuid.UUID
	err := dbFor(ctx, r.db).
		Model(&models.DepositDetailModel{}).
		Where("order_id IN ?", orderIDs).
		Pluck("order_id", &assigned).Error
	if err != nil {
		return nil, err
	}
	return assigned, nil
}

// SumDeposits sums deposit amounts, optionally restricted by deposit date
func (r *GormDepositRepository) SumDeposits(ctx context.Context, from, to *time.Time) (valueobject.Money, error) {
	query := dbFor(ctx, r.db).Model(&models.DepositModel{})
	if from != nil {
		query = query.Where("deposited_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("deposited_at <= ?", *to)
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

type depositCandidateRow struct {
	OrderID       uuid.UUID
	AcceptedTotal decimal.Decimal
	AssignedTotal decimal.Decimal
}

// Candidates returns, per order, the accepted messenger and warehouse
// cash not yet swept into any deposit. Only positive differences qualify.
func (r *GormDepositRepository) Candidates(ctx context.Context) ([]treasury.DepositCandidate, error) {
	var rows []depositCandidateRow
	err := dbFor(ctx, r.db).Raw(`
		SELECT e.linked_order_id AS order_id,
		       SUM(e.declared_amount) AS accepted_total,
		       COALESCE(a.assigned_total, 0) AS assigned_total
		FROM cash_events e
		LEFT JOIN (
			SELECT order_id, SUM(assigned_amount) AS assigned_total
			FROM deposit_details
			GROUP BY order_id
		) a ON a.order_id = e.linked_order_id
		WHERE e.status = ?
		  AND e.source IN ?
		  AND e.linked_order_id IS NOT NULL
		GROUP BY e.linked_order_id, a.assigned_total
		HAVING SUM(e.declared_amount) - COALESCE(a.assigned_total, 0) > 0
		ORDER BY e.linked_order_id`,
		treasury.CollectionStatusCollected,
		[]treasury.CashSource{treasury.CashSourceMessenger, treasury.CashSourceWarehouse},
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]treasury.DepositCandidate, len(rows))
	for i, row := range rows {
		accepted := valueobject.NewMoney(row.AcceptedTotal)
		assigned := valueobject.NewMoney(row.AssignedTotal)
		candidates[i] = treasury.DepositCandidate{
			OrderID:         row.OrderID,
			AcceptedTotal:   accepted,
			AssignedTotal:   assigned,
			AvailableAmount: accepted.Subtract(assigned),
		}
	}
	return candidates, nil
}
