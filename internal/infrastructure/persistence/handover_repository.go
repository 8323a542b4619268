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

// GormHandoverRepository implements HandoverRepository using GORM
type GormHandoverRepository struct {
	db *gorm.DB
}

var _ treasury.HandoverRepository = (*GormHandoverRepository)(nil)

// NewGormHandoverRepository creates a new GormHandoverRepository
func NewGormHandoverRepository(db *gorm.DB) *GormHandoverRepository {
	return &GormHandoverRepository{db: db}
}

// FindByID finds a handover by id
func (r *GormHandoverRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Handover, error) {
	var model models.HandoverModel
	if err := dbFor(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustodianAndPeriod finds the open handover of a custodian for a
// calendar day. Closed handovers are excluded so a late acceptance after
// close materializes into a fresh handover instead of mutating a closed
// one.
func (r *GormHandoverRepository) FindByCustodianAndPeriod(ctx context.Context, custodianID uuid.UUID, periodKey time.Time) (*treasury.Handover, error) {
	var model models.HandoverModel
	if err := dbFor(ctx, r.db).
		Where("custodian_id = ? AND period_key = ? AND approved_at IS NULL", custodianID, periodKey).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new handover
func (r *GormHandoverRepository) Create(ctx context.Context, handover *treasury.Handover) error {
	model := models.HandoverModelFromDomain(handover)
	return dbFor(ctx, r.db).Create(model).Error
}

// Save updates an existing handover
func (r *GormHandoverRepository) Save(ctx context.Context, handover *treasury.Handover) error {
	model := models.HandoverModelFromDomain(handover)
	return dbFor(ctx, r.db).Save(model).Error
}

type virtualHandoverRow struct {
	Class          string
	PeriodKey      time.Time
	ExpectedAmount decimal.Decimal
	DeclaredAmount decimal.Decimal
	EventCount     int
}

// VirtualWarehouseHandovers groups accepted warehouse cash events by
// collection day and counter class. An event logged by a named counter
// operator belongs to the counter class; an event without a custodian was
// registered administratively. Nothing is persisted and the groupings are
// recomputed on every call.
func (r *GormHandoverRepository) VirtualWarehouseHandovers(ctx context.Context, from, to *time.Time) ([]treasury.VirtualHandover, error) {
	query := dbFor(ctx, r.db).
		Model(&models.CashEventModel{}).
		Select(`CASE WHEN custodian_id IS NOT NULL THEN ? ELSE ? END AS class,
			DATE_TRUNC('day', collected_at) AS period_key,
			SUM(expected_amount) AS expected_amount,
			SUM(declared_amount) AS declared_amount,
			COUNT(*) AS event_count`,
			treasury.WarehouseClassCounter, treasury.WarehouseClassAdmin).
		Where("source = ? AND status = ?", treasury.CashSourceWarehouse, treasury.CollectionStatusCollected)
	if from != nil {
		query = query.Where("collected_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("collected_at <= ?", *to)
	}

	var rows []virtualHandoverRow
	if err := query.
		Group("1, 2").
		Order("period_key DESC, class ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	handovers := make([]treasury.VirtualHandover, len(rows))
	for i, row := range rows {
		handovers[i] = treasury.VirtualHandover{
			Class:          treasury.WarehouseClass(row.Class),
			PeriodKey:      treasury.PeriodKeyFor(row.PeriodKey),
			ExpectedAmount: valueobject.NewMoney(row.ExpectedAmount),
			DeclaredAmount: valueobject.NewMoney(row.DeclaredAmount),
			EventCount:     row.EventCount,
		}
	}
	return handovers, nil
}
