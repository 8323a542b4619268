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

// GormCashEventRepository implements CashEventRepository using GORM
type GormCashEventRepository struct {
	db *gorm.DB
}

var _ treasury.CashEventRepository = (*GormCashEventRepository)(nil)

// NewGormCashEventRepository creates a new GormCashEventRepository
func NewGormCashEventRepository(db *gorm.DB) *GormCashEventRepository {
	return &GormCashEventRepository{db: db}
}

// FindByID finds a cash event by its internal id
func (r *GormCashEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.CashEvent, error) {
	var model models.CashEventModel
	if err := dbFor(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRef finds a cash event by its source-qualified reference
func (r *GormCashEventRepository) FindByRef(ctx context.Context, ref treasury.EventRef) (*treasury.CashEvent, error) {
	var model models.CashEventModel
	if err := dbFor(ctx, r.db).
		First(&model, "source = ? AND source_id = ?", ref.Source, ref.SourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByHandover returns all member events of a handover
func (r *GormCashEventRepository) FindByHandover(ctx context.Context, handoverID uuid.UUID) ([]treasury.CashEvent, error) {
	var eventModels []models.CashEventModel
	if err := dbFor(ctx, r.db).
		Where("handover_id = ?", handoverID).
		Order("created_at ASC").
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	events := make([]treasury.CashEvent, len(eventModels))
	for i, model := range eventModels {
		events[i] = *model.ToDomain()
	}
	return events, nil
}

// Create inserts a new cash event
func (r *GormCashEventRepository) Create(ctx context.Context, event *treasury.CashEvent) error {
	model := models.CashEventModelFromDomain(event)
	return dbFor(ctx, r.db).Create(model).Error
}

// MarkCollected performs the conditional pending-to-collected update.
// The WHERE clause on status makes concurrent accepts race safely:
// whichever update commits first flips the row, every other caller sees
// zero rows affected.
func (r *GormCashEventRepository) MarkCollected(ctx context.Context, id, acceptedBy uuid.UUID, at time.Time) (bool, error) {
	result := dbFor(ctx, r.db).
		Model(&models.CashEventModel{}).
		Where("id = ? AND status = ?", id, treasury.CollectionStatusPending).
		Updates(map[string]any{
			"status":       treasury.CollectionStatusCollected,
			"collected_at": at,
			"accepted_by":  acceptedBy,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SumAccepted sums the declared amounts of collected events for the
// given sources, optionally restricted by collection date
func (r *GormCashEventRepository) SumAccepted(ctx context.Context, sources []treasury.CashSource, from, to *time.Time) (valueobject.Money, error) {
	query := dbFor(ctx, r.db).
		Model(&models.CashEventModel{}).
		Where("status = ?", treasury.CollectionStatusCollected).
		Where("source IN ?", sources)
	if from != nil {
		query = query.Where("collected_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("collected_at <= ?", *to)
	}

	var total decimal.NullDecimal
	if err := query.Select("SUM(declared_amount)").Scan(&total).Error; err != nil {
		return valueobject.Zero(), err
	}
	if !total.Valid {
		return valueobject.Zero(), nil
	}
	return valueobject.NewMoney(total.Decimal), nil
}
