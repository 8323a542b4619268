package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/opsdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderFactsRepository implements OrderFactsProvider against the
// order tables. Those tables are owned by the fulfillment side; the only
// write this adapter performs is the external closure flag.
type GormOrderFactsRepository struct {
	db *gorm.DB
}

var _ treasury.OrderFactsProvider = (*GormOrderFactsRepository)(nil)

// NewGormOrderFactsRepository creates a new GormOrderFactsRepository
func NewGormOrderFactsRepository(db *gorm.DB) *GormOrderFactsRepository {
	return &GormOrderFactsRepository{db: db}
}

// FactsByOrder returns the order's current cash-collection facts, taken
// from its most recent delivery tracking record
func (r *GormOrderFactsRepository) FactsByOrder(ctx context.Context, orderID uuid.UUID) (*treasury.OrderCashFacts, error) {
	var model models.DeliveryTrackingModel
	if err := dbFor(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("tracked_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, treasury.ErrEventNotFound
		}
		return nil, err
	}
	return trackingToFacts(&model), nil
}

// SetExternalClosure flips the external-system closure flag on the given
// orders inside the caller's transaction
func (r *GormOrderFactsRepository) SetExternalClosure(ctx context.Context, orderIDs []uuid.UUID, closed bool) error {
	if len(orderIDs) == 0 {
		return nil
	}
	return dbFor(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("id IN ?", orderIDs).
		Updates(map[string]any{
			"closed_in_external_system": closed,
			"updated_at":                time.Now(),
		}).Error
}

func trackingToFacts(m *models.DeliveryTrackingModel) *treasury.OrderCashFacts {
	return &treasury.OrderCashFacts{
		OrderID:            m.OrderID,
		CourierID:          m.CourierID,
		ProductAmount:      valueobject.NewMoney(m.ProductAmount),
		ProductMethod:      m.ProductMethod,
		DeliveryFeeAmount:  valueobject.NewMoney(m.DeliveryFeeAmount),
		DeliveryFeeMethod:  m.DeliveryFeeMethod,
		PaymentClass:       m.PaymentClass,
		DeliveredAtCounter: m.DeliveredAtCounter,
		TrackedAt:          m.TrackedAt,
	}
}
