package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/shopspring/decimal"
)

// OrderModel is the read/update surface of the order table the treasury
// touches. Orders are owned by the fulfillment side; the treasury only
// reads payment facts and flips the external closure flag.
type OrderModel struct {
	ID                     uuid.UUID `gorm:"type:uuid;primary_key"`
	ClosedInExternalSystem bool      `gorm:"not null;default:false"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// DeliveryTrackingModel is the read model for an order's delivery
// tracking record. The latest record per order carries the current
// cash-collection facts.
type DeliveryTrackingModel struct {
	ID                 uuid.UUID                  `gorm:"type:uuid;primary_key"`
	OrderID            uuid.UUID                  `gorm:"type:uuid;not null;index"`
	CourierID          *uuid.UUID                 `gorm:"type:uuid;index"`
	ProductAmount      decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	ProductMethod      treasury.PaymentSubMethod  `gorm:"type:varchar(20);not null"`
	DeliveryFeeAmount  decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	DeliveryFeeMethod  treasury.PaymentSubMethod  `gorm:"type:varchar(20);not null"`
	PaymentClass       treasury.OrderPaymentClass `gorm:"type:varchar(20);not null;default:'STANDARD'"`
	DeliveredAtCounter bool                       `gorm:"not null;default:false"`
	TrackedAt          time.Time                  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (DeliveryTrackingModel) TableName() string {
	return "delivery_trackings"
}
