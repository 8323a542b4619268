package treasury

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
)

// PaymentSubMethod is the channel a monetary component was paid through.
// Only cash-channel components are ever accepted by the treasury; a
// transferred component never enters the custodian's float.
type PaymentSubMethod string

const (
	PaymentSubMethodCash     PaymentSubMethod = "CASH"
	PaymentSubMethodTransfer PaymentSubMethod = "TRANSFER"
)

// IsCash returns true for the cash channel
func (m PaymentSubMethod) IsCash() bool {
	return m == PaymentSubMethodCash
}

// OrderPaymentClass distinguishes collectible orders from the replacement
// class, which carries no collectible cash and must never reach the
// pending queue.
type OrderPaymentClass string

const (
	OrderPaymentClassStandard    OrderPaymentClass = "STANDARD"
	OrderPaymentClassReplacement OrderPaymentClass = "REPLACEMENT"
)

// IsReplacement returns true for the non-collectible replacement class
func (c OrderPaymentClass) IsReplacement() bool {
	return c == OrderPaymentClassReplacement
}

// OrderCashFacts is the read-only projection of an order's current
// cash-collection state, taken from the order's most recent delivery
// tracking record. The treasury consumes these facts but does not own
// them.
type OrderCashFacts struct {
	OrderID            uuid.UUID
	CourierID          *uuid.UUID
	ProductAmount      valueobject.Money
	ProductMethod      PaymentSubMethod
	DeliveryFeeAmount  valueobject.Money
	DeliveryFeeMethod  PaymentSubMethod
	PaymentClass       OrderPaymentClass
	DeliveredAtCounter bool
	TrackedAt          time.Time
}

// CashTotal sums only the components whose own sub-method is the cash
// channel. Transferred amounts are excluded no matter their size.
func (f OrderCashFacts) CashTotal() valueobject.Money {
	total := valueobject.Zero()
	if f.ProductMethod.IsCash() {
		total = total.Add(f.ProductAmount)
	}
	if f.DeliveryFeeMethod.IsCash() {
		total = total.Add(f.DeliveryFeeAmount)
	}
	return total
}

// HasCashCollection returns true if any cash-channel component is positive
func (f OrderCashFacts) HasCashCollection() bool {
	return f.CashTotal().IsPositive()
}

// OrderFactsProvider exposes an order's current cash-collection facts.
// It is an external collaborator: the aggregator and the acceptance
// engine depend on it but the treasury does not own the order tables.
type OrderFactsProvider interface {
	// FactsByOrder returns the facts for one order, or ErrEventNotFound
	// if the order has no delivery tracking yet
	FactsByOrder(ctx context.Context, orderID uuid.UUID) (*OrderCashFacts, error)
	// SetExternalClosure flips the external-system closure flag on the
	// given orders. Called inside the deposit closure transaction.
	SetExternalClosure(ctx context.Context, orderIDs []uuid.UUID, closed bool) error
}
