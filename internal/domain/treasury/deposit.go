package treasury

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
)

// DepositDetail assigns a portion of a deposit against one order's
// accepted cash. Details are immutable after the deposit is created.
type DepositDetail struct {
	ID             uuid.UUID
	DepositID      uuid.UUID
	OrderID        uuid.UUID
	AssignedAmount valueobject.Money
}

// NewDepositDetail creates a deposit detail assignment
func NewDepositDetail(depositID, orderID uuid.UUID, assigned valueobject.Money) (DepositDetail, error) {
	if orderID == uuid.Nil {
		return DepositDetail{}, shared.NewDomainError("INVALID_INPUT", "Deposit detail requires an order id")
	}
	if !assigned.IsPositive() {
		return DepositDetail{}, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Assigned amount for order %s must be positive, got %s", orderID, assigned))
	}
	return DepositDetail{
		ID:             uuid.New(),
		DepositID:      depositID,
		OrderID:        orderID,
		AssignedAmount: assigned,
	}, nil
}

// DetailRequest is the caller-supplied shape of one deposit assignment
type DetailRequest struct {
	OrderID        uuid.UUID
	AssignedAmount valueobject.Money
}

// Deposit is an outgoing bank consignment of previously accepted cash,
// optionally matched against specific orders. When any detail exists the
// assigned total must stay within the configured tolerance of the deposit
// amount. Header and details are persisted atomically.
type Deposit struct {
	shared.BaseAggregateRoot
	Amount                 valueobject.Money
	BankName               string
	ReferenceNumber        string
	DepositedBy            uuid.UUID
	DepositedAt            time.Time
	ClosedInExternalSystem bool
	Details                []DepositDetail
}

// NewDeposit creates a deposit with its detail assignments, validating
// the tolerance band when details are present
func NewDeposit(
	amount valueobject.Money,
	bankName string,
	referenceNumber string,
	depositedBy uuid.UUID,
	details []DetailRequest,
	tolerance valueobject.Money,
) (*Deposit, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Deposit amount must be positive, got %s", amount))
	}
	if bankName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bank name is required")
	}
	if referenceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Reference number is required")
	}

	d := &Deposit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Amount:            amount,
		BankName:          bankName,
		ReferenceNumber:   referenceNumber,
		DepositedBy:       depositedBy,
		DepositedAt:       time.Now(),
	}

	seen := make(map[uuid.UUID]bool, len(details))
	for _, req := range details {
		if seen[req.OrderID] {
			return nil, NewOrderAlreadyAssignedError(req.OrderID.String())
		}
		seen[req.OrderID] = true
		detail, err := NewDepositDetail(d.ID, req.OrderID, req.AssignedAmount)
		if err != nil {
			return nil, err
		}
		d.Details = append(d.Details, detail)
	}

	if len(d.Details) > 0 {
		if diff := d.Difference().Abs(); diff.GreaterThan(tolerance) {
			return nil, NewToleranceExceededError(amount, d.AssignedTotal(), tolerance)
		}
	}

	d.AddDomainEvent(NewDepositCreatedEvent(d))
	return d, nil
}

// AssignedTotal returns the sum of all detail assignments
func (d *Deposit) AssignedTotal() valueobject.Money {
	total := valueobject.Zero()
	for _, detail := range d.Details {
		total = total.Add(detail.AssignedAmount)
	}
	return total
}

// Difference returns deposit amount minus assigned total
func (d *Deposit) Difference() valueobject.Money {
	return d.Amount.Subtract(d.AssignedTotal())
}

// LinkedOrderIDs returns the order ids named by the detail set
func (d *Deposit) LinkedOrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(d.Details))
	for _, detail := range d.Details {
		ids = append(ids, detail.OrderID)
	}
	return ids
}

// SetExternalClosure flips the external-system closure flag. The caller
// must flip the linked orders' flags in the same transaction.
func (d *Deposit) SetExternalClosure(closed bool) {
	d.ClosedInExternalSystem = closed
	d.Touch()
	d.AddDomainEvent(NewDepositExternalClosureEvent(d))
}
