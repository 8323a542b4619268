package treasury

import (
	"fmt"

	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
)

// Sentinel domain errors for the treasury context
var (
	// ErrEventNotFound is returned when a cash event reference resolves to nothing
	ErrEventNotFound = shared.NewDomainError("CASH_EVENT_NOT_FOUND", "Cash event not found")
	// ErrEventAlreadyAccepted is returned on repeated acceptance; callers treat it as an idempotent success
	ErrEventAlreadyAccepted = shared.NewDomainError("CASH_EVENT_ALREADY_ACCEPTED", "Cash event has already been accepted")
	// ErrReplacementOrder is returned when the referenced order belongs to the non-collectible replacement class
	ErrReplacementOrder = shared.NewDomainError("REPLACEMENT_ORDER", "Replacement orders carry no collectible cash")
	// ErrHandoverNotFound is returned when a handover id is unknown
	ErrHandoverNotFound = shared.NewDomainError("HANDOVER_NOT_FOUND", "Handover not found")
	// ErrHandoverEmpty is returned when closing a handover with no member events
	ErrHandoverEmpty = shared.NewDomainError("HANDOVER_EMPTY", "Handover has no member cash events")
	// ErrHandoverClosed is returned on any mutation of an already closed handover
	ErrHandoverClosed = shared.NewDomainError("HANDOVER_CLOSED", "Handover is closed and cannot be modified")
	// ErrMovementNotFound is returned when a movement id is unknown
	ErrMovementNotFound = shared.NewDomainError("MOVEMENT_NOT_FOUND", "Movement not found")
	// ErrMovementNotApprovable is returned when approving a movement that is not a pending withdrawal
	ErrMovementNotApprovable = shared.NewDomainError("MOVEMENT_NOT_APPROVABLE", "Only pending withdrawals can be approved")
	// ErrDepositNotFound is returned when a deposit id is unknown
	ErrDepositNotFound = shared.NewDomainError("DEPOSIT_NOT_FOUND", "Deposit not found")
	// ErrDuplicateDeposit is returned by the anti-double-click guard
	ErrDuplicateDeposit = shared.NewDomainError("DUPLICATE_DEPOSIT", "An identical deposit was registered moments ago")
)

// NewToleranceExceededError builds the deposit tolerance violation error.
// The attempted values and the computed difference are embedded so the
// caller can self-correct without a second round trip.
func NewToleranceExceededError(amount, assignedTotal, tolerance valueobject.Money) *shared.DomainError {
	difference := amount.Subtract(assignedTotal)
	return shared.NewDomainError(
		"DEPOSIT_TOLERANCE_EXCEEDED",
		fmt.Sprintf("Assigned total %s differs from deposit amount %s by %s, tolerance is %s",
			assignedTotal, amount, difference.Abs(), tolerance),
	)
}

// NewOrderAlreadyAssignedError is returned when a deposit detail names an
// order whose accepted cash is already swept into another deposit.
func NewOrderAlreadyAssignedError(orderID string) *shared.DomainError {
	return shared.NewDomainError(
		"ORDER_ALREADY_ASSIGNED",
		fmt.Sprintf("Order %s is already assigned to another deposit", orderID),
	)
}
