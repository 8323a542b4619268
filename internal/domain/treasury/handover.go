package treasury

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
)

// HandoverStatus represents the derived acceptance status of a handover
type HandoverStatus string

const (
	HandoverStatusPending     HandoverStatus = "PENDING"     // no member accepted yet
	HandoverStatusPartial     HandoverStatus = "PARTIAL"     // some but not all members accepted
	HandoverStatusCompleted   HandoverStatus = "COMPLETED"   // every member accepted
	HandoverStatusDiscrepancy HandoverStatus = "DISCREPANCY" // forced close with incomplete acceptance
)

// IsValid checks if the status is a valid HandoverStatus
func (s HandoverStatus) IsValid() bool {
	switch s {
	case HandoverStatusPending, HandoverStatusPartial, HandoverStatusCompleted, HandoverStatusDiscrepancy:
		return true
	}
	return false
}

// String returns the string representation of HandoverStatus
func (s HandoverStatus) String() string {
	return string(s)
}

// Handover groups a custodian's cash events for one calendar day with a
// status derived from its member set. Expected and declared amounts are
// always recomputed from members, never carried forward.
type Handover struct {
	shared.BaseAggregateRoot
	CustodianID    *uuid.UUID
	PeriodKey      time.Time // calendar day, truncated to midnight UTC
	ExpectedAmount valueobject.Money
	DeclaredAmount valueobject.Money
	Status         HandoverStatus
	ApprovedBy     *uuid.UUID
	ApprovedAt     *time.Time
}

// PeriodKeyFor truncates a timestamp to the calendar day used as a
// handover period key
func PeriodKeyFor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewHandover creates an open handover for a custodian and period
func NewHandover(custodianID *uuid.UUID, periodKey time.Time) *Handover {
	return &Handover{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustodianID:       custodianID,
		PeriodKey:         PeriodKeyFor(periodKey),
		ExpectedAmount:    valueobject.Zero(),
		DeclaredAmount:    valueobject.Zero(),
		Status:            HandoverStatusPending,
	}
}

// IsClosed returns true once the handover has been explicitly closed.
// Closed handovers reject all further mutation.
func (h *Handover) IsClosed() bool {
	return h.ApprovedAt != nil
}

// Recompute derives the handover's amounts and status from its full
// member set. It must be called after any member mutation so the stored
// status never diverges from the members.
func (h *Handover) Recompute(members []CashEvent) error {
	if h.IsClosed() {
		return ErrHandoverClosed
	}
	h.ExpectedAmount, h.DeclaredAmount = sumMembers(members)
	h.Status = deriveStatus(members)
	h.Touch()
	return nil
}

// Close terminates the handover. If every member is accepted the final
// status is completed; otherwise the close is forced and the handover is
// flagged as a discrepancy for later audit. Either way the handover
// becomes terminal.
func (h *Handover) Close(approver uuid.UUID, members []CashEvent) error {
	if h.IsClosed() {
		return ErrHandoverClosed
	}
	if len(members) == 0 {
		return ErrHandoverEmpty
	}
	h.ExpectedAmount, h.DeclaredAmount = sumMembers(members)
	if allCollected(members) {
		h.Status = HandoverStatusCompleted
	} else {
		h.Status = HandoverStatusDiscrepancy
	}
	now := time.Now()
	h.ApprovedBy = &approver
	h.ApprovedAt = &now
	h.Touch()
	h.AddDomainEvent(NewHandoverClosedEvent(h))
	return nil
}

func sumMembers(members []CashEvent) (expected, declared valueobject.Money) {
	expected = valueobject.Zero()
	declared = valueobject.Zero()
	for _, m := range members {
		expected = expected.Add(m.ExpectedAmount)
		declared = declared.Add(m.DeclaredAmount)
	}
	return expected, declared
}

func allCollected(members []CashEvent) bool {
	for _, m := range members {
		if !m.IsCollected() {
			return false
		}
	}
	return true
}

func deriveStatus(members []CashEvent) HandoverStatus {
	if len(members) == 0 {
		return HandoverStatusPending
	}
	collected := 0
	for _, m := range members {
		if m.IsCollected() {
			collected++
		}
	}
	switch collected {
	case 0:
		return HandoverStatusPending
	case len(members):
		return HandoverStatusCompleted
	default:
		return HandoverStatusPartial
	}
}

// WarehouseClass is the custodian-role class a virtual warehouse handover
// is grouped by
type WarehouseClass string

const (
	WarehouseClassCounter WarehouseClass = "COUNTER"
	WarehouseClassAdmin   WarehouseClass = "ADMIN"
)

// IsValid checks if the class is a valid WarehouseClass
func (c WarehouseClass) IsValid() bool {
	return c == WarehouseClassCounter || c == WarehouseClassAdmin
}

// String returns the string representation of WarehouseClass
func (c WarehouseClass) String() string {
	return string(c)
}

// VirtualHandover is a per-day grouping of accepted warehouse cash
// events. It is computed on every query and never persisted, and it is a
// distinct type rather than a Handover with a synthetic identifier so it
// cannot collide with the real handover id space. Warehouse acceptance is
// final the moment it happens, so a virtual handover is always completed.
type VirtualHandover struct {
	Class          WarehouseClass
	PeriodKey      time.Time
	ExpectedAmount valueobject.Money
	DeclaredAmount valueobject.Money
	EventCount     int
}

// Status always reports completed for virtual warehouse handovers
func (v VirtualHandover) Status() HandoverStatus {
	return HandoverStatusCompleted
}
