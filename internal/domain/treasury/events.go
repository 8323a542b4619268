package treasury

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CashAcceptedEvent is raised when a custodian-role user accepts declared cash
type CashAcceptedEvent struct {
	shared.BaseDomainEvent
	Ref           string          `json:"ref"`
	Source        CashSource      `json:"source"`
	CustodianID   *uuid.UUID      `json:"custodian_id,omitempty"`
	LinkedOrderID *uuid.UUID      `json:"linked_order_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	AcceptedBy    uuid.UUID       `json:"accepted_by"`
	CollectedAt   time.Time       `json:"collected_at"`
}

// EventType returns the event type name
func (e *CashAcceptedEvent) EventType() string {
	return "CashAccepted"
}

// NewCashAcceptedEvent creates a new CashAcceptedEvent
func NewCashAcceptedEvent(ce *CashEvent) *CashAcceptedEvent {
	evt := &CashAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CashAccepted", ce.ID, "CashEvent"),
		Ref:             ce.Ref().String(),
		Source:          ce.Source,
		CustodianID:     ce.CustodianID,
		LinkedOrderID:   ce.LinkedOrderID,
		Amount:          ce.DeclaredAmount.Amount(),
	}
	if ce.AcceptedBy != nil {
		evt.AcceptedBy = *ce.AcceptedBy
	}
	if ce.CollectedAt != nil {
		evt.CollectedAt = *ce.CollectedAt
	}
	return evt
}

// HandoverClosedEvent is raised when a handover is explicitly closed
type HandoverClosedEvent struct {
	shared.BaseDomainEvent
	CustodianID    *uuid.UUID      `json:"custodian_id,omitempty"`
	PeriodKey      time.Time       `json:"period_key"`
	Status         HandoverStatus  `json:"status"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	DeclaredAmount decimal.Decimal `json:"declared_amount"`
	ApprovedBy     uuid.UUID       `json:"approved_by"`
}

// EventType returns the event type name
func (e *HandoverClosedEvent) EventType() string {
	return "HandoverClosed"
}

// NewHandoverClosedEvent creates a new HandoverClosedEvent
func NewHandoverClosedEvent(h *Handover) *HandoverClosedEvent {
	evt := &HandoverClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("HandoverClosed", h.ID, "Handover"),
		CustodianID:     h.CustodianID,
		PeriodKey:       h.PeriodKey,
		Status:          h.Status,
		ExpectedAmount:  h.ExpectedAmount.Amount(),
		DeclaredAmount:  h.DeclaredAmount.Amount(),
	}
	if h.ApprovedBy != nil {
		evt.ApprovedBy = *h.ApprovedBy
	}
	return evt
}

// MovementRecordedEvent is raised when a manual cash adjustment is registered
type MovementRecordedEvent struct {
	shared.BaseDomainEvent
	MovementType   MovementType    `json:"movement_type"`
	Amount         decimal.Decimal `json:"amount"`
	ReasonCode     string          `json:"reason_code"`
	ApprovalStatus ApprovalStatus  `json:"approval_status"`
	RegisteredBy   uuid.UUID       `json:"registered_by"`
}

// EventType returns the event type name
func (e *MovementRecordedEvent) EventType() string {
	return "MovementRecorded"
}

// NewMovementRecordedEvent creates a new MovementRecordedEvent
func NewMovementRecordedEvent(m *Movement) *MovementRecordedEvent {
	return &MovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("MovementRecorded", m.ID, "Movement"),
		MovementType:    m.Type,
		Amount:          m.Amount.Amount(),
		ReasonCode:      m.ReasonCode,
		ApprovalStatus:  m.ApprovalStatus,
		RegisteredBy:    m.RegisteredBy,
	}
}

// MovementApprovedEvent is raised when a pending withdrawal is approved
type MovementApprovedEvent struct {
	shared.BaseDomainEvent
	Amount     decimal.Decimal `json:"amount"`
	ApprovedBy uuid.UUID       `json:"approved_by"`
	ApprovedAt time.Time       `json:"approved_at"`
}

// EventType returns the event type name
func (e *MovementApprovedEvent) EventType() string {
	return "MovementApproved"
}

// NewMovementApprovedEvent creates a new MovementApprovedEvent
func NewMovementApprovedEvent(m *Movement) *MovementApprovedEvent {
	evt := &MovementApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("MovementApproved", m.ID, "Movement"),
		Amount:          m.Amount.Amount(),
	}
	if m.ApprovedBy != nil {
		evt.ApprovedBy = *m.ApprovedBy
	}
	if m.ApprovedAt != nil {
		evt.ApprovedAt = *m.ApprovedAt
	}
	return evt
}

// DepositCreatedEvent is raised when a bank deposit is registered
type DepositCreatedEvent struct {
	shared.BaseDomainEvent
	Amount          decimal.Decimal `json:"amount"`
	BankName        string          `json:"bank_name"`
	ReferenceNumber string          `json:"reference_number"`
	AssignedTotal   decimal.Decimal `json:"assigned_total"`
	DetailCount     int             `json:"detail_count"`
	DepositedBy     uuid.UUID       `json:"deposited_by"`
}

// EventType returns the event type name
func (e *DepositCreatedEvent) EventType() string {
	return "DepositCreated"
}

// NewDepositCreatedEvent creates a new DepositCreatedEvent
func NewDepositCreatedEvent(d *Deposit) *DepositCreatedEvent {
	return &DepositCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DepositCreated", d.ID, "Deposit"),
		Amount:          d.Amount.Amount(),
		BankName:        d.BankName,
		ReferenceNumber: d.ReferenceNumber,
		AssignedTotal:   d.AssignedTotal().Amount(),
		DetailCount:     len(d.Details),
		DepositedBy:     d.DepositedBy,
	}
}

// DepositExternalClosureEvent is raised when a deposit's external-system
// closure flag is flipped
type DepositExternalClosureEvent struct {
	shared.BaseDomainEvent
	ReferenceNumber string `json:"reference_number"`
	Closed          bool   `json:"closed"`
}

// EventType returns the event type name
func (e *DepositExternalClosureEvent) EventType() string {
	return "DepositExternalClosureChanged"
}

// NewDepositExternalClosureEvent creates a new DepositExternalClosureEvent
func NewDepositExternalClosureEvent(d *Deposit) *DepositExternalClosureEvent {
	return &DepositExternalClosureEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DepositExternalClosureChanged", d.ID, "Deposit"),
		ReferenceNumber: d.ReferenceNumber,
		Closed:          d.ClosedInExternalSystem,
	}
}
