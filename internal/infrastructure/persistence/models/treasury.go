package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/shopspring/decimal"
)

// CashEventModel is the persistence model for the CashEvent aggregate.
// The (source, source_id) pair is the natural key: one collectible event
// per upstream reference, ever.
type CashEventModel struct {
	AggregateModel
	Source         treasury.CashSource       `gorm:"type:varchar(20);not null;uniqueIndex:idx_cash_events_ref,priority:1"`
	SourceID       uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_cash_events_ref,priority:2"`
	CustodianID    *uuid.UUID                `gorm:"type:uuid;index"`
	LinkedOrderID  *uuid.UUID                `gorm:"type:uuid;index"`
	HandoverID     *uuid.UUID                `gorm:"type:uuid;index"`
	ExpectedAmount decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	DeclaredAmount decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Status         treasury.CollectionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CollectedAt    *time.Time                `gorm:"index"`
	AcceptedBy     *uuid.UUID                `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CashEventModel) TableName() string {
	return "cash_events"
}

// ToDomain converts the persistence model to a domain CashEvent
func (m *CashEventModel) ToDomain() *treasury.CashEvent {
	event := &treasury.CashEvent{
		Source:         m.Source,
		SourceID:       m.SourceID,
		CustodianID:    m.CustodianID,
		LinkedOrderID:  m.LinkedOrderID,
		HandoverID:     m.HandoverID,
		ExpectedAmount: valueobject.NewMoney(m.ExpectedAmount),
		DeclaredAmount: valueobject.NewMoney(m.DeclaredAmount),
		Status:         m.Status,
		CollectedAt:    m.CollectedAt,
		AcceptedBy:     m.AcceptedBy,
	}
	m.PopulateAggregateRoot(&event.BaseAggregateRoot)
	return event
}

// FromDomain populates the persistence model from a domain CashEvent
func (m *CashEventModel) FromDomain(e *treasury.CashEvent) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Source = e.Source
	m.SourceID = e.SourceID
	m.CustodianID = e.CustodianID
	m.LinkedOrderID = e.LinkedOrderID
	m.HandoverID = e.HandoverID
	m.ExpectedAmount = e.ExpectedAmount.Amount()
	m.DeclaredAmount = e.DeclaredAmount.Amount()
	m.Status = e.Status
	m.CollectedAt = e.CollectedAt
	m.AcceptedBy = e.AcceptedBy
}

// CashEventModelFromDomain creates a new persistence model from a domain CashEvent
func CashEventModelFromDomain(e *treasury.CashEvent) *CashEventModel {
	m := &CashEventModel{}
	m.FromDomain(e)
	return m
}

// HandoverModel is the persistence model for the Handover aggregate
type HandoverModel struct {
	AggregateModel
	CustodianID    *uuid.UUID              `gorm:"type:uuid;index:idx_handovers_custodian_period,priority:1"`
	PeriodKey      time.Time               `gorm:"not null;index:idx_handovers_custodian_period,priority:2"`
	ExpectedAmount decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	DeclaredAmount decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status         treasury.HandoverStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ApprovedBy     *uuid.UUID              `gorm:"type:uuid"`
	ApprovedAt     *time.Time
}

// TableName returns the table name for GORM
func (HandoverModel) TableName() string {
	return "handovers"
}

// ToDomain converts the persistence model to a domain Handover
func (m *HandoverModel) ToDomain() *treasury.Handover {
	handover := &treasury.Handover{
		CustodianID:    m.CustodianID,
		PeriodKey:      m.PeriodKey,
		ExpectedAmount: valueobject.NewMoney(m.ExpectedAmount),
		DeclaredAmount: valueobject.NewMoney(m.DeclaredAmount),
		Status:         m.Status,
		ApprovedBy:     m.ApprovedBy,
		ApprovedAt:     m.ApprovedAt,
	}
	m.PopulateAggregateRoot(&handover.BaseAggregateRoot)
	return handover
}

// FromDomain populates the persistence model from a domain Handover
func (m *HandoverModel) FromDomain(h *treasury.Handover) {
	m.FromDomainAggregateRoot(h.BaseAggregateRoot)
	m.CustodianID = h.CustodianID
	m.PeriodKey = h.PeriodKey
	m.ExpectedAmount = h.ExpectedAmount.Amount()
	m.DeclaredAmount = h.DeclaredAmount.Amount()
	m.Status = h.Status
	m.ApprovedBy = h.ApprovedBy
	m.ApprovedAt = h.ApprovedAt
}

// HandoverModelFromDomain creates a new persistence model from a domain Handover
func HandoverModelFromDomain(h *treasury.Handover) *HandoverModel {
	m := &HandoverModel{}
	m.FromDomain(h)
	return m
}

// MovementModel is the persistence model for the Movement aggregate
type MovementModel struct {
	AggregateModel
	Type           treasury.MovementType   `gorm:"type:varchar(20);not null;index"`
	Amount         decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	ReasonCode     string                  `gorm:"type:varchar(100);not null"`
	LinkedOrderID  *uuid.UUID              `gorm:"type:uuid;index"`
	RegisteredBy   uuid.UUID               `gorm:"type:uuid;not null"`
	ApprovalStatus treasury.ApprovalStatus `gorm:"type:varchar(20);not null;default:'APPROVED';index"`
	ApprovedBy     *uuid.UUID              `gorm:"type:uuid"`
	ApprovedAt     *time.Time
	EvidenceRef    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (MovementModel) TableName() string {
	return "cash_movements"
}

// ToDomain converts the persistence model to a domain Movement
func (m *MovementModel) ToDomain() *treasury.Movement {
	movement := &treasury.Movement{
		Type:           m.Type,
		Amount:         valueobject.NewMoney(m.Amount),
		ReasonCode:     m.ReasonCode,
		LinkedOrderID:  m.LinkedOrderID,
		RegisteredBy:   m.RegisteredBy,
		ApprovalStatus: m.ApprovalStatus,
		ApprovedBy:     m.ApprovedBy,
		ApprovedAt:     m.ApprovedAt,
		EvidenceRef:    m.EvidenceRef,
	}
	m.PopulateAggregateRoot(&movement.BaseAggregateRoot)
	return movement
}

// FromDomain populates the persistence model from a domain Movement
func (m *MovementModel) FromDomain(mv *treasury.Movement) {
	m.FromDomainAggregateRoot(mv.BaseAggregateRoot)
	m.Type = mv.Type
	m.Amount = mv.Amount.Amount()
	m.ReasonCode = mv.ReasonCode
	m.LinkedOrderID = mv.LinkedOrderID
	m.RegisteredBy = mv.RegisteredBy
	m.ApprovalStatus = mv.ApprovalStatus
	m.ApprovedBy = mv.ApprovedBy
	m.ApprovedAt = mv.ApprovedAt
	m.EvidenceRef = mv.EvidenceRef
}

// MovementModelFromDomain creates a new persistence model from a domain Movement
func MovementModelFromDomain(mv *treasury.Movement) *MovementModel {
	m := &MovementModel{}
	m.FromDomain(mv)
	return m
}

// DepositModel is the persistence model for the Deposit aggregate
type DepositModel struct {
	AggregateModel
	Amount                 decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	BankName               string               `gorm:"type:varchar(200);not null"`
	ReferenceNumber        string               `gorm:"type:varchar(100);not null;index"`
	DepositedBy            uuid.UUID            `gorm:"type:uuid;not null;index"`
	DepositedAt            time.Time            `gorm:"not null;index"`
	ClosedInExternalSystem bool                 `gorm:"not null;default:false"`
	Details                []DepositDetailModel `gorm:"foreignKey:DepositID;references:ID"`
}

// TableName returns the table name for GORM
func (DepositModel) TableName() string {
	return "deposits"
}

// ToDomain converts the persistence model to a domain Deposit with details
func (m *DepositModel) ToDomain() *treasury.Deposit {
	deposit := &treasury.Deposit{
		Amount:                 valueobject.NewMoney(m.Amount),
		BankName:               m.BankName,
		ReferenceNumber:        m.ReferenceNumber,
		DepositedBy:            m.DepositedBy,
		DepositedAt:            m.DepositedAt,
		ClosedInExternalSystem: m.ClosedInExternalSystem,
	}
	m.PopulateAggregateRoot(&deposit.BaseAggregateRoot)
	for _, detail := range m.Details {
		deposit.Details = append(deposit.Details, detail.ToDomain())
	}
	return deposit
}

// FromDomain populates the persistence model from a domain Deposit
func (m *DepositModel) FromDomain(d *treasury.Deposit) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.Amount = d.Amount.Amount()
	m.BankName = d.BankName
	m.ReferenceNumber = d.ReferenceNumber
	m.DepositedBy = d.DepositedBy
	m.DepositedAt = d.DepositedAt
	m.ClosedInExternalSystem = d.ClosedInExternalSystem
	m.Details = m.Details[:0]
	for _, detail := range d.Details {
		m.Details = append(m.Details, DepositDetailModelFromDomain(detail))
	}
}

// DepositModelFromDomain creates a new persistence model from a domain Deposit
func DepositModelFromDomain(d *treasury.Deposit) *DepositModel {
	m := &DepositModel{}
	m.FromDomain(d)
	return m
}

// DepositDetailModel is the persistence model for one deposit assignment.
// The unique index on order_id enforces the one-deposit-per-order rule at
// the storage level, below the application check.
type DepositDetailModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	DepositID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	AssignedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (DepositDetailModel) TableName() string {
	return "deposit_details"
}

// ToDomain converts the persistence model to a domain DepositDetail
func (m *DepositDetailModel) ToDomain() treasury.DepositDetail {
	return treasury.DepositDetail{
		ID:             m.ID,
		DepositID:      m.DepositID,
		OrderID:        m.OrderID,
		AssignedAmount: valueobject.NewMoney(m.AssignedAmount),
	}
}

// DepositDetailModelFromDomain creates a persistence model from a domain DepositDetail
func DepositDetailModelFromDomain(d treasury.DepositDetail) DepositDetailModel {
	return DepositDetailModel{
		ID:             d.ID,
		DepositID:      d.DepositID,
		OrderID:        d.OrderID,
		AssignedAmount: d.AssignedAmount.Amount(),
	}
}

// AuditLogModel is the append-only persistence model for audit entries
type AuditLogModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Entity    string    `gorm:"type:varchar(50);not null;index"`
	Action    string    `gorm:"type:varchar(50);not null"`
	Actor     uuid.UUID `gorm:"type:uuid;not null;index"`
	Detail    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}
