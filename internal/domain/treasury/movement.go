package treasury

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
)

// MovementType represents the kind of a manual cash adjustment
type MovementType string

const (
	MovementTypeExtraIncome    MovementType = "EXTRA_INCOME"
	MovementTypeWithdrawal     MovementType = "WITHDRAWAL"
	MovementTypeRefundTracking MovementType = "REFUND_TRACKING"
)

// IsValid checks if the type is a valid MovementType
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeExtraIncome, MovementTypeWithdrawal, MovementTypeRefundTracking:
		return true
	}
	return false
}

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// ApprovalStatus represents the approval state of a movement
type ApprovalStatus string

const (
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusPending  ApprovalStatus = "PENDING"
)

// IsValid checks if the status is a valid ApprovalStatus
func (s ApprovalStatus) IsValid() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusPending
}

// String returns the string representation of ApprovalStatus
func (s ApprovalStatus) String() string {
	return string(s)
}

// Movement is a manual cash adjustment outside the delivery/collection
// flow. Extra income and refund tracking are approved on creation;
// withdrawals above the configured threshold start pending and require an
// explicit admin approval. Pending to approved is the only legal
// transition and it happens at most once.
type Movement struct {
	shared.BaseAggregateRoot
	Type           MovementType
	Amount         valueobject.Money
	ReasonCode     string
	LinkedOrderID  *uuid.UUID
	RegisteredBy   uuid.UUID
	ApprovalStatus ApprovalStatus
	ApprovedBy     *uuid.UUID
	ApprovedAt     *time.Time
	EvidenceRef    string // reference into the evidence store, empty when no evidence was attached
}

// NewMovement creates a movement and settles its initial approval status
// against the configured withdrawal threshold
func NewMovement(
	movementType MovementType,
	amount valueobject.Money,
	reasonCode string,
	linkedOrderID *uuid.UUID,
	registeredBy uuid.UUID,
	withdrawalThreshold valueobject.Money,
) (*Movement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", fmt.Sprintf("Unknown movement type %q", movementType))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Movement amount must be positive, got %s", amount))
	}
	if reasonCode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Reason code is required")
	}

	m := &Movement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              movementType,
		Amount:            amount,
		ReasonCode:        reasonCode,
		LinkedOrderID:     linkedOrderID,
		RegisteredBy:      registeredBy,
		ApprovalStatus:    ApprovalStatusApproved,
	}
	if movementType == MovementTypeWithdrawal && amount.GreaterThan(withdrawalThreshold) {
		m.ApprovalStatus = ApprovalStatusPending
	}
	m.AddDomainEvent(NewMovementRecordedEvent(m))
	return m, nil
}

// IsPending returns true while the movement awaits admin approval
func (m *Movement) IsPending() bool {
	return m.ApprovalStatus == ApprovalStatusPending
}

// Approve transitions a pending withdrawal to approved. Any other
// combination of type and status is a conflict.
func (m *Movement) Approve(approver uuid.UUID) error {
	if m.Type != MovementTypeWithdrawal || m.ApprovalStatus != ApprovalStatusPending {
		return ErrMovementNotApprovable
	}
	now := time.Now()
	m.ApprovalStatus = ApprovalStatusApproved
	m.ApprovedBy = &approver
	m.ApprovedAt = &now
	m.Touch()
	m.AddDomainEvent(NewMovementApprovedEvent(m))
	return nil
}

// AttachEvidence records the evidence store reference for this movement
func (m *Movement) AttachEvidence(ref string) {
	m.EvidenceRef = ref
	m.Touch()
}
