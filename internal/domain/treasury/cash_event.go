package treasury

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
)

// CashSource identifies the upstream channel a cash collection came from
type CashSource string

const (
	CashSourceMessenger CashSource = "MESSENGER" // field messenger delivery collection
	CashSourceWarehouse CashSource = "WAREHOUSE" // warehouse counter payment
	CashSourcePOS       CashSource = "POS"       // point-of-sale pickup fallback
	CashSourceAdhoc     CashSource = "ADHOC"     // ad-hoc manual receipt, no order
)

// IsValid checks if the source is a valid CashSource
func (s CashSource) IsValid() bool {
	switch s {
	case CashSourceMessenger, CashSourceWarehouse, CashSourcePOS, CashSourceAdhoc:
		return true
	}
	return false
}

// String returns the string representation of CashSource
func (s CashSource) String() string {
	return string(s)
}

// HasCustodian returns true for sources whose events are tied to an
// individual custodian. Warehouse and POS collections belong to the
// counter, not to a person.
func (s CashSource) HasCustodian() bool {
	return s == CashSourceMessenger || s == CashSourceAdhoc
}

// AllCashSources returns all valid cash sources
func AllCashSources() []CashSource {
	return []CashSource{CashSourceMessenger, CashSourceWarehouse, CashSourcePOS, CashSourceAdhoc}
}

// CollectionStatus represents the acceptance state of a cash event
type CollectionStatus string

const (
	CollectionStatusPending   CollectionStatus = "PENDING"
	CollectionStatusCollected CollectionStatus = "COLLECTED"
)

// IsValid checks if the status is a valid CollectionStatus
func (s CollectionStatus) IsValid() bool {
	return s == CollectionStatusPending || s == CollectionStatusCollected
}

// String returns the string representation of CollectionStatus
func (s CollectionStatus) String() string {
	return string(s)
}

// EventRef is the source-qualified reference of a cash event. Sources are
// heterogeneous, so the natural key of an event is the pair of its channel
// and its identifier within that channel (order ID for messenger and POS
// events, collection record ID for warehouse, receipt ID for ad-hoc).
type EventRef struct {
	Source   CashSource
	SourceID uuid.UUID
}

// String renders the reference in "source:id" form
func (r EventRef) String() string {
	return strings.ToLower(string(r.Source)) + ":" + r.SourceID.String()
}

// ParseEventRef parses a "source:id" reference string
func ParseEventRef(s string) (EventRef, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return EventRef{}, shared.NewDomainError("INVALID_EVENT_REF", fmt.Sprintf("Invalid event reference %q, expected source:id", s))
	}
	source := CashSource(strings.ToUpper(parts[0]))
	if !source.IsValid() {
		return EventRef{}, shared.NewDomainError("INVALID_EVENT_REF", fmt.Sprintf("Unknown cash source %q", parts[0]))
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return EventRef{}, shared.NewDomainError("INVALID_EVENT_REF", fmt.Sprintf("Invalid event id %q", parts[1]))
	}
	return EventRef{Source: source, SourceID: id}, nil
}

// CashEvent is one unit of money physically collected by one custodian
// from one counterparty. It is created when the upstream delivery, counter
// payment or receipt happens, mutated exactly once by acceptance, and
// never deleted.
type CashEvent struct {
	shared.BaseAggregateRoot
	Source         CashSource
	SourceID       uuid.UUID
	CustodianID    *uuid.UUID // nil for warehouse/POS events
	LinkedOrderID  *uuid.UUID // nil for ad-hoc receipts
	HandoverID     *uuid.UUID // set for messenger events once declared
	ExpectedAmount valueobject.Money
	DeclaredAmount valueobject.Money // custodian's self-reported figure
	Status         CollectionStatus
	CollectedAt    *time.Time
	AcceptedBy     *uuid.UUID
}

// NewCashEvent creates a pending cash event for the given source reference
func NewCashEvent(
	ref EventRef,
	custodianID *uuid.UUID,
	linkedOrderID *uuid.UUID,
	expected valueobject.Money,
	declared valueobject.Money,
) (*CashEvent, error) {
	if !ref.Source.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_REF", fmt.Sprintf("Unknown cash source %q", ref.Source))
	}
	if ref.SourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EVENT_REF", "Source id is required")
	}
	if expected.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Expected amount cannot be negative, got %s", expected))
	}
	if declared.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Declared amount cannot be negative, got %s", declared))
	}
	return &CashEvent{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Source:            ref.Source,
		SourceID:          ref.SourceID,
		CustodianID:       custodianID,
		LinkedOrderID:     linkedOrderID,
		ExpectedAmount:    expected,
		DeclaredAmount:    declared,
		Status:            CollectionStatusPending,
	}, nil
}

// Ref returns the source-qualified reference of this event
func (e *CashEvent) Ref() EventRef {
	return EventRef{Source: e.Source, SourceID: e.SourceID}
}

// IsCollected returns true if the event has been accepted by a custodian role
func (e *CashEvent) IsCollected() bool {
	return e.Status == CollectionStatusCollected
}

// Accept transitions the event from pending to collected. The transition
// is one-way: a collected event stays collected, and retrying returns
// ErrEventAlreadyAccepted so callers can report an idempotent success.
func (e *CashEvent) Accept(acceptedBy uuid.UUID) error {
	if e.IsCollected() {
		return ErrEventAlreadyAccepted
	}
	now := time.Now()
	e.Status = CollectionStatusCollected
	e.CollectedAt = &now
	e.AcceptedBy = &acceptedBy
	e.Touch()
	e.AddDomainEvent(NewCashAcceptedEvent(e))
	return nil
}

// AssignToHandover links the event to its custodian-period handover
func (e *CashEvent) AssignToHandover(handoverID uuid.UUID) {
	e.HandoverID = &handoverID
	e.Touch()
}
