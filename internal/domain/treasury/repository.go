package treasury

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
)

// EventFilter narrows a pending-event query
type EventFilter struct {
	CustodianID *uuid.UUID
	From        *time.Time
	To          *time.Time
}

// EventSource normalizes one upstream collection channel into pending
// cash events. Each of the four heterogeneous sources gets its own
// adapter behind this single interface, so consumers never branch on the
// source. Adapters are read-only and must exclude already collected
// events.
type EventSource interface {
	// Source returns the channel this adapter normalizes
	Source() CashSource
	// PendingEvents returns the channel's pending events matching the filter
	PendingEvents(ctx context.Context, filter EventFilter) ([]CashEvent, error)
}

// CashEventRepository persists cash events and their acceptance state
type CashEventRepository interface {
	// FindByID finds a cash event by its internal id
	FindByID(ctx context.Context, id uuid.UUID) (*CashEvent, error)
	// FindByRef finds a cash event by its source-qualified reference
	FindByRef(ctx context.Context, ref EventRef) (*CashEvent, error)
	// FindByHandover returns all member events of a handover
	FindByHandover(ctx context.Context, handoverID uuid.UUID) ([]CashEvent, error)
	// Create inserts a new cash event
	Create(ctx context.Context, event *CashEvent) error
	// MarkCollected performs the conditional pending-to-collected update.
	// It returns false when the event was already collected, which lets
	// concurrent accept calls race safely: exactly one caller observes
	// the transition.
	MarkCollected(ctx context.Context, id, acceptedBy uuid.UUID, at time.Time) (bool, error)
	// SumAccepted sums the declared amounts of collected events for the
	// given sources, optionally restricted by collection date
	SumAccepted(ctx context.Context, sources []CashSource, from, to *time.Time) (valueobject.Money, error)
}

// HandoverRepository persists custodian-period handovers
type HandoverRepository interface {
	// FindByID finds a handover by id
	FindByID(ctx context.Context, id uuid.UUID) (*Handover, error)
	// FindByCustodianAndPeriod finds the open handover of a custodian for
	// a calendar day
	FindByCustodianAndPeriod(ctx context.Context, custodianID uuid.UUID, periodKey time.Time) (*Handover, error)
	// Create inserts a new handover
	Create(ctx context.Context, handover *Handover) error
	// Save updates an existing handover
	Save(ctx context.Context, handover *Handover) error
	// VirtualWarehouseHandovers computes the per-day, per-class groupings
	// of accepted warehouse cash events within the date range. Nothing is
	// persisted; the result is derived on every call.
	VirtualWarehouseHandovers(ctx context.Context, from, to *time.Time) ([]VirtualHandover, error)
}

// MovementRepository persists manual cash adjustments
type MovementRepository interface {
	// FindByID finds a movement by id
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)
	// Create inserts a new movement
	Create(ctx context.Context, movement *Movement) error
	// Save updates an existing movement
	Save(ctx context.Context, movement *Movement) error
	// MarkApproved performs the conditional pending-to-approved update
	// for a withdrawal. Returns false when the movement is not a pending
	// withdrawal, so double approvals surface as conflicts, not lost
	// updates.
	MarkApproved(ctx context.Context, id, approvedBy uuid.UUID, at time.Time) (bool, error)
	// Delete removes a movement administratively
	Delete(ctx context.Context, id uuid.UUID) error
	// SumApprovedByType sums approved movements of a type, optionally
	// restricted by registration date
	SumApprovedByType(ctx context.Context, movementType MovementType, from, to *time.Time) (valueobject.Money, error)
}

// DepositCandidate is one order's accepted-but-undeposited cash:
// accepted messenger and warehouse totals minus what prior deposits have
// already assigned. Only positive differences are candidates.
type DepositCandidate struct {
	OrderID         uuid.UUID         `json:"order_id"`
	AcceptedTotal   valueobject.Money `json:"accepted_total"`
	AssignedTotal   valueobject.Money `json:"assigned_total"`
	AvailableAmount valueobject.Money `json:"available_amount"`
}

// DepositRepository persists bank deposits and their detail assignments
type DepositRepository interface {
	// FindByID finds a deposit with its details
	FindByID(ctx context.Context, id uuid.UUID) (*Deposit, error)
	// CreateWithDetails inserts the deposit header and all details.
	// Callers run it inside a transaction so either all rows exist or
	// none do.
	CreateWithDetails(ctx context.Context, deposit *Deposit) error
	// Save updates the deposit header
	Save(ctx context.Context, deposit *Deposit) error
	// ExistsRecentDuplicate reports whether an identical
	// (amount, reference, depositor) deposit was created within the
	// trailing window. This is the anti-double-click guard.
	ExistsRecentDuplicate(ctx context.Context, amount valueobject.Money, referenceNumber string, depositedBy uuid.UUID, window time.Duration) (bool, error)
	// OrdersAlreadyAssigned returns which of the given orders already
	// appear in any deposit's detail set
	OrdersAlreadyAssigned(ctx context.Context, orderIDs []uuid.UUID) ([]uuid.UUID, error)
	// SumDeposits sums deposit amounts, optionally restricted by deposit date
	SumDeposits(ctx context.Context, from, to *time.Time) (valueobject.Money, error)
	// Candidates returns, per order, the accepted cash not yet swept
	// into any deposit
	Candidates(ctx context.Context) ([]DepositCandidate, error)
}

// EvidenceStore keeps opaque evidence blobs attached to movements and
// deposits. An external collaborator; failures are logged, never fatal
// to the owning operation.
type EvidenceStore interface {
	// Put stores a blob for the owning entity and returns a reference
	Put(ctx context.Context, kind string, ownerID uuid.UUID, blob []byte, contentType string) (string, error)
	// Delete removes a previously stored blob
	Delete(ctx context.Context, ref string) error
}

// AuditSink records who did what to which entity. Append-only and
// best-effort: a failed audit write logs a warning but never aborts the
// primary transaction.
type AuditSink interface {
	Record(ctx context.Context, entity, action string, actor uuid.UUID, detail string) error
}
