package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"go.uber.org/zap"
)

// AcceptStatus is the outcome of an accept call
type AcceptStatus string

const (
	// AcceptStatusAccepted means this call performed the transition
	AcceptStatusAccepted AcceptStatus = "accepted"
	// AcceptStatusAlreadyAccepted means the event was collected before
	// this call; the retry is reported as a success without mutation
	AcceptStatusAlreadyAccepted AcceptStatus = "already_accepted"
)

// AcceptResult is the outcome of accepting a cash event
type AcceptResult struct {
	Status     AcceptStatus `json:"status"`
	Ref        string       `json:"ref"`
	HandoverID *uuid.UUID   `json:"handover_id,omitempty"`
}

// AcceptanceService transitions cash events from pending to collected.
// The whole operation runs as one transaction: the conditional update on
// the collection status, the parent handover recomputation and any
// auto-created declaration either all commit or all roll back.
type AcceptanceService struct {
	events    treasury.CashEventRepository
	handovers treasury.HandoverRepository
	facts     treasury.OrderFactsProvider
	tx        shared.TransactionManager
	audit     treasury.AuditSink
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewAcceptanceService creates a new AcceptanceService
func NewAcceptanceService(
	events treasury.CashEventRepository,
	handovers treasury.HandoverRepository,
	facts treasury.OrderFactsProvider,
	tx shared.TransactionManager,
	audit treasury.AuditSink,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *AcceptanceService {
	return &AcceptanceService{
		events:    events,
		handovers: handovers,
		facts:     facts,
		tx:        tx,
		audit:     audit,
		publisher: publisher,
		logger:    logger,
	}
}

// Accept accepts the cash event identified by the source-qualified
// reference. Repeating the call for a collected event returns
// already_accepted without touching the ledger, so double-clicks and
// client retries are safe.
func (s *AcceptanceService) Accept(ctx context.Context, ref string, acceptingUser uuid.UUID) (*AcceptResult, error) {
	eventRef, err := treasury.ParseEventRef(ref)
	if err != nil {
		return nil, err
	}

	var (
		result        *AcceptResult
		pendingEvents []shared.DomainEvent
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.events.FindByRef(ctx, eventRef)
		if err != nil {
			return fmt.Errorf("find cash event %s: %w", eventRef, err)
		}
		if event == nil {
			// No declaration exists yet. For channels derived from order
			// facts the engine creates it on the fly so acceptance never
			// depends on a precondition the client forgot to create.
			event, err = s.materializeEvent(ctx, eventRef)
			if err != nil {
				return err
			}
		}
		if event.IsCollected() {
			result = &AcceptResult{Status: AcceptStatusAlreadyAccepted, Ref: eventRef.String(), HandoverID: event.HandoverID}
			return nil
		}
		if event.HandoverID != nil {
			handover, err := s.handovers.FindByID(ctx, *event.HandoverID)
			if err != nil {
				return fmt.Errorf("find handover %s: %w", *event.HandoverID, err)
			}
			if handover != nil && handover.IsClosed() {
				return treasury.ErrHandoverClosed
			}
		}

		if err := event.Accept(acceptingUser); err != nil {
			return err
		}
		transitioned, err := s.events.MarkCollected(ctx, event.ID, acceptingUser, *event.CollectedAt)
		if err != nil {
			return fmt.Errorf("mark collected %s: %w", eventRef, err)
		}
		if !transitioned {
			// A concurrent accept won the conditional update. For this
			// caller the outcome is the same success, minus the mutation.
			result = &AcceptResult{Status: AcceptStatusAlreadyAccepted, Ref: eventRef.String(), HandoverID: event.HandoverID}
			return nil
		}

		if event.HandoverID != nil {
			if err := s.recomputeHandover(ctx, *event.HandoverID); err != nil {
				return err
			}
		}

		result = &AcceptResult{Status: AcceptStatusAccepted, Ref: eventRef.String(), HandoverID: event.HandoverID}
		pendingEvents = event.GetDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Status == AcceptStatusAccepted {
		s.publishBestEffort(ctx, pendingEvents...)
		s.recordAudit(ctx, "cash_event", "accept", acceptingUser, eventRef.String())
	}
	return result, nil
}

// materializeEvent creates the missing declaration for a reference whose
// pending state lives in the order facts (messenger and POS channels).
// Warehouse and ad-hoc events are inserted by their upstream flows, so a
// missing row there is a genuine not-found.
func (s *AcceptanceService) materializeEvent(ctx context.Context, ref treasury.EventRef) (*treasury.CashEvent, error) {
	switch ref.Source {
	case treasury.CashSourceMessenger, treasury.CashSourcePOS:
	default:
		return nil, treasury.ErrEventNotFound
	}

	facts, err := s.facts.FactsByOrder(ctx, ref.SourceID)
	if err != nil {
		return nil, err
	}
	if facts == nil {
		return nil, treasury.ErrEventNotFound
	}
	if facts.PaymentClass.IsReplacement() {
		return nil, treasury.ErrReplacementOrder
	}
	if !facts.HasCashCollection() {
		return nil, shared.NewDomainError("NO_COLLECTIBLE_CASH",
			fmt.Sprintf("Order %s has no positive cash-channel collection", ref.SourceID))
	}
	if ref.Source == treasury.CashSourcePOS && !facts.DeliveredAtCounter {
		return nil, treasury.ErrEventNotFound
	}

	cashTotal := facts.CashTotal()
	var custodian *uuid.UUID
	if ref.Source == treasury.CashSourceMessenger {
		if facts.CourierID == nil {
			return nil, shared.NewDomainError("NO_CUSTODIAN",
				fmt.Sprintf("Order %s has no courier assigned", ref.SourceID))
		}
		custodian = facts.CourierID
	}
	orderID := facts.OrderID
	event, err := treasury.NewCashEvent(ref, custodian, &orderID, cashTotal, cashTotal)
	if err != nil {
		return nil, err
	}
	event.CreatedAt = facts.TrackedAt

	// Messenger declarations belong to the courier's handover for the
	// tracking day; the handover is created lazily on first declaration.
	if ref.Source == treasury.CashSourceMessenger && custodian != nil {
		handover, err := s.openHandoverFor(ctx, *custodian, facts.TrackedAt)
		if err != nil {
			return nil, err
		}
		event.AssignToHandover(handover.ID)
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create declaration for %s: %w", ref, err)
	}
	return event, nil
}

func (s *AcceptanceService) openHandoverFor(ctx context.Context, custodianID uuid.UUID, at time.Time) (*treasury.Handover, error) {
	periodKey := treasury.PeriodKeyFor(at)
	handover, err := s.handovers.FindByCustodianAndPeriod(ctx, custodianID, periodKey)
	if err != nil {
		return nil, fmt.Errorf("find handover for custodian %s: %w", custodianID, err)
	}
	if handover != nil {
		return handover, nil
	}
	handover = treasury.NewHandover(&custodianID, periodKey)
	if err := s.handovers.Create(ctx, handover); err != nil {
		return nil, fmt.Errorf("create handover for custodian %s: %w", custodianID, err)
	}
	return handover, nil
}

// recomputeHandover re-derives the parent handover's amounts and status
// from its full member set. The stored status is never trusted without
// recomputation.
func (s *AcceptanceService) recomputeHandover(ctx context.Context, handoverID uuid.UUID) error {
	handover, err := s.handovers.FindByID(ctx, handoverID)
	if err != nil {
		return fmt.Errorf("find handover %s: %w", handoverID, err)
	}
	if handover == nil {
		return treasury.ErrHandoverNotFound
	}
	members, err := s.events.FindByHandover(ctx, handoverID)
	if err != nil {
		return fmt.Errorf("load handover members: %w", err)
	}
	if err := handover.Recompute(members); err != nil {
		return err
	}
	if err := s.handovers.Save(ctx, handover); err != nil {
		return fmt.Errorf("save handover %s: %w", handoverID, err)
	}
	return nil
}

func (s *AcceptanceService) publishBestEffort(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}

func (s *AcceptanceService) recordAudit(ctx context.Context, entity, action string, actor uuid.UUID, detail string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entity, action, actor, detail); err != nil {
		s.logger.Warn("failed to record audit entry",
			zap.String("entity", entity),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
