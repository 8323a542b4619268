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

// HandoverService closes custodian handovers and exposes the derived
// warehouse groupings
type HandoverService struct {
	handovers treasury.HandoverRepository
	events    treasury.CashEventRepository
	tx        shared.TransactionManager
	audit     treasury.AuditSink
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewHandoverService creates a new HandoverService
func NewHandoverService(
	handovers treasury.HandoverRepository,
	events treasury.CashEventRepository,
	tx shared.TransactionManager,
	audit treasury.AuditSink,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *HandoverService {
	return &HandoverService{
		handovers: handovers,
		events:    events,
		tx:        tx,
		audit:     audit,
		publisher: publisher,
		logger:    logger,
	}
}

// GetHandover returns a handover with its status recomputed from the
// current member set. The persisted status is advisory only.
func (s *HandoverService) GetHandover(ctx context.Context, id uuid.UUID) (*treasury.Handover, []treasury.CashEvent, error) {
	handover, err := s.handovers.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("find handover %s: %w", id, err)
	}
	if handover == nil {
		return nil, nil, treasury.ErrHandoverNotFound
	}
	members, err := s.events.FindByHandover(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load handover members: %w", err)
	}
	if !handover.IsClosed() {
		if err := handover.Recompute(members); err != nil {
			return nil, nil, err
		}
	}
	return handover, members, nil
}

// Close finalizes a handover. A close with pending members is allowed
// and lands in discrepancy, making the shortfall a first-class, queryable
// outcome instead of a blocked workflow.
func (s *HandoverService) Close(ctx context.Context, id uuid.UUID, approver uuid.UUID) (*treasury.Handover, error) {
	var (
		handover      *treasury.Handover
		pendingEvents []shared.DomainEvent
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		handover, err = s.handovers.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find handover %s: %w", id, err)
		}
		if handover == nil {
			return treasury.ErrHandoverNotFound
		}
		members, err := s.events.FindByHandover(ctx, id)
		if err != nil {
			return fmt.Errorf("load handover members: %w", err)
		}
		if err := handover.Close(approver, members); err != nil {
			return err
		}
		if err := s.handovers.Save(ctx, handover); err != nil {
			return fmt.Errorf("save handover %s: %w", id, err)
		}
		pendingEvents = handover.GetDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil && len(pendingEvents) > 0 {
		if err := s.publisher.Publish(ctx, pendingEvents...); err != nil {
			s.logger.Warn("failed to publish domain events", zap.Error(err))
		}
	}
	if s.audit != nil {
		detail := fmt.Sprintf("status=%s expected=%s declared=%s", handover.Status, handover.ExpectedAmount, handover.DeclaredAmount)
		if err := s.audit.Record(ctx, "handover", "close", approver, detail); err != nil {
			s.logger.Warn("failed to record audit entry", zap.Error(err))
		}
	}
	return handover, nil
}

// VirtualWarehouseHandovers returns the derived per-day, per-class
// groupings of accepted warehouse cash. They are computed on demand and
// never stored, so they cannot drift from the underlying events.
func (s *HandoverService) VirtualWarehouseHandovers(ctx context.Context, from, to *time.Time) ([]treasury.VirtualHandover, error) {
	groups, err := s.handovers.VirtualWarehouseHandovers(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("derive warehouse handovers: %w", err)
	}
	return groups, nil
}
