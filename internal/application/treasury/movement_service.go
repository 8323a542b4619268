package treasury

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"go.uber.org/zap"
)

// RecordMovementRequest carries the input for recording a manual cash
// adjustment
type RecordMovementRequest struct {
	Type          treasury.MovementType `json:"type" binding:"required"`
	Amount        float64               `json:"amount" binding:"required,gt=0"`
	ReasonCode    string                `json:"reason_code" binding:"required"`
	LinkedOrderID *uuid.UUID            `json:"linked_order_id,omitempty"`
	Evidence      []byte                `json:"-"`
	EvidenceType  string                `json:"-"`
}

// MovementService records, approves and removes manual cash movements
type MovementService struct {
	movements treasury.MovementRepository
	settings  SettingsProvider
	evidence  treasury.EvidenceStore
	tx        shared.TransactionManager
	audit     treasury.AuditSink
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewMovementService creates a new MovementService
func NewMovementService(
	movements treasury.MovementRepository,
	settings SettingsProvider,
	evidence treasury.EvidenceStore,
	tx shared.TransactionManager,
	audit treasury.AuditSink,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *MovementService {
	return &MovementService{
		movements: movements,
		settings:  settings,
		evidence:  evidence,
		tx:        tx,
		audit:     audit,
		publisher: publisher,
		logger:    logger,
	}
}

// Record creates a movement. Withdrawals above the configured threshold
// start pending; everything else is approved immediately. Evidence, when
// supplied, is stored first so the movement row carries its reference
// from the start.
func (s *MovementService) Record(ctx context.Context, req RecordMovementRequest, registeredBy uuid.UUID) (*treasury.Movement, error) {
	threshold, err := s.settings.WithdrawalThreshold(ctx)
	if err != nil {
		return nil, fmt.Errorf("load withdrawal threshold: %w", err)
	}

	amount := valueobject.NewMoneyFromFloat(req.Amount)
	movement, err := treasury.NewMovement(req.Type, amount, req.ReasonCode, req.LinkedOrderID, registeredBy, threshold)
	if err != nil {
		return nil, err
	}

	if len(req.Evidence) > 0 && s.evidence != nil {
		ref, err := s.evidence.Put(ctx, "movement", movement.ID, req.Evidence, req.EvidenceType)
		if err != nil {
			return nil, fmt.Errorf("store movement evidence: %w", err)
		}
		movement.AttachEvidence(ref)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.movements.Create(ctx, movement)
	})
	if err != nil {
		// The movement row never landed; release the orphaned evidence.
		if movement.EvidenceRef != "" && s.evidence != nil {
			if delErr := s.evidence.Delete(ctx, movement.EvidenceRef); delErr != nil {
				s.logger.Warn("failed to release orphaned evidence",
					zap.String("ref", movement.EvidenceRef), zap.Error(delErr))
			}
		}
		return nil, fmt.Errorf("create movement: %w", err)
	}

	s.publishBestEffort(ctx, movement.GetDomainEvents()...)
	s.recordAudit(ctx, "movement", "record", registeredBy,
		fmt.Sprintf("type=%s amount=%s status=%s", movement.Type, movement.Amount, movement.ApprovalStatus))
	return movement, nil
}

// Get fetches a movement by id
func (s *MovementService) Get(ctx context.Context, id uuid.UUID) (*treasury.Movement, error) {
	movement, err := s.movements.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find movement %s: %w", id, err)
	}
	if movement == nil {
		return nil, treasury.ErrMovementNotFound
	}
	return movement, nil
}

// Approve transitions a pending withdrawal to approved. The conditional
// update guarantees at most one approval wins; a repeat or a race loser
// gets a conflict.
func (s *MovementService) Approve(ctx context.Context, id uuid.UUID, approver uuid.UUID) (*treasury.Movement, error) {
	var (
		movement      *treasury.Movement
		pendingEvents []shared.DomainEvent
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		movement, err = s.movements.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find movement %s: %w", id, err)
		}
		if movement == nil {
			return treasury.ErrMovementNotFound
		}
		if err := movement.Approve(approver); err != nil {
			return err
		}
		approved, err := s.movements.MarkApproved(ctx, id, approver, *movement.ApprovedAt)
		if err != nil {
			return fmt.Errorf("mark approved %s: %w", id, err)
		}
		if !approved {
			return treasury.ErrMovementNotApprovable
		}
		pendingEvents = movement.GetDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBestEffort(ctx, pendingEvents...)
	s.recordAudit(ctx, "movement", "approve", approver, fmt.Sprintf("amount=%s", movement.Amount))
	return movement, nil
}

// Delete removes a movement administratively. The evidence blob is
// released best-effort after the row is gone; a stranded blob is a
// warning, not a failure.
func (s *MovementService) Delete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	var evidenceRef string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		movement, err := s.movements.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find movement %s: %w", id, err)
		}
		if movement == nil {
			return treasury.ErrMovementNotFound
		}
		evidenceRef = movement.EvidenceRef
		return s.movements.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if evidenceRef != "" && s.evidence != nil {
		if err := s.evidence.Delete(ctx, evidenceRef); err != nil {
			s.logger.Warn("failed to delete movement evidence",
				zap.String("ref", evidenceRef), zap.Error(err))
		}
	}
	s.recordAudit(ctx, "movement", "delete", deletedBy, id.String())
	return nil
}

func (s *MovementService) publishBestEffort(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}

func (s *MovementService) recordAudit(ctx context.Context, entity, action string, actor uuid.UUID, detail string) {
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
