package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"go.uber.org/zap"
)

// duplicateWindow is how far back an identical (amount, reference,
// depositor) deposit blocks a new one. Long enough to absorb
// double-clicks and client retries, short enough that a genuine repeat
// consignment later the same day goes through.
const duplicateWindow = 5 * time.Minute

// DepositDetailRequest is one order assignment in a create request
type DepositDetailRequest struct {
	OrderID        uuid.UUID `json:"order_id" binding:"required"`
	AssignedAmount float64   `json:"assigned_amount" binding:"required,gt=0"`
}

// CreateDepositRequest carries the input for registering a bank deposit
type CreateDepositRequest struct {
	Amount          float64                `json:"amount" binding:"required,gt=0"`
	BankName        string                 `json:"bank_name" binding:"required"`
	ReferenceNumber string                 `json:"reference_number" binding:"required"`
	Details         []DepositDetailRequest `json:"details,omitempty"`
	Evidence        []byte                 `json:"-"`
	EvidenceType    string                 `json:"-"`
}

// DepositService registers bank deposits, matches them against accepted
// cash and propagates external-system closure
type DepositService struct {
	deposits  treasury.DepositRepository
	facts     treasury.OrderFactsProvider
	settings  SettingsProvider
	evidence  treasury.EvidenceStore
	tx        shared.TransactionManager
	audit     treasury.AuditSink
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewDepositService creates a new DepositService
func NewDepositService(
	deposits treasury.DepositRepository,
	facts treasury.OrderFactsProvider,
	settings SettingsProvider,
	evidence treasury.EvidenceStore,
	tx shared.TransactionManager,
	audit treasury.AuditSink,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *DepositService {
	return &DepositService{
		deposits:  deposits,
		facts:     facts,
		settings:  settings,
		evidence:  evidence,
		tx:        tx,
		audit:     audit,
		publisher: publisher,
		logger:    logger,
	}
}

// Create registers a deposit. The duplicate guard, the
// one-deposit-per-order rule and the header+details insert all run in the
// same transaction, so a deposit can never exist with half its detail
// set.
func (s *DepositService) Create(ctx context.Context, req CreateDepositRequest, depositedBy uuid.UUID) (*treasury.Deposit, error) {
	tolerance, err := s.settings.DepositTolerance(ctx)
	if err != nil {
		return nil, fmt.Errorf("load deposit tolerance: %w", err)
	}

	amount := valueobject.NewMoneyFromFloat(req.Amount)
	details := make([]treasury.DetailRequest, 0, len(req.Details))
	for _, d := range req.Details {
		details = append(details, treasury.DetailRequest{
			OrderID:        d.OrderID,
			AssignedAmount: valueobject.NewMoneyFromFloat(d.AssignedAmount),
		})
	}
	deposit, err := treasury.NewDeposit(amount, req.BankName, req.ReferenceNumber, depositedBy, details, tolerance)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		duplicate, err := s.deposits.ExistsRecentDuplicate(ctx, amount, req.ReferenceNumber, depositedBy, duplicateWindow)
		if err != nil {
			return fmt.Errorf("check duplicate deposit: %w", err)
		}
		if duplicate {
			return treasury.ErrDuplicateDeposit
		}

		if ids := deposit.LinkedOrderIDs(); len(ids) > 0 {
			assigned, err := s.deposits.OrdersAlreadyAssigned(ctx, ids)
			if err != nil {
				return fmt.Errorf("check assigned orders: %w", err)
			}
			if len(assigned) > 0 {
				return treasury.NewOrderAlreadyAssignedError(assigned[0].String())
			}
		}

		return s.deposits.CreateWithDetails(ctx, deposit)
	})
	if err != nil {
		return nil, err
	}

	if len(req.Evidence) > 0 && s.evidence != nil {
		ref, err := s.evidence.Put(ctx, "deposit", deposit.ID, req.Evidence, req.EvidenceType)
		if err != nil {
			s.logger.Warn("failed to store deposit evidence",
				zap.String("deposit_id", deposit.ID.String()), zap.Error(err))
		} else {
			s.logger.Info("deposit evidence stored",
				zap.String("deposit_id", deposit.ID.String()), zap.String("ref", ref))
		}
	}

	s.publishBestEffort(ctx, deposit.GetDomainEvents()...)
	s.recordAudit(ctx, "deposit", "create", depositedBy,
		fmt.Sprintf("amount=%s reference=%s details=%d", deposit.Amount, deposit.ReferenceNumber, len(deposit.Details)))
	return deposit, nil
}

// SetExternalClosure flips the external-system closure flag on the
// deposit and, in the same transaction, on every order its details name.
// The two flag sets cannot diverge.
func (s *DepositService) SetExternalClosure(ctx context.Context, id uuid.UUID, closed bool, actor uuid.UUID) (*treasury.Deposit, error) {
	var (
		deposit       *treasury.Deposit
		pendingEvents []shared.DomainEvent
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		deposit, err = s.deposits.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find deposit %s: %w", id, err)
		}
		if deposit == nil {
			return treasury.ErrDepositNotFound
		}
		deposit.SetExternalClosure(closed)
		if err := s.deposits.Save(ctx, deposit); err != nil {
			return fmt.Errorf("save deposit %s: %w", id, err)
		}
		if ids := deposit.LinkedOrderIDs(); len(ids) > 0 {
			if err := s.facts.SetExternalClosure(ctx, ids, closed); err != nil {
				return fmt.Errorf("propagate closure to orders: %w", err)
			}
		}
		pendingEvents = deposit.GetDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBestEffort(ctx, pendingEvents...)
	s.recordAudit(ctx, "deposit", "external_closure", actor,
		fmt.Sprintf("closed=%t orders=%d", closed, len(deposit.Details)))
	return deposit, nil
}

// GetDeposit returns a deposit with its details
func (s *DepositService) GetDeposit(ctx context.Context, id uuid.UUID) (*treasury.Deposit, error) {
	deposit, err := s.deposits.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find deposit %s: %w", id, err)
	}
	if deposit == nil {
		return nil, treasury.ErrDepositNotFound
	}
	return deposit, nil
}

// Candidates returns, per order, the accepted cash not yet swept into
// any deposit. The list feeds the matching UI.
func (s *DepositService) Candidates(ctx context.Context) ([]treasury.DepositCandidate, error) {
	candidates, err := s.deposits.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load deposit candidates: %w", err)
	}
	return candidates, nil
}

func (s *DepositService) publishBestEffort(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}

func (s *DepositService) recordAudit(ctx context.Context, entity, action string, actor uuid.UUID, detail string) {
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
