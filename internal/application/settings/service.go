package settings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/settings"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service reads and writes treasury configuration. It also implements
// the treasury application's SettingsProvider, so the operational
// services read thresholds through the same path the admin API writes
// them.
type Service struct {
	repo   settings.Repository
	tx     shared.TransactionManager
	logger *zap.Logger
}

// NewService creates a new settings Service
func NewService(repo settings.Repository, tx shared.TransactionManager, logger *zap.Logger) *Service {
	return &Service{repo: repo, tx: tx, logger: logger}
}

// BaseBalance returns the configured opening float
func (s *Service) BaseBalance(ctx context.Context) (valueobject.Money, error) {
	return s.number(ctx, settings.KeyBaseBalance, settings.DefaultBaseBalance)
}

// WithdrawalThreshold returns the amount above which withdrawals need
// admin approval
func (s *Service) WithdrawalThreshold(ctx context.Context) (valueobject.Money, error) {
	return s.number(ctx, settings.KeyWithdrawalApprovalThreshold, settings.DefaultWithdrawalApprovalThreshold)
}

// DepositTolerance returns the maximum acceptable deposit difference
func (s *Service) DepositTolerance(ctx context.Context) (valueobject.Money, error) {
	return s.number(ctx, settings.KeyDepositTolerance, settings.DefaultDepositTolerance)
}

func (s *Service) number(ctx context.Context, key string, def decimal.Decimal) (valueobject.Money, error) {
	value, err := s.repo.GetNumber(ctx, key, def)
	if err != nil {
		return valueobject.Zero(), fmt.Errorf("read setting %s: %w", key, err)
	}
	return valueobject.NewMoney(value), nil
}

// SetBaseBalance updates the opening float. The new value and its audit
// row commit together; a base-balance change with no audit row cannot
// happen.
func (s *Service) SetBaseBalance(ctx context.Context, value decimal.Decimal, changedBy uuid.UUID) error {
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Base balance cannot be negative")
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.SetNumber(ctx, settings.KeyBaseBalance, value, changedBy)
	})
	if err != nil {
		return fmt.Errorf("set base balance: %w", err)
	}
	s.logger.Info("base balance updated",
		zap.String("value", value.String()),
		zap.String("changed_by", changedBy.String()),
	)
	return nil
}

// SetWithdrawalThreshold updates the withdrawal approval threshold
func (s *Service) SetWithdrawalThreshold(ctx context.Context, value decimal.Decimal, changedBy uuid.UUID) error {
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Withdrawal threshold cannot be negative")
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.SetNumber(ctx, settings.KeyWithdrawalApprovalThreshold, value, changedBy)
	})
	if err != nil {
		return fmt.Errorf("set withdrawal threshold: %w", err)
	}
	return nil
}

// SetDepositTolerance updates the deposit tolerance band
func (s *Service) SetDepositTolerance(ctx context.Context, value decimal.Decimal, changedBy uuid.UUID) error {
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Deposit tolerance cannot be negative")
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.SetNumber(ctx, settings.KeyDepositTolerance, value, changedBy)
	})
	if err != nil {
		return fmt.Errorf("set deposit tolerance: %w", err)
	}
	return nil
}

// BaseBalanceAuditTrail returns recent base-balance changes, newest first
func (s *Service) BaseBalanceAuditTrail(ctx context.Context, limit int) ([]settings.BaseBalanceAudit, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	trail, err := s.repo.BaseBalanceAuditTrail(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read base balance audit trail: %w", err)
	}
	return trail, nil
}
