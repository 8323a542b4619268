package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/opsdesk/backend/internal/domain/treasury"
	"go.uber.org/zap"
)

// BalanceService derives the cash position from the ledger. Every call
// recomputes from the underlying rows; there is no cached balance to
// drift out of sync.
type BalanceService struct {
	events    treasury.CashEventRepository
	movements treasury.MovementRepository
	deposits  treasury.DepositRepository
	settings  SettingsProvider
	logger    *zap.Logger
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(
	events treasury.CashEventRepository,
	movements treasury.MovementRepository,
	deposits treasury.DepositRepository,
	settings SettingsProvider,
	logger *zap.Logger,
) *BalanceService {
	return &BalanceService{
		events:    events,
		movements: movements,
		deposits:  deposits,
		settings:  settings,
		logger:    logger,
	}
}

// Statement computes the balance for an optional date range. Inflows are
// accepted cash events plus extra income; outflows are deposits plus
// approved withdrawals. Pending withdrawals and refund tracking entries
// never move the balance.
func (s *BalanceService) Statement(ctx context.Context, from, to *time.Time) (*treasury.BalanceStatement, error) {
	base, err := s.settings.BaseBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("load base balance: %w", err)
	}

	// Messenger bucket covers both custodian-carried channels; the
	// warehouse bucket covers the counter channels.
	messenger, err := s.events.SumAccepted(ctx, []treasury.CashSource{treasury.CashSourceMessenger, treasury.CashSourceAdhoc}, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum messenger inflows: %w", err)
	}
	warehouse, err := s.events.SumAccepted(ctx, []treasury.CashSource{treasury.CashSourceWarehouse, treasury.CashSourcePOS}, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum warehouse inflows: %w", err)
	}
	extraIncome, err := s.movements.SumApprovedByType(ctx, treasury.MovementTypeExtraIncome, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum extra income: %w", err)
	}
	depositTotal, err := s.deposits.SumDeposits(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum deposits: %w", err)
	}
	withdrawals, err := s.movements.SumApprovedByType(ctx, treasury.MovementTypeWithdrawal, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum withdrawals: %w", err)
	}

	statement := treasury.NewBalanceStatement(
		base,
		treasury.BalanceInflows{Messenger: messenger, Warehouse: warehouse, ExtraIncome: extraIncome},
		treasury.BalanceOutflows{Deposits: depositTotal, Withdrawals: withdrawals},
		from, to,
	)
	s.logger.Debug("balance statement computed",
		zap.String("base", statement.Base.String()),
		zap.String("balance", statement.Balance.String()),
	)
	return &statement, nil
}
