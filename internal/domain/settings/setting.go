// Package settings owns the treasury's configuration schema. Keys are
// declared here with explicit defaults; the storage shape is fixed and
// versioned through migrations, never probed at runtime.
package settings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Setting keys owned by the treasury core
const (
	// KeyBaseBalance is the custodian's opening float
	KeyBaseBalance = "treasury.base_balance"
	// KeyWithdrawalApprovalThreshold is the amount above which a
	// withdrawal requires explicit admin approval
	KeyWithdrawalApprovalThreshold = "treasury.withdrawal_approval_threshold"
	// KeyDepositTolerance is the maximum acceptable difference between a
	// deposit's amount and its assigned invoice total
	KeyDepositTolerance = "treasury.deposit_tolerance"
)

// Explicit defaults, applied when a key has never been written. The
// deposit tolerance in particular must never silently default to zero.
var (
	DefaultBaseBalance                 = decimal.Zero
	DefaultWithdrawalApprovalThreshold = decimal.NewFromInt(200_000)
	DefaultDepositTolerance            = decimal.NewFromInt(1_000)
)

// Setting is one named configuration value
type Setting struct {
	shared.BaseEntity
	Key       string
	Value     string
	UpdatedBy *uuid.UUID
}

// BaseBalanceAudit is one row of the append-only audit trail for the
// base-balance key. Every mutation of the base balance produces exactly
// one audit row in the same transaction.
type BaseBalanceAudit struct {
	ID            uuid.UUID
	PreviousValue decimal.Decimal
	NewValue      decimal.Decimal
	ChangedBy     uuid.UUID
	ChangedAt     time.Time
}

// Repository reads and writes named settings
type Repository interface {
	// GetNumber returns the numeric value of a key, or the default when
	// the key has never been written
	GetNumber(ctx context.Context, key string, def decimal.Decimal) (decimal.Decimal, error)
	// SetNumber writes a numeric value. For the base-balance key the
	// write and its audit row are one atomic unit.
	SetNumber(ctx context.Context, key string, value decimal.Decimal, changedBy uuid.UUID) error
	// BaseBalanceAuditTrail returns the most recent base-balance changes,
	// newest first
	BaseBalanceAuditTrail(ctx context.Context, limit int) ([]BaseBalanceAudit, error)
}
