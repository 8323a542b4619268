package treasury

import (
	"context"

	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
)

// SettingsProvider supplies the configured treasury parameters. Reads go
// to the configuration source on every call; thresholds are never cached
// by the services that consume them.
type SettingsProvider interface {
	// BaseBalance returns the custodian's configured opening float
	BaseBalance(ctx context.Context) (valueobject.Money, error)
	// WithdrawalThreshold returns the auto-approval ceiling for withdrawals
	WithdrawalThreshold(ctx context.Context) (valueobject.Money, error)
	// DepositTolerance returns the acceptable deposit/assignment difference
	DepositTolerance(ctx context.Context) (valueobject.Money, error)
}
