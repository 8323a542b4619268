package persistence

import (
	"context"

	"github.com/opsdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txContextKey struct{}

// GormTransactionManager implements shared.TransactionManager over a
// gorm connection. The transaction handle travels in the context, so
// every repository call inside the function joins the same transaction
// without the repositories knowing about each other.
type GormTransactionManager struct {
	db *gorm.DB
}

var _ shared.TransactionManager = (*GormTransactionManager)(nil)

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTx runs fn inside a database transaction. A nested call joins
// the transaction already in the context instead of opening a second one.
func (m *GormTransactionManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

func txFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// dbFor returns the transaction from the context when one is active,
// the base connection otherwise. Every repository method goes through
// this so reads and writes inside WithinTx see uncommitted state.
func dbFor(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return base.WithContext(ctx)
}
