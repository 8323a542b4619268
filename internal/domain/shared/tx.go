package shared

import "context"

// TransactionManager runs a function inside a single storage transaction.
// Every mutating use case executes as exactly one transaction: if fn
// returns an error or the context is cancelled, all writes roll back.
// Repositories resolve the active transaction from the context passed
// to fn, so multi-repository operations share the same snapshot.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
