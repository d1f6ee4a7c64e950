package repositories

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/offerlookup/offer-backend/models"
)

// pgx.BeginFunc accepts both a pool and a pgxmock pool
type beginner interface {
	TransactionOrPool
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ExecutorGetter struct {
	connectionPool beginner
}

func NewExecutorGetter(pool beginner) ExecutorGetter {
	return ExecutorGetter{
		connectionPool: pool,
	}
}

func (g ExecutorGetter) Transaction(ctx context.Context, fn func(tx Transaction) error) error {
	err := pgx.BeginFunc(ctx, g.connectionPool, func(tx pgx.Tx) error {
		return fn(NewPgTx(tx))
	})

	// helper: The callback can return ErrIgnoreRollBackError
	// to explicitly specify that the error should be ignored.
	if errors.Is(err, models.ErrIgnoreRollBackError) {
		return nil
	}
	return errors.Wrap(err, "Error executing transaction")
}

func (g ExecutorGetter) GetExecutor() Executor {
	return &PgExecutor{
		exec: g.connectionPool,
	}
}

// WithSavepoint runs fn inside a nested transaction of tx. pgx implements it with a SAVEPOINT,
// released when fn succeeds and rolled back to when it fails, leaving the outer transaction usable.
func WithSavepoint(ctx context.Context, tx Transaction, fn func(tx Transaction) error) error {
	return pgx.BeginFunc(ctx, tx.RawTx(), func(nested pgx.Tx) error {
		return fn(NewPgTx(nested))
	})
}
