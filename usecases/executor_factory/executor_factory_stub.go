package executor_factory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/offerlookup/offer-backend/repositories"
)

type ExecutorFactoryStub struct {
	Mock pgxmock.PgxPoolIface
}

func NewExecutorFactoryStub() ExecutorFactoryStub {
	pool, _ := pgxmock.NewPool()

	return ExecutorFactoryStub{
		Mock: pool,
	}
}

type PgExecutorStub struct {
	pgxmock.PgxPoolIface
}

func (stub ExecutorFactoryStub) NewExecutor() repositories.Executor {
	return PgExecutorStub{
		stub.Mock,
	}
}

// TransactionFactoryStub runs the callback directly on the mocked pool, without BEGIN/COMMIT.
type TransactionFactoryStub struct {
	ExecutorFactory ExecutorFactoryStub
}

func NewTransactionFactoryStub(executorFactory ExecutorFactoryStub) TransactionFactoryStub {
	return TransactionFactoryStub{ExecutorFactory: executorFactory}
}

type PgTxStub struct {
	PgExecutorStub
}

// RawTx has no real transaction behind it: code under test that needs one (river inserts,
// savepoints) must be given a replacement.
func (stub PgTxStub) RawTx() pgx.Tx {
	return nil
}

func (stub TransactionFactoryStub) Transaction(ctx context.Context, fn func(tx repositories.Transaction) error) error {
	return fn(PgTxStub{PgExecutorStub{stub.ExecutorFactory.Mock}})
}
