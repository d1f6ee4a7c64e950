package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/offerlookup/offer-backend/repositories"
)

type TransactionFactory struct {
	mock.Mock
	TxMock *Transaction
}

// Transaction runs fn with the mocked transaction, then returns the configured error.
// An optional second return value is an error returned without running fn, like a failed BEGIN.
func (t *TransactionFactory) Transaction(ctx context.Context, fn func(tx repositories.Transaction) error) error {
	args := t.Called(ctx, fn)
	if len(args) > 1 && args.Error(1) != nil {
		return args.Error(1)
	}
	err := fn(t.TxMock)
	if err != nil {
		return err
	}
	return args.Error(0)
}

type ExecutorFactory struct {
	mock.Mock
}

func (e *ExecutorFactory) NewExecutor() repositories.Executor {
	args := e.Called()
	return args.Get(0).(repositories.Executor)
}
