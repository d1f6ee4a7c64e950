package executor_factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/offerlookup/offer-backend/repositories"
)

func TestTransactionReturnValue(t *testing.T) {
	txFactory := NewTransactionFactoryStub(NewExecutorFactoryStub())

	value, err := TransactionReturnValue(context.Background(), txFactory, func(tx repositories.Transaction) (int, error) {
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, value)

	_, err = TransactionReturnValue(context.Background(), txFactory, func(tx repositories.Transaction) (int, error) {
		return 0, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}
