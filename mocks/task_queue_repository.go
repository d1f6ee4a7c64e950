package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/offerlookup/offer-backend/repositories"
)

type TaskQueueRepository struct {
	mock.Mock
}

func (m *TaskQueueRepository) EnqueueFileIngestionTask(ctx context.Context, tx repositories.Transaction, jobId string) error {
	args := m.Called(ctx, tx, jobId)
	return args.Error(0)
}
