package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories"
)

type IngestionJobRepository struct {
	mock.Mock
}

func (r *IngestionJobRepository) CreateIngestionJob(
	ctx context.Context,
	exec repositories.Executor,
	input models.CreateIngestionJobInput,
) error {
	args := r.Called(exec, input)
	return args.Error(0)
}

func (r *IngestionJobRepository) GetIngestionJobById(ctx context.Context, exec repositories.Executor, id string) (models.IngestionJob, error) {
	args := r.Called(exec, id)
	return args.Get(0).(models.IngestionJob), args.Error(1)
}

func (r *IngestionJobRepository) UpdateIngestionJobStatus(
	ctx context.Context,
	exec repositories.Executor,
	input models.UpdateIngestionJobStatusInput,
) (*models.IngestionJob, error) {
	args := r.Called(exec, input)
	return args.Get(0).(*models.IngestionJob), args.Error(1)
}

func (r *IngestionJobRepository) UpdateIngestionJobProgress(
	ctx context.Context,
	exec repositories.Executor,
	id string,
	progress models.IngestionProgress,
) error {
	args := r.Called(exec, id, progress)
	return args.Error(0)
}

func (r *IngestionJobRepository) ListIngestionJobsOfUser(
	ctx context.Context,
	exec repositories.Executor,
	userId models.UserId,
	limit int,
) ([]models.IngestionJob, error) {
	args := r.Called(exec, userId, limit)
	return args.Get(0).([]models.IngestionJob), args.Error(1)
}
