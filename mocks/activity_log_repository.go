package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories"
)

type ActivityLogRepository struct {
	mock.Mock
}

func (r *ActivityLogRepository) CreateActivityLog(
	ctx context.Context,
	exec repositories.Executor,
	input models.CreateActivityLogInput,
) error {
	args := r.Called(exec, input)
	return args.Error(0)
}
