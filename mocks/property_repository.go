package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories"
)

type PropertyRepository struct {
	mock.Mock
}

func (r *PropertyRepository) FindPropertyByTupleForUpdate(
	ctx context.Context,
	exec repositories.Executor,
	tuple models.PropertyTuple,
	caseInsensitive bool,
) (*models.PropertyRecord, error) {
	args := r.Called(exec, tuple, caseInsensitive)
	return args.Get(0).(*models.PropertyRecord), args.Error(1)
}

func (r *PropertyRepository) InsertPropertyIfAbsent(
	ctx context.Context,
	exec repositories.Executor,
	record models.PropertyRecord,
) (*models.PropertyRecord, error) {
	args := r.Called(exec, record)
	return args.Get(0).(*models.PropertyRecord), args.Error(1)
}

func (r *PropertyRepository) UpdatePropertyOffer(
	ctx context.Context,
	exec repositories.Executor,
	id string,
	offerAmount float64,
	updatedAt time.Time,
) (models.PropertyRecord, error) {
	args := r.Called(exec, id, offerAmount, updatedAt)
	return args.Get(0).(models.PropertyRecord), args.Error(1)
}

func (r *PropertyRepository) SearchProperties(
	ctx context.Context,
	exec repositories.Executor,
	search models.PropertySearch,
) ([]models.PropertyRecord, error) {
	args := r.Called(exec, search)
	return args.Get(0).([]models.PropertyRecord), args.Error(1)
}
