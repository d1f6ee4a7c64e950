package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/offerlookup/offer-backend/mocks"
	"github.com/offerlookup/offer-backend/models"
)

func TestSearchProperties_normalizesFilters(t *testing.T) {
	exec := new(mocks.Transaction)
	executorFactory := new(mocks.ExecutorFactory)
	executorFactory.On("NewExecutor").Return(exec)
	enforceSecurity := new(mocks.EnforceSecurity)
	enforceSecurity.On("ReadProperties").Return(nil)
	repository := new(mocks.PropertyRepository)
	expected := models.PropertySearch{
		Filters: models.PropertyFilters{AddressPrefix: "12 Main", City: "Austin", State: "TX", Zip: "78701"},
		Limit:   defaultPropertySearchLimit + 1,
	}
	repository.On("SearchProperties", exec, expected).Return([]models.PropertyRecord{{Id: "p1"}}, nil)

	usecase := PropertyUsecase{
		enforceSecurity:    enforceSecurity,
		executorFactory:    executorFactory,
		propertyRepository: repository,
	}
	page, err := usecase.SearchProperties(context.Background(), models.PropertySearch{
		Filters: models.PropertyFilters{AddressPrefix: " 12   Main", City: "Austin ", State: "tx", Zip: "78701-1234"},
	})

	assert.NoError(t, err)
	assert.Len(t, page.Records, 1)
	assert.False(t, page.HasNextPage)
	repository.AssertExpectations(t)
}

func TestSearchProperties_clampsLimit(t *testing.T) {
	exec := new(mocks.Transaction)
	executorFactory := new(mocks.ExecutorFactory)
	executorFactory.On("NewExecutor").Return(exec)
	enforceSecurity := new(mocks.EnforceSecurity)
	enforceSecurity.On("ReadProperties").Return(nil)
	repository := new(mocks.PropertyRepository)
	repository.On("SearchProperties", exec, models.PropertySearch{Limit: maxPropertySearchLimit + 1}).
		Return([]models.PropertyRecord{}, nil)

	usecase := PropertyUsecase{
		enforceSecurity:    enforceSecurity,
		executorFactory:    executorFactory,
		propertyRepository: repository,
	}
	_, err := usecase.SearchProperties(context.Background(), models.PropertySearch{Limit: 100000})

	assert.NoError(t, err)
	repository.AssertExpectations(t)
}

func TestSearchProperties_forbidden(t *testing.T) {
	enforceSecurity := new(mocks.EnforceSecurity)
	enforceSecurity.On("ReadProperties").Return(models.ForbiddenError)

	usecase := PropertyUsecase{enforceSecurity: enforceSecurity}
	_, err := usecase.SearchProperties(context.Background(), models.PropertySearch{})

	assert.ErrorIs(t, err, models.ForbiddenError)
}

func TestSearchProperties_nextPage(t *testing.T) {
	exec := new(mocks.Transaction)
	executorFactory := new(mocks.ExecutorFactory)
	executorFactory.On("NewExecutor").Return(exec)
	enforceSecurity := new(mocks.EnforceSecurity)
	enforceSecurity.On("ReadProperties").Return(nil)
	repository := new(mocks.PropertyRepository)
	repository.On("SearchProperties", exec, models.PropertySearch{Limit: 3}).
		Return([]models.PropertyRecord{{Id: "p1"}, {Id: "p2"}, {Id: "p3"}}, nil)

	usecase := PropertyUsecase{
		enforceSecurity:    enforceSecurity,
		executorFactory:    executorFactory,
		propertyRepository: repository,
	}
	page, err := usecase.SearchProperties(context.Background(), models.PropertySearch{Limit: 2})

	assert.NoError(t, err)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, []models.PropertyRecord{{Id: "p1"}, {Id: "p2"}}, page.Records)
}
