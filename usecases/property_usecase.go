package usecases

import (
	"context"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/pure_utils"
	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/usecases/executor_factory"
	"github.com/offerlookup/offer-backend/usecases/security"
)

const (
	defaultPropertySearchLimit = 50
	maxPropertySearchLimit     = 500
)

type propertySearchRepository interface {
	SearchProperties(ctx context.Context, exec repositories.Executor, search models.PropertySearch) ([]models.PropertyRecord, error)
}

type PropertyUsecase struct {
	enforceSecurity    security.EnforceSecurityIngestion
	executorFactory    executor_factory.ExecutorFactory
	propertyRepository propertySearchRepository
}

// SearchProperties filters are normalized like ingested records, so that "78701-1234" finds "78701".
func (usecase *PropertyUsecase) SearchProperties(ctx context.Context, search models.PropertySearch) (models.PropertyPage, error) {
	if err := usecase.enforceSecurity.ReadProperties(); err != nil {
		return models.PropertyPage{}, err
	}

	search.Filters = models.PropertyFilters{
		AddressPrefix: pure_utils.NormalizeAddress(search.Filters.AddressPrefix),
		City:          pure_utils.NormalizeCity(search.Filters.City),
		State:         pure_utils.NormalizeState(search.Filters.State),
		Zip:           pure_utils.NormalizeZip(search.Filters.Zip),
	}
	switch {
	case search.Limit <= 0:
		search.Limit = defaultPropertySearchLimit
	case search.Limit > maxPropertySearchLimit:
		search.Limit = maxPropertySearchLimit
	}

	limit := search.Limit
	// one more row tells whether there is a next page
	search.Limit++
	records, err := usecase.propertyRepository.SearchProperties(ctx, usecase.executorFactory.NewExecutor(), search)
	if err != nil {
		return models.PropertyPage{}, err
	}
	if len(records) > limit {
		return models.PropertyPage{Records: records[:limit], HasNextPage: true}, nil
	}
	return models.PropertyPage{Records: records}, nil
}
