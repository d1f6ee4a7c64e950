package usecases

import (
	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/usecases/security"
)

type UsecasesWithCreds struct {
	Usecases
	Credentials models.Credentials
}

func (usecases *UsecasesWithCreds) NewEnforceSecurity() security.EnforceSecurity {
	return &security.EnforceSecurityImpl{
		Credentials: usecases.Credentials,
	}
}

func (usecases *UsecasesWithCreds) NewEnforceIngestionSecurity() security.EnforceSecurityIngestion {
	return &security.EnforceSecurityIngestionImpl{
		EnforceSecurity: usecases.NewEnforceSecurity(),
		Credentials:     usecases.Credentials,
	}
}

func (usecases *UsecasesWithCreds) NewUploadUsecase() UploadUsecase {
	return UploadUsecase{
		enforceSecurity:       usecases.NewEnforceIngestionSecurity(),
		credentials:           usecases.Credentials,
		executorFactory:       usecases.NewExecutorFactory(),
		transactionFactory:    usecases.NewTransactionFactory(),
		jobTracker:            usecases.NewJobTracker(),
		taskQueueRepository:   usecases.Repositories.TaskQueueRepository,
		activityLogRepository: usecases.Repositories.OfferDbRepository,
		blobRepository:        usecases.Repositories.BlobRepository,
		notifier:              usecases.notifier,
		clock:                 usecases.clock,
		bucketUrl:             usecases.ingestionConfig.BucketUrl,
		maxUploadBytes:        usecases.ingestionConfig.UploadMaxSizeBytes(),
	}
}

func (usecases *UsecasesWithCreds) NewPropertyUsecase() PropertyUsecase {
	return PropertyUsecase{
		enforceSecurity:    usecases.NewEnforceIngestionSecurity(),
		executorFactory:    usecases.NewExecutorFactory(),
		propertyRepository: usecases.Repositories.OfferDbRepository,
	}
}
