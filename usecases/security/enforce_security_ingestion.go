package security

import (
	"errors"
	"fmt"

	"github.com/offerlookup/offer-backend/models"
)

type EnforceSecurityIngestion interface {
	EnforceSecurity
	CanUpload() error
	ReadIngestionJob(job models.IngestionJob) error
	CancelIngestionJob(job models.IngestionJob) error
	ReadProperties() error
}

type EnforceSecurityIngestionImpl struct {
	EnforceSecurity
	Credentials models.Credentials
}

func (e *EnforceSecurityIngestionImpl) CanUpload() error {
	return errors.Join(e.Permission(models.INGESTION))
}

// Jobs are visible to their owner, and to roles that can read every job.
func (e *EnforceSecurityIngestionImpl) ReadIngestionJob(job models.IngestionJob) error {
	if job.UserId == e.Credentials.ActorIdentity.UserId {
		return nil
	}
	if e.Permission(models.INGESTION_JOB_READ_ALL) == nil {
		return nil
	}
	return fmt.Errorf("ingestion job %s does not belong to the user: %w", job.Id, models.ForbiddenError)
}

func (e *EnforceSecurityIngestionImpl) CancelIngestionJob(job models.IngestionJob) error {
	return errors.Join(
		e.Permission(models.INGESTION),
		e.ReadIngestionJob(job),
	)
}

func (e *EnforceSecurityIngestionImpl) ReadProperties() error {
	return errors.Join(e.Permission(models.PROPERTY_READ))
}
