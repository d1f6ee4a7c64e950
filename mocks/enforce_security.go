package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/offerlookup/offer-backend/models"
)

type EnforceSecurity struct {
	mock.Mock
}

func (e *EnforceSecurity) Permission(permission models.Permission) error {
	args := e.Called(permission)
	return args.Error(0)
}

func (e *EnforceSecurity) CanUpload() error {
	args := e.Called()
	return args.Error(0)
}

func (e *EnforceSecurity) ReadIngestionJob(job models.IngestionJob) error {
	args := e.Called(job)
	return args.Error(0)
}

func (e *EnforceSecurity) CancelIngestionJob(job models.IngestionJob) error {
	args := e.Called(job)
	return args.Error(0)
}

func (e *EnforceSecurity) ReadProperties() error {
	args := e.Called()
	return args.Error(0)
}
