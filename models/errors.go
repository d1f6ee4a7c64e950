package models

import (
	"github.com/cockroachdb/errors"
)

// Base errors, related to default API status codes
var (
	// BadParameterError is rendered with the http status code 400
	BadParameterError = errors.New("bad parameter")

	// UnAuthorizedError is rendered with the http status code 401
	UnAuthorizedError = errors.New("unauthorized")

	// ForbiddenError is rendered with the http status code 403
	ForbiddenError = errors.New("forbidden")

	// NotFoundError is rendered with the http status code 404
	NotFoundError = errors.New("not found")

	// ConflictError is rendered with the http status code 409
	ConflictError = errors.New("duplicate value")
)

// DB related errors
var (
	ErrIgnoreRollBackError = errors.New("ignore rollback error")
)

// Ingestion job related errors
var (
	ErrJobAlreadyTerminal         = errors.Wrap(BadParameterError, "ingestion job is already in a terminal status")
	ErrInvalidJobStatusTransition = errors.Wrap(BadParameterError, "invalid ingestion job status transition")
)

// File level ingestion errors. Any of them fails the job before (or instead of) the next batch.
var (
	ErrUnsupportedFileType = errors.Wrap(BadParameterError, "unsupported file type, expecting csv, xlsx or xls")
	ErrNoWorksheet         = errors.New("spreadsheet has no worksheet")
	ErrMissingHeader       = errors.New("file has no header row")
	ErrFileTooLarge        = errors.Wrap(BadParameterError, "uploaded file exceeds the size limit")
)
