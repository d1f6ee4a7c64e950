package ingestion

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/repositories/clock"
	"github.com/offerlookup/offer-backend/usecases/executor_factory"
)

const defaultJobListLimit = 50

// JobTracker owns the lifecycle of ingestion jobs. Status changes are conditional on the current
// status in storage, so a cancelled job can never be moved back to processing or completed.
type JobTracker struct {
	executorFactory executor_factory.ExecutorFactory
	repository      repositories.IngestionJobRepository
	clock           clock.Clock
}

func NewJobTracker(
	executorFactory executor_factory.ExecutorFactory,
	repository repositories.IngestionJobRepository,
	clock clock.Clock,
) JobTracker {
	return JobTracker{
		executorFactory: executorFactory,
		repository:      repository,
		clock:           clock,
	}
}

// CreateJob inserts a pending job. exec is usually the transaction that also enqueues the task.
func (t JobTracker) CreateJob(
	ctx context.Context,
	exec repositories.Executor,
	input models.CreateIngestionJobInput,
) (models.IngestionJob, error) {
	if err := t.repository.CreateIngestionJob(ctx, exec, input); err != nil {
		return models.IngestionJob{}, errors.Wrap(err, "could not create ingestion job")
	}
	return t.repository.GetIngestionJobById(ctx, exec, input.Id)
}

func (t JobTracker) FindById(ctx context.Context, jobId string) (models.IngestionJob, error) {
	return t.repository.GetIngestionJobById(ctx, t.executorFactory.NewExecutor(), jobId)
}

func (t JobTracker) ListJobsOfUser(ctx context.Context, userId models.UserId, limit int) ([]models.IngestionJob, error) {
	if limit <= 0 {
		limit = defaultJobListLimit
	}
	return t.repository.ListIngestionJobsOfUser(ctx, t.executorFactory.NewExecutor(), userId, limit)
}

// UpdateStatus moves the job to status, stamping completed_at for terminal statuses. When the
// current status does not allow it, the job is returned untouched with ErrInvalidJobStatusTransition.
func (t JobTracker) UpdateStatus(
	ctx context.Context,
	jobId string,
	status models.IngestionJobStatus,
	errorMessage *string,
) (models.IngestionJob, error) {
	exec := t.executorFactory.NewExecutor()

	input := models.UpdateIngestionJobStatusInput{
		Id:           jobId,
		Status:       status,
		ErrorMessage: errorMessage,
	}
	if status.IsTerminal() {
		now := t.clock.Now()
		input.CompletedAt = &now
	}

	updated, err := t.repository.UpdateIngestionJobStatus(ctx, exec, input)
	if err != nil {
		return models.IngestionJob{}, err
	}
	if updated != nil {
		return *updated, nil
	}

	current, err := t.repository.GetIngestionJobById(ctx, exec, jobId)
	if err != nil {
		return models.IngestionJob{}, err
	}
	return current, errors.Wrapf(models.ErrInvalidJobStatusTransition,
		"job %s is %s, cannot move to %s", jobId, current.Status, status)
}

// UpdateProgress writes absolute counters.
func (t JobTracker) UpdateProgress(ctx context.Context, jobId string, progress models.IngestionProgress) error {
	return t.repository.UpdateIngestionJobProgress(ctx, t.executorFactory.NewExecutor(), jobId, progress)
}

// CancelJob cancels a pending or processing job. Each source status is tried with its own
// conditional update, so the returned PreviousStatus is the one that was actually replaced.
// A job that is already terminal is returned as is.
func (t JobTracker) CancelJob(ctx context.Context, jobId string) (models.JobCancellation, error) {
	exec := t.executorFactory.NewExecutor()
	completedAt := t.clock.Now()

	for _, from := range []models.IngestionJobStatus{models.JobPending, models.JobProcessing} {
		cancelled, err := t.repository.UpdateIngestionJobStatus(ctx, exec, models.UpdateIngestionJobStatusInput{
			Id:           jobId,
			Status:       models.JobCancelled,
			CompletedAt:  &completedAt,
			FromStatuses: []models.IngestionJobStatus{from},
		})
		if err != nil {
			return models.JobCancellation{}, err
		}
		if cancelled != nil {
			return models.JobCancellation{Job: *cancelled, PreviousStatus: from, Cancelled: true}, nil
		}
	}

	current, err := t.repository.GetIngestionJobById(ctx, exec, jobId)
	if err != nil {
		return models.JobCancellation{}, err
	}
	return models.JobCancellation{Job: current, PreviousStatus: current.Status}, nil
}
