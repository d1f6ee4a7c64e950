package ingestion

import (
	"context"
	"io"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/repositories/clock"
	"github.com/offerlookup/offer-backend/usecases/executor_factory"
	"github.com/offerlookup/offer-backend/usecases/progress"
	"github.com/offerlookup/offer-backend/utils"
)

type batchRunner interface {
	RunBatch(ctx context.Context, rows []models.RawRow) (models.BatchStats, error)
}

// StreamIngestor drives one ingestion job from its pending file to a terminal status. Rows are
// pulled from the file only when the next batch is assembled, and batches run one after the
// other.
type StreamIngestor struct {
	executorFactory       executor_factory.ExecutorFactory
	jobTracker            JobTracker
	batchRunner           batchRunner
	activityLogRepository repositories.ActivityLogRepository
	blobRepository        repositories.BlobRepository
	notifier              *progress.Notifier
	clock                 clock.Clock
	bucketUrl             string
	batchSize             int
}

func NewStreamIngestor(
	executorFactory executor_factory.ExecutorFactory,
	jobTracker JobTracker,
	batchRunner batchRunner,
	activityLogRepository repositories.ActivityLogRepository,
	blobRepository repositories.BlobRepository,
	notifier *progress.Notifier,
	clock clock.Clock,
	bucketUrl string,
	batchSize int,
) StreamIngestor {
	return StreamIngestor{
		executorFactory:       executorFactory,
		jobTracker:            jobTracker,
		batchRunner:           batchRunner,
		activityLogRepository: activityLogRepository,
		blobRepository:        blobRepository,
		notifier:              notifier,
		clock:                 clock,
		bucketUrl:             bucketUrl,
		batchSize:             max(batchSize, 1),
	}
}

// ingestionRun is the state of a single Ingest call.
type ingestionRun struct {
	job        models.IngestionJob
	reader     RowReader
	batchSize  int
	batchIndex int
	progress   models.IngestionProgress

	lookahead  models.RawRow
	pendingErr error
}

// nextBatch returns up to batchSize rows, and whether they are the last rows of the file. One row
// is read ahead to know it.
func (r *ingestionRun) nextBatch() ([]models.RawRow, bool, error) {
	if r.pendingErr != nil {
		return nil, false, r.pendingErr
	}

	rows := make([]models.RawRow, 0, r.batchSize)
	if r.lookahead != nil {
		rows = append(rows, r.lookahead)
		r.lookahead = nil
	}
	for len(rows) < r.batchSize {
		row, err := r.reader.Next()
		if errors.Is(err, io.EOF) {
			return rows, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		rows = append(rows, row)
	}

	row, err := r.reader.Next()
	switch {
	case errors.Is(err, io.EOF):
		return rows, true, nil
	case err != nil:
		// the full batch is still ingested, the error surfaces on the next call
		r.pendingErr = err
	default:
		r.lookahead = row
	}
	return rows, false, nil
}

func (s StreamIngestor) Ingest(ctx context.Context, jobId string) (models.IngestionProgress, error) {
	ctx, logger := utils.LoggerWithAttrs(ctx, "job_id", jobId)

	job, err := s.jobTracker.FindById(ctx, jobId)
	if err != nil {
		return models.IngestionProgress{}, errors.Wrapf(err, "could not read ingestion job %s", jobId)
	}
	if job.Status != models.JobPending {
		logger.InfoContext(ctx, "ingestion job is not pending, skipping it", "status", job.Status)
		if job.Status == models.JobCancelled {
			s.deleteSourceFile(ctx, job)
			s.notifier.Complete(s.progressEvent(job.Id, job.Status, job.Progress))
		}
		return job.Progress, nil
	}

	job, err = s.jobTracker.UpdateStatus(ctx, jobId, models.JobProcessing, nil)
	if errors.Is(err, models.ErrInvalidJobStatusTransition) {
		logger.InfoContext(ctx, "ingestion job changed status before it started, skipping it", "status", job.Status)
		return job.Progress, nil
	}
	if err != nil {
		return models.IngestionProgress{}, errors.Wrapf(err, "could not start ingestion job %s", jobId)
	}

	logger.InfoContext(ctx, "starting ingestion job", "file_name", job.FileName, "file_type", job.FileType)
	s.audit(ctx, job, models.ActivityIngestionStarted, map[string]any{
		"file_name": job.FileName,
		"file_type": job.FileType,
	})
	s.notifier.Publish(s.progressEvent(job.Id, models.JobProcessing, models.IngestionProgress{}))

	run := &ingestionRun{job: job, batchSize: s.batchSize}
	return s.process(ctx, run)
}

func (s StreamIngestor) process(ctx context.Context, run *ingestionRun) (models.IngestionProgress, error) {
	logger := utils.LoggerFromContext(ctx)

	blob, err := s.blobRepository.GetBlob(ctx, s.bucketUrl, run.job.PendingFilePath())
	if err != nil {
		return s.fail(ctx, run, err)
	}
	defer blob.ReadCloser.Close()

	reader, err := NewRowReader(run.job.FileType, blob.ReadCloser)
	if err != nil {
		return s.fail(ctx, run, err)
	}
	defer reader.Close()
	run.reader = reader

	for {
		current, err := s.jobTracker.FindById(ctx, run.job.Id)
		if err != nil {
			return s.fail(ctx, run, errors.Wrap(err, "could not check the ingestion job status"))
		}
		if current.Status == models.JobCancelled {
			return s.cancelled(ctx, run), nil
		}

		rows, last, err := run.nextBatch()
		if err != nil {
			return s.fail(ctx, run, err)
		}
		if len(rows) > 0 {
			if err := s.runBatch(ctx, run, rows); err != nil {
				if last || ctx.Err() != nil {
					return s.fail(ctx, run, err)
				}
				logger.WarnContext(ctx, "ingestion batch failed, its rows are counted as errors",
					"batch_index", run.batchIndex,
					"error", err.Error())
			}
		}
		if last {
			return s.complete(ctx, run)
		}
	}
}

func (s StreamIngestor) runBatch(ctx context.Context, run *ingestionRun, rows []models.RawRow) error {
	logger := utils.LoggerFromContext(ctx)

	start := time.Now()
	stats, err := s.batchRunner.RunBatch(ctx, rows)
	utils.MetricIngestionBatchDuration.WithLabelValues(string(run.job.FileType)).Observe(time.Since(start).Seconds())
	utils.MetricIngestedRows.WithLabelValues("new").Add(float64(stats.New))
	utils.MetricIngestedRows.WithLabelValues("updated").Add(float64(stats.Updated))
	utils.MetricIngestedRows.WithLabelValues("error").Add(float64(stats.Error))
	utils.MetricIngestedRows.WithLabelValues("coerced").Add(float64(stats.Coerced))

	run.progress = run.progress.Add(stats)
	logger.DebugContext(ctx, "ingestion batch done",
		"batch_index", run.batchIndex,
		"new", stats.New,
		"updated", stats.Updated,
		"errors", stats.Error)
	run.batchIndex++

	if progressErr := s.jobTracker.UpdateProgress(ctx, run.job.Id, run.progress); progressErr != nil {
		logger.WarnContext(ctx, "could not save ingestion progress", "error", progressErr.Error())
	}
	s.notifier.Publish(s.progressEvent(run.job.Id, models.JobProcessing, run.progress))
	return err
}

func (s StreamIngestor) complete(ctx context.Context, run *ingestionRun) (models.IngestionProgress, error) {
	logger := utils.LoggerFromContext(ctx)

	job, err := s.setTerminalStatus(ctx, run, models.JobCompleted, nil)
	if errors.Is(err, models.ErrInvalidJobStatusTransition) && job.Status == models.JobCancelled {
		return s.cancelled(ctx, run), nil
	}
	if err != nil {
		return run.progress, errors.Wrapf(err, "could not complete ingestion job %s", run.job.Id)
	}

	if err := s.blobRepository.MoveFile(ctx, s.bucketUrl, job.PendingFilePath(), job.ProcessedFilePath()); err != nil {
		logger.WarnContext(ctx, "could not move the ingested file", "error", err.Error())
	}
	s.audit(ctx, job, models.ActivityIngestionCompleted, progressDetails(run.progress))
	s.notifier.Complete(s.progressEvent(job.Id, models.JobCompleted, run.progress))
	utils.MetricIngestionJobs.WithLabelValues(string(models.JobCompleted)).Inc()

	logger.InfoContext(ctx, "ingestion job completed",
		"total", run.progress.Total,
		"new", run.progress.New,
		"updated", run.progress.Updated,
		"errors", run.progress.Error,
		"coerced", run.progress.Coerced)
	return run.progress, nil
}

// fail records the terminal failure even if ctx was cancelled, then returns cause.
func (s StreamIngestor) fail(ctx context.Context, run *ingestionRun, cause error) (models.IngestionProgress, error) {
	ctx = context.WithoutCancel(ctx)
	logger := utils.LoggerFromContext(ctx)
	message := cause.Error()

	job, err := s.setTerminalStatus(ctx, run, models.JobFailed, &message)
	if errors.Is(err, models.ErrInvalidJobStatusTransition) && job.Status == models.JobCancelled {
		return s.cancelled(ctx, run), nil
	}
	if err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrapf(err, "could not mark ingestion job %s as failed", run.job.Id))
		job = run.job
	}

	details := progressDetails(run.progress)
	details["error"] = message
	s.audit(ctx, job, models.ActivityIngestionFailed, details)
	s.deleteSourceFile(ctx, run.job)
	s.notifier.Complete(s.progressEvent(run.job.Id, models.JobFailed, run.progress))
	utils.MetricIngestionJobs.WithLabelValues(string(models.JobFailed)).Inc()

	logger.WarnContext(ctx, "ingestion job failed", "error", message)
	return run.progress, cause
}

// cancelled stops a job cancelled while processing. The batch in flight at cancellation time is
// already committed and counted.
func (s StreamIngestor) cancelled(ctx context.Context, run *ingestionRun) models.IngestionProgress {
	ctx = context.WithoutCancel(ctx)
	s.deleteSourceFile(ctx, run.job)
	s.notifier.Complete(s.progressEvent(run.job.Id, models.JobCancelled, run.progress))
	utils.MetricIngestionJobs.WithLabelValues(string(models.JobCancelled)).Inc()

	utils.LoggerFromContext(ctx).InfoContext(ctx, "ingestion job cancelled",
		"batches", run.batchIndex,
		"total", run.progress.Total)
	return run.progress
}

// setTerminalStatus writes the final counters, then the status. Transient storage errors are
// retried; a refused transition is not.
func (s StreamIngestor) setTerminalStatus(
	ctx context.Context,
	run *ingestionRun,
	status models.IngestionJobStatus,
	errorMessage *string,
) (models.IngestionJob, error) {
	var job models.IngestionJob
	err := retry.Do(
		func() error {
			if err := s.jobTracker.UpdateProgress(ctx, run.job.Id, run.progress); err != nil {
				return err
			}
			var err error
			job, err = s.jobTracker.UpdateStatus(ctx, run.job.Id, status, errorMessage)
			return err
		},
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, models.ErrInvalidJobStatusTransition)
		}),
	)
	return job, err
}

func (s StreamIngestor) deleteSourceFile(ctx context.Context, job models.IngestionJob) {
	if err := s.blobRepository.DeleteFile(ctx, s.bucketUrl, job.PendingFilePath()); err != nil {
		utils.LoggerFromContext(ctx).WarnContext(ctx, "could not delete the ingestion file", "error", err.Error())
	}
}

func (s StreamIngestor) audit(
	ctx context.Context,
	job models.IngestionJob,
	action models.ActivityAction,
	details map[string]any,
) {
	err := s.activityLogRepository.CreateActivityLog(ctx, s.executorFactory.NewExecutor(), models.CreateActivityLogInput{
		UserId:     job.UserId,
		Action:     action,
		EntityType: models.ActivityEntityIngestionJob,
		EntityId:   job.Id,
		Details:    details,
	})
	if err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrapf(err, "could not write the %s activity log", action))
	}
}

func (s StreamIngestor) progressEvent(
	jobId string,
	status models.IngestionJobStatus,
	counters models.IngestionProgress,
) models.ProgressEvent {
	return models.ProgressEvent{
		JobId:      jobId,
		Status:     status,
		Progress:   counters,
		OccurredAt: s.clock.Now(),
	}
}

func progressDetails(counters models.IngestionProgress) map[string]any {
	return map[string]any{
		"total_records":   counters.Total,
		"new_records":     counters.New,
		"updated_records": counters.Updated,
		"error_records":   counters.Error,
		"coerced_records": counters.Coerced,
	}
}
