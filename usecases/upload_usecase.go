package usecases

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/repositories/clock"
	"github.com/offerlookup/offer-backend/usecases/executor_factory"
	"github.com/offerlookup/offer-backend/usecases/progress"
	"github.com/offerlookup/offer-backend/usecases/security"
	"github.com/offerlookup/offer-backend/utils"
)

type ingestionJobTracker interface {
	CreateJob(ctx context.Context, exec repositories.Executor, input models.CreateIngestionJobInput) (models.IngestionJob, error)
	FindById(ctx context.Context, jobId string) (models.IngestionJob, error)
	ListJobsOfUser(ctx context.Context, userId models.UserId, limit int) ([]models.IngestionJob, error)
	CancelJob(ctx context.Context, jobId string) (models.JobCancellation, error)
}

type UploadUsecase struct {
	enforceSecurity       security.EnforceSecurityIngestion
	credentials           models.Credentials
	executorFactory       executor_factory.ExecutorFactory
	transactionFactory    executor_factory.TransactionFactory
	jobTracker            ingestionJobTracker
	taskQueueRepository   repositories.TaskQueueRepository
	activityLogRepository repositories.ActivityLogRepository
	blobRepository        repositories.BlobRepository
	notifier              *progress.Notifier
	clock                 clock.Clock
	bucketUrl             string
	maxUploadBytes        int64
}

// UploadFile stores the file and creates its pending job. The job row and the ingestion task are
// created in the same transaction.
func (usecase *UploadUsecase) UploadFile(ctx context.Context, input models.UploadFileInput) (models.IngestionJob, error) {
	if err := usecase.enforceSecurity.CanUpload(); err != nil {
		return models.IngestionJob{}, err
	}

	fileName := filepath.Base(filepath.Clean("/" + input.FileName))
	fileType := models.FileTypeFrom(strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), ".")))
	if fileType == "" {
		return models.IngestionJob{}, errors.Wrapf(models.ErrUnsupportedFileType, "file %s", fileName)
	}
	if input.Size > usecase.maxUploadBytes {
		return models.IngestionJob{}, errors.Wrapf(models.ErrFileTooLarge,
			"file %s is %d bytes, the limit is %d bytes", fileName, input.Size, usecase.maxUploadBytes)
	}

	jobInput := models.CreateIngestionJobInput{
		Id:       uuid.NewString(),
		UserId:   usecase.credentials.ActorIdentity.UserId,
		FileName: fileName,
		FileType: fileType,
	}
	pendingPath := models.IngestionJob{Id: jobInput.Id, FileName: fileName}.PendingFilePath()

	if err := usecase.writeFile(ctx, pendingPath, input.Content); err != nil {
		return models.IngestionJob{}, err
	}

	job, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory, func(
		tx repositories.Transaction,
	) (models.IngestionJob, error) {
		job, err := usecase.jobTracker.CreateJob(ctx, tx, jobInput)
		if err != nil {
			return models.IngestionJob{}, err
		}
		if err := usecase.taskQueueRepository.EnqueueFileIngestionTask(ctx, tx, job.Id); err != nil {
			return models.IngestionJob{}, err
		}
		return job, nil
	})
	if err != nil {
		if deleteErr := usecase.blobRepository.DeleteFile(ctx, usecase.bucketUrl, pendingPath); deleteErr != nil {
			utils.LoggerFromContext(ctx).WarnContext(ctx, "could not delete orphan upload", "error", deleteErr.Error())
		}
		return models.IngestionJob{}, err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "ingestion job created",
		"job_id", job.Id,
		"file_name", job.FileName,
		"file_type", job.FileType)
	return job, nil
}

func (usecase *UploadUsecase) writeFile(ctx context.Context, path string, content io.Reader) error {
	writer, err := usecase.blobRepository.OpenStream(ctx, usecase.bucketUrl, path)
	if err != nil {
		return err
	}
	defer writer.Close()

	if _, err := io.Copy(writer, content); err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	return writer.Close()
}

func (usecase *UploadUsecase) GetJob(ctx context.Context, jobId string) (models.IngestionJob, error) {
	job, err := usecase.jobTracker.FindById(ctx, jobId)
	if err != nil {
		return models.IngestionJob{}, err
	}
	if err := usecase.enforceSecurity.ReadIngestionJob(job); err != nil {
		return models.IngestionJob{}, err
	}
	return job, nil
}

func (usecase *UploadUsecase) ListJobs(ctx context.Context, limit int) ([]models.IngestionJob, error) {
	if err := usecase.enforceSecurity.CanUpload(); err != nil {
		return nil, err
	}
	return usecase.jobTracker.ListJobsOfUser(ctx, usecase.credentials.ActorIdentity.UserId, limit)
}

// CancelJob stops a pending or processing job. A processing job finishes its current batch first.
func (usecase *UploadUsecase) CancelJob(ctx context.Context, jobId string) (models.IngestionJob, error) {
	job, err := usecase.jobTracker.FindById(ctx, jobId)
	if err != nil {
		return models.IngestionJob{}, err
	}
	if err := usecase.enforceSecurity.CancelIngestionJob(job); err != nil {
		return models.IngestionJob{}, err
	}

	cancellation, err := usecase.jobTracker.CancelJob(ctx, jobId)
	if err != nil {
		return models.IngestionJob{}, err
	}
	if !cancellation.Cancelled {
		return models.IngestionJob{}, errors.Wrapf(models.ErrJobAlreadyTerminal,
			"job %s is %s", jobId, cancellation.Job.Status)
	}
	cancelled := cancellation.Job

	err = usecase.activityLogRepository.CreateActivityLog(ctx, usecase.executorFactory.NewExecutor(),
		models.CreateActivityLogInput{
			UserId:     usecase.credentials.ActorIdentity.UserId,
			Action:     models.ActivityIngestionCancelled,
			EntityType: models.ActivityEntityIngestionJob,
			EntityId:   jobId,
			Details: map[string]any{
				"previous_status": cancellation.PreviousStatus,
				"owner_id":        job.UserId,
			},
		})
	if err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrap(err, "could not write the cancellation activity log"))
	}

	// a processing job sends its final event itself once its batch is done
	if cancellation.PreviousStatus == models.JobPending {
		usecase.notifier.Complete(models.ProgressEvent{
			JobId:      jobId,
			Status:     models.JobCancelled,
			Progress:   cancelled.Progress,
			OccurredAt: usecase.clock.Now(),
		})
	}
	return cancelled, nil
}

// SubscribeToJob returns the job and, while it is not terminal, a subscription to its progress
// events. The caller must unsubscribe.
func (usecase *UploadUsecase) SubscribeToJob(ctx context.Context, jobId string) (models.IngestionJob, *progress.Subscription, error) {
	if _, err := usecase.GetJob(ctx, jobId); err != nil {
		return models.IngestionJob{}, nil, err
	}

	sub := usecase.notifier.Subscribe(jobId)
	// read again after subscribing, so that a job finishing in between is not missed
	job, err := usecase.jobTracker.FindById(ctx, jobId)
	if err != nil {
		sub.Unsubscribe()
		return models.IngestionJob{}, nil, err
	}
	if job.Status.IsTerminal() {
		sub.Unsubscribe()
		return job, nil, nil
	}
	return job, sub, nil
}
