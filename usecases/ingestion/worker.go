package ingestion

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"github.com/offerlookup/offer-backend/models"
)

type fileIngester interface {
	Ingest(ctx context.Context, jobId string) (models.IngestionProgress, error)
}

// FileIngestionWorker runs the ingestion of one uploaded file. Jobs are enqueued with a single
// attempt: a failed ingestion is recorded on the job and never retried.
type FileIngestionWorker struct {
	river.WorkerDefaults[models.FileIngestionArgs]

	ingester fileIngester
	timeout  time.Duration
}

func NewFileIngestionWorker(ingester fileIngester, timeout time.Duration) *FileIngestionWorker {
	return &FileIngestionWorker{
		ingester: ingester,
		timeout:  timeout,
	}
}

// An unset timeout means none. River disables the timeout on negative durations.
func (w *FileIngestionWorker) Timeout(job *river.Job[models.FileIngestionArgs]) time.Duration {
	if w.timeout <= 0 {
		return -1
	}
	return w.timeout
}

func (w *FileIngestionWorker) Work(ctx context.Context, job *river.Job[models.FileIngestionArgs]) error {
	_, err := w.ingester.Ingest(ctx, job.Args.JobId)
	return err
}
