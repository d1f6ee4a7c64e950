package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/utils"
)

const (
	IngestionQueue = "ingestion"
	// a failed ingestion is final, the user uploads the file again
	nbAttemptsFileIngestion = 1
)

type TaskQueueRepository interface {
	EnqueueFileIngestionTask(ctx context.Context, tx Transaction, jobId string) error
}

type riverRepository struct {
	client *river.Client[pgx.Tx]
}

func NewTaskQueueRepository(client *river.Client[pgx.Tx]) TaskQueueRepository {
	return riverRepository{client: client}
}

func (r riverRepository) EnqueueFileIngestionTask(ctx context.Context, tx Transaction, jobId string) error {
	res, err := r.client.InsertTx(ctx, tx.RawTx(), models.FileIngestionArgs{
		JobId: jobId,
	}, &river.InsertOpts{
		MaxAttempts: nbAttemptsFileIngestion,
		Queue:       IngestionQueue,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		return err
	}

	logger := utils.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Enqueued file ingestion task", "ingestion_job_id", jobId, "river_job_id", res.Job.ID)
	return nil
}
