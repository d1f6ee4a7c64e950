package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/pure_utils"
	"github.com/offerlookup/offer-backend/repositories/dbmodels"
)

type IngestionJobRepository interface {
	CreateIngestionJob(ctx context.Context, exec Executor, input models.CreateIngestionJobInput) error
	GetIngestionJobById(ctx context.Context, exec Executor, id string) (models.IngestionJob, error)
	// UpdateIngestionJobStatus only updates the job if its current status allows the transition. It returns
	// nil if the job was not updated.
	UpdateIngestionJobStatus(
		ctx context.Context,
		exec Executor,
		input models.UpdateIngestionJobStatusInput,
	) (*models.IngestionJob, error)
	UpdateIngestionJobProgress(ctx context.Context, exec Executor, id string, progress models.IngestionProgress) error
	ListIngestionJobsOfUser(ctx context.Context, exec Executor, userId models.UserId, limit int) ([]models.IngestionJob, error)
}

func (repo *OfferDbRepository) CreateIngestionJob(
	ctx context.Context,
	exec Executor,
	input models.CreateIngestionJobInput,
) error {
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_INGESTION_JOBS).
			Columns(
				"id",
				"user_id",
				"filename",
				"file_type",
				"status",
			).
			Values(
				input.Id,
				input.UserId,
				input.FileName,
				input.FileType,
				models.JobPending,
			),
	)
	if IsUniqueViolationError(err) {
		return errors.Wrapf(models.ConflictError, "ingestion job %s already exists", input.Id)
	}
	return err
}

func (repo *OfferDbRepository) GetIngestionJobById(ctx context.Context, exec Executor, id string) (models.IngestionJob, error) {
	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectIngestionJobColumn...).
			From(dbmodels.TABLE_INGESTION_JOBS).
			Where(squirrel.Eq{"id": id}),
		dbmodels.AdaptIngestionJob,
	)
}

func (repo *OfferDbRepository) UpdateIngestionJobStatus(
	ctx context.Context,
	exec Executor,
	input models.UpdateIngestionJobStatusInput,
) (*models.IngestionJob, error) {
	allowed := pure_utils.Map(input.AllowedPreviousStatuses(), func(s models.IngestionJobStatus) string {
		return string(s)
	})
	if len(allowed) == 0 {
		return nil, errors.Wrapf(models.ErrInvalidJobStatusTransition, "no transition leads to status %s", input.Status)
	}

	query := NewQueryBuilder().
		Update(dbmodels.TABLE_INGESTION_JOBS).
		Set("status", input.Status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": input.Id}).
		Where(squirrel.Eq{"status": allowed}).
		Suffix("RETURNING " + strings.Join(dbmodels.SelectIngestionJobColumn, ", "))

	if input.ErrorMessage != nil {
		query = query.Set("error_message", *input.ErrorMessage)
	}
	if input.CompletedAt != nil {
		query = query.Set("completed_at", *input.CompletedAt)
	}

	return SqlToOptionalModel(ctx, exec, query, dbmodels.AdaptIngestionJob)
}

// Counters are absolute snapshots. GREATEST keeps them non decreasing if an older snapshot lands late.
func (repo *OfferDbRepository) UpdateIngestionJobProgress(
	ctx context.Context,
	exec Executor,
	id string,
	progress models.IngestionProgress,
) error {
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_INGESTION_JOBS).
			Set("total_records", squirrel.Expr("GREATEST(total_records, ?)", progress.Total)).
			Set("new_records", squirrel.Expr("GREATEST(new_records, ?)", progress.New)).
			Set("updated_records", squirrel.Expr("GREATEST(updated_records, ?)", progress.Updated)).
			Set("error_records", squirrel.Expr("GREATEST(error_records, ?)", progress.Error)).
			Set("coerced_records", squirrel.Expr("GREATEST(coerced_records, ?)", progress.Coerced)).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": id}),
	)
	return err
}

func (repo *OfferDbRepository) ListIngestionJobsOfUser(
	ctx context.Context,
	exec Executor,
	userId models.UserId,
	limit int,
) ([]models.IngestionJob, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectIngestionJobColumn...).
			From(dbmodels.TABLE_INGESTION_JOBS).
			Where(squirrel.Eq{"user_id": userId}).
			OrderBy("created_at DESC").
			Limit(uint64(limit)),
		dbmodels.AdaptIngestionJob,
	)
}
