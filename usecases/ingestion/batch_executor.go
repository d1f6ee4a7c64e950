package ingestion

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/usecases/executor_factory"
	"github.com/offerlookup/offer-backend/utils"
)

var errRecordWithoutAddress = errors.New("record has no property address")

// concurrent jobs touching the same properties may deadlock, the loser replays its batch
const batchTransactionAttempts = 3

type recordResolver interface {
	Resolve(ctx context.Context, exec repositories.Executor, record models.PropertyRecord) (ResolveOutcome, error)
}

type savepointFunc func(ctx context.Context, tx repositories.Transaction, fn func(tx repositories.Transaction) error) error

// BatchExecutor resolves a batch of rows in a single transaction. Every record runs in its own
// savepoint: a failing record is counted as an error and rolled back alone, the others are committed.
type BatchExecutor struct {
	transactionFactory executor_factory.TransactionFactory
	mapper             RecordMapper
	resolver           recordResolver
	withSavepoint      savepointFunc
}

func NewBatchExecutor(
	transactionFactory executor_factory.TransactionFactory,
	mapper RecordMapper,
	resolver recordResolver,
) BatchExecutor {
	return BatchExecutor{
		transactionFactory: transactionFactory,
		mapper:             mapper,
		resolver:           resolver,
		withSavepoint:      repositories.WithSavepoint,
	}
}

// RunBatch returns the outcome counts of the batch. If the transaction itself fails, nothing is
// committed and every row is reported as an error alongside the returned error.
func (b BatchExecutor) RunBatch(ctx context.Context, rows []models.RawRow) (models.BatchStats, error) {
	var stats models.BatchStats
	err := retry.Do(
		func() error {
			var err error
			stats, err = b.runBatchTransaction(ctx, rows)
			return err
		},
		retry.Attempts(batchTransactionAttempts),
		retry.LastErrorOnly(true),
		retry.Delay(50*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.RetryIf(repositories.IsRetryableError),
		retry.OnRetry(func(n uint, err error) {
			utils.LoggerFromContext(ctx).InfoContext(ctx, "replaying ingestion batch after a transient database error",
				"attempt", n+1, "error", err.Error())
		}),
	)
	if err != nil {
		return models.FailedBatchStats(len(rows)), errors.Wrap(err, "ingestion batch transaction failed")
	}
	return stats, nil
}

func (b BatchExecutor) runBatchTransaction(ctx context.Context, rows []models.RawRow) (models.BatchStats, error) {
	logger := utils.LoggerFromContext(ctx)

	var stats models.BatchStats
	err := b.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		stats = models.BatchStats{Total: len(rows)}
		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}

			mapped := b.mapper.MapRow(row)
			if mapped.Record.PropertyAddress == "" {
				stats.Error++
				logger.DebugContext(ctx, "skipping record", "row_index", i, "error", errRecordWithoutAddress.Error())
				continue
			}

			var outcome ResolveOutcome
			err := b.withSavepoint(ctx, tx, func(sp repositories.Transaction) error {
				var err error
				outcome, err = b.resolver.Resolve(ctx, sp, mapped.Record)
				return err
			})
			if repositories.IsRetryableError(err) {
				// the batch transaction is aborted and replayed as a whole
				return err
			}
			if err != nil {
				stats.Error++
				logger.DebugContext(ctx, "could not resolve record", "row_index", i, "error", err.Error())
				continue
			}

			if outcome.Created {
				stats.New++
			} else {
				stats.Updated++
			}
			if mapped.OfferCoerced {
				stats.Coerced++
			}
		}
		return nil
	})
	return stats, err
}
