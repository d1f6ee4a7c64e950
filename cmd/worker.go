package cmd

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"

	"github.com/offerlookup/offer-backend/infra"
	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/usecases"
	"github.com/offerlookup/offer-backend/utils"
)

// RunTaskQueue runs the ingestion workers without the http api.
func RunTaskQueue(config CompiledConfig) error {
	pgConfig := pgConfigFromEnv()
	ingestionConfig := ingestionConfigFromEnv()
	amqpConfig := amqpConfigFromEnv()
	workerConfig := struct {
		env           string
		loggingFormat string
		sentryDsn     string
	}{
		env:           utils.GetEnv("ENV", "development"),
		loggingFormat: utils.GetEnv("LOGGING_FORMAT", "text"),
		sentryDsn:     utils.GetEnv("SENTRY_DSN", ""),
	}

	logger := utils.NewLogger(workerConfig.loggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	infra.SetupSentry(workerConfig.sentryDsn, workerConfig.env, config.Version)
	defer sentry.Flush(3 * time.Second)

	aliases, err := columnAliases(ingestionConfig)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	pool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(), pgConfig.MaxPoolConnections)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	defer pool.Close()

	riverClient, workers, err := newWorkingRiverClient(pool, logger, ingestionConfig)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	publisher := connectProgressPublisher(ctx, amqpConfig)
	repos := repositories.NewRepositories(pool,
		repositories.WithRiverClient(riverClient),
		repositories.WithProgressEventPublisher(publisher),
	)
	uc := usecases.NewUsecases(repos,
		usecases.WithApiVersion(config.Version),
		usecases.WithIngestionConfig(ingestionConfig),
		usecases.WithColumnAliases(aliases),
	)
	registerWorkers(workers, uc)

	// river cancels running jobs when its start context is done, so it runs on ctx
	stopCtx, sigintOrTerm, stop := stopOnSignal(ctx)
	defer stop()

	go forwardProgressEvents(stopCtx, uc.ProgressNotifier(), publisher)

	if err := riverClient.Start(ctx); err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrap(err, "could not start the task queue"))
		return err
	}
	logger.InfoContext(ctx, "ingestion workers started",
		"max_workers", ingestionConfig.MaxWorkers,
		"batch_size", ingestionConfig.BatchSize)

	return cleanStop(stopCtx, sigintOrTerm, riverClient)
}
