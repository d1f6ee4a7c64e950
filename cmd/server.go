package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"golang.org/x/sync/errgroup"

	"github.com/offerlookup/offer-backend/api"
	"github.com/offerlookup/offer-backend/infra"
	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/usecases"
	"github.com/offerlookup/offer-backend/utils"
)

// RunServer serves the http api. With withWorker, the ingestion workers run in the same process and
// progress events reach the event streams without going through the database.
func RunServer(config CompiledConfig, withWorker bool) error {
	ingestionConfig := ingestionConfigFromEnv()
	apiConfig := api.Configuration{
		Env:                 utils.GetEnv("ENV", "development"),
		AppName:             "offer-backend",
		AppVersion:          config.Version,
		Port:                utils.GetRequiredEnv[string]("PORT"),
		RequestLoggingLevel: utils.GetEnv("REQUEST_LOGGING_LEVEL", "info"),
		CorsAllowedOrigins:  utils.GetEnv("CORS_ALLOWED_ORIGINS", ""),
		DefaultTimeout:      time.Duration(utils.GetEnv("DEFAULT_TIMEOUT_SECOND", 5)) * time.Second,
		UploadMaxSizeBytes:  ingestionConfig.UploadMaxSizeBytes(),
		EnablePrometheus:    utils.GetEnv("ENABLE_PROMETHEUS", false),
	}
	pgConfig := pgConfigFromEnv()
	amqpConfig := amqpConfigFromEnv()
	serverConfig := struct {
		jwtSigningKey string
		loggingFormat string
		sentryDsn     string
	}{
		jwtSigningKey: utils.GetRequiredEnv[string]("AUTHENTICATION_JWT_SIGNING_KEY"),
		loggingFormat: utils.GetEnv("LOGGING_FORMAT", "text"),
		sentryDsn:     utils.GetEnv("SENTRY_DSN", ""),
	}

	logger := utils.NewLogger(serverConfig.loggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	infra.SetupSentry(serverConfig.sentryDsn, apiConfig.Env, config.Version)
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

	var (
		riverClient *river.Client[pgx.Tx]
		workers     *river.Workers
	)
	if withWorker {
		riverClient, workers, err = newWorkingRiverClient(pool, logger, ingestionConfig)
	} else {
		riverClient, err = newInsertOnlyRiverClient(pool)
	}
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	var publisher repositories.ProgressEventPublisher
	if withWorker {
		publisher = connectProgressPublisher(ctx, amqpConfig)
	}
	repos := repositories.NewRepositories(pool,
		repositories.WithRiverClient(riverClient),
		repositories.WithProgressEventPublisher(publisher),
	)
	uc := usecases.NewUsecases(repos,
		usecases.WithApiVersion(config.Version),
		usecases.WithIngestionConfig(ingestionConfig),
		usecases.WithColumnAliases(aliases),
	)

	auth := api.NewAuthentication(repositories.NewJwtRepository(serverConfig.jwtSigningKey))
	router := api.InitRouterMiddlewares(ctx, apiConfig)
	server := api.NewServer(router, apiConfig, uc, auth)

	stopCtx, sigintOrTerm, stop := stopOnSignal(ctx)
	defer stop()

	group, groupCtx := errgroup.WithContext(stopCtx)

	group.Go(func() error {
		logger.InfoContext(ctx, "starting server", slog.String("port", apiConfig.Port))
		err := server.ListenAndServe()
		logger.InfoContext(ctx, "server returned")
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "Error while serving the app")
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return errors.Wrap(server.Shutdown(shutdownCtx), "Error while shutting down the server")
	})

	if withWorker {
		registerWorkers(workers, uc)
		if err := riverClient.Start(ctx); err != nil {
			utils.LogAndReportSentryError(ctx, errors.Wrap(err, "could not start the task queue"))
			stop()
			_ = group.Wait()
			return err
		}

		group.Go(func() error {
			forwardProgressEvents(groupCtx, uc.ProgressNotifier(), publisher)
			return nil
		})
		group.Go(func() error {
			return cleanStop(groupCtx, sigintOrTerm, riverClient)
		})
	}

	if err := group.Wait(); err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	return nil
}
