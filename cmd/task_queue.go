package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/offerlookup/offer-backend/infra"
	"github.com/offerlookup/offer-backend/jobs"
	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/usecases"
	"github.com/offerlookup/offer-backend/usecases/progress"
	"github.com/offerlookup/offer-backend/utils"
)

// newInsertOnlyRiverClient is enough to enqueue tasks from the api.
func newInsertOnlyRiverClient(pool *pgxpool.Pool) (*river.Client[pgx.Tx], error) {
	return river.NewClient(riverpgxv5.New(pool), &river.Config{})
}

// newWorkingRiverClient runs the ingestion queue. Workers are registered on the returned
// registry once the usecases exist.
func newWorkingRiverClient(
	pool *pgxpool.Pool,
	logger *slog.Logger,
	config infra.IngestionConfig,
) (*river.Client[pgx.Tx], *river.Workers, error) {
	workers := river.NewWorkers()
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		FetchPollInterval: 100 * time.Millisecond,
		Queues: map[string]river.QueueConfig{
			repositories.IngestionQueue: {MaxWorkers: config.MaxWorkers},
		},
		// Must be larger than the time it takes to process a job, or a live ingestion is run twice.
		RescueStuckJobsAfter: max(config.JobTimeout, time.Hour),
		WorkerMiddleware: []rivertype.WorkerMiddleware{
			jobs.NewSentryMiddleware(),
			jobs.NewLoggerMiddleware(logger),
			jobs.NewRecoveredMiddleware(),
		},
		Workers: workers,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not create the river client")
	}
	return client, workers, nil
}

func registerWorkers(workers *river.Workers, uc usecases.Usecases) {
	river.AddWorker(workers, uc.NewFileIngestionWorker())
}

// connectProgressPublisher returns nil when no broker is configured.
func connectProgressPublisher(ctx context.Context, config infra.AmqpConfig) repositories.ProgressEventPublisher {
	if !config.Enabled() {
		return nil
	}
	publisher, err := repositories.NewAmqpProgressPublisher(config.Url, config.ProgressExchange)
	if err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrap(err, "progress events will not be forwarded to the broker"))
		return nil
	}
	return publisher
}

func forwardProgressEvents(ctx context.Context, notifier *progress.Notifier, publisher repositories.ProgressEventPublisher) {
	if publisher == nil {
		return
	}
	progress.Forward(ctx, notifier, publisher)
	if err := publisher.Close(); err != nil {
		utils.LoggerFromContext(ctx).WarnContext(ctx, "could not close the progress event publisher", "error", err.Error())
	}
}

// stopOnSignal returns a context cancelled on the first SIGINT/SIGTERM. Later signals are left on the
// returned channel for cleanStop.
func stopOnSignal(ctx context.Context) (context.Context, <-chan os.Signal, context.CancelFunc) {
	sigintOrTerm := make(chan os.Signal, 1)
	signal.Notify(sigintOrTerm, syscall.SIGINT, syscall.SIGTERM)

	stopCtx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-sigintOrTerm:
			cancel()
		case <-stopCtx.Done():
		}
	}()
	return stopCtx, sigintOrTerm, cancel
}

// This stop goroutine waits for the context to be done and when it is, tries to stop
// gracefully by allowing a chance for jobs to finish. But if that isn't
// working, a second SIGINT/SIGTERM will tell it to terminate with prejudice and
// it'll issue a hard stop that cancels the context of all active jobs.
func cleanStop(ctx context.Context, sigintOrTerm <-chan os.Signal, riverClient *river.Client[pgx.Tx]) error {
	logger := utils.LoggerFromContext(ctx)
	<-ctx.Done()
	stopCtx := context.WithoutCancel(ctx)
	logger.InfoContext(stopCtx, "Initiating soft stop (try to wait for jobs to finish)")

	softStopCtx, softStopCtxCancel := context.WithTimeout(stopCtx, 30*time.Second)
	defer softStopCtxCancel()

	go func() {
		select {
		case <-sigintOrTerm:
			logger.InfoContext(stopCtx, "Received SIGINT/SIGTERM again; initiating hard stop (cancel everything)")
			softStopCtxCancel()
		case <-softStopCtx.Done():
			logger.InfoContext(stopCtx, "Soft stop timeout; initiating hard stop (cancel everything)")
		}
	}()

	err := riverClient.Stop(softStopCtx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "soft stop failed")
	}
	if err == nil {
		logger.InfoContext(stopCtx, "Soft stop succeeded")
		return nil
	}

	hardStopCtx, hardStopCtxCancel := context.WithTimeout(stopCtx, 10*time.Second)
	defer hardStopCtxCancel()

	// A cancelled ingestion still records its terminal status, see the stream ingestor.
	err = riverClient.StopAndCancel(hardStopCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		logger.InfoContext(stopCtx, "Hard stop timeout; ignoring stop procedure and exiting unsafely")
		return nil
	}
	return err
}
