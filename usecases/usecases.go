package usecases

import (
	"github.com/offerlookup/offer-backend/infra"
	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/repositories/clock"
	"github.com/offerlookup/offer-backend/usecases/executor_factory"
	"github.com/offerlookup/offer-backend/usecases/ingestion"
	"github.com/offerlookup/offer-backend/usecases/progress"
)

type Usecases struct {
	Repositories    repositories.Repositories
	apiVersion      string
	ingestionConfig infra.IngestionConfig
	columnAliases   ingestion.ColumnAliases
	notifier        *progress.Notifier
	clock           clock.Clock
}

type Option func(*options)

func WithApiVersion(apiVersion string) Option {
	return func(o *options) {
		o.apiVersion = apiVersion
	}
}

func WithIngestionConfig(config infra.IngestionConfig) Option {
	return func(o *options) {
		o.ingestionConfig = config
	}
}

func WithColumnAliases(aliases ingestion.ColumnAliases) Option {
	return func(o *options) {
		o.columnAliases = aliases
	}
}

// WithProgressNotifier shares a notifier between the http server and an in process worker.
func WithProgressNotifier(notifier *progress.Notifier) Option {
	return func(o *options) {
		o.notifier = notifier
	}
}

func WithClock(clock clock.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

type options struct {
	apiVersion      string
	ingestionConfig infra.IngestionConfig
	columnAliases   ingestion.ColumnAliases
	notifier        *progress.Notifier
	clock           clock.Clock
}

func newUsecasesWithOptions(repositories repositories.Repositories, o *options) Usecases {
	if o.columnAliases == nil {
		o.columnAliases = ingestion.DefaultColumnAliases()
	}
	if o.notifier == nil {
		o.notifier = progress.NewNotifier()
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	return Usecases{
		Repositories:    repositories,
		apiVersion:      o.apiVersion,
		ingestionConfig: o.ingestionConfig.Normalize(),
		columnAliases:   o.columnAliases,
		notifier:        o.notifier,
		clock:           o.clock,
	}
}

func NewUsecases(repositories repositories.Repositories, opts ...Option) Usecases {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return newUsecasesWithOptions(repositories, o)
}

func (usecases *Usecases) NewExecutorFactory() executor_factory.ExecutorFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases *Usecases) NewTransactionFactory() executor_factory.TransactionFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases *Usecases) ProgressNotifier() *progress.Notifier {
	return usecases.notifier
}

func (usecases *Usecases) ApiVersion() string {
	return usecases.apiVersion
}

func (usecases *Usecases) NewLivenessUsecase() LivenessUsecase {
	return LivenessUsecase{
		executorFactory:    usecases.NewExecutorFactory(),
		livenessRepository: usecases.Repositories.OfferDbRepository,
	}
}

func (usecases *Usecases) NewJobTracker() ingestion.JobTracker {
	return ingestion.NewJobTracker(
		usecases.NewExecutorFactory(),
		usecases.Repositories.OfferDbRepository,
		usecases.clock,
	)
}

func (usecases *Usecases) NewBatchExecutor() ingestion.BatchExecutor {
	return ingestion.NewBatchExecutor(
		usecases.NewTransactionFactory(),
		ingestion.NewRecordMapper(usecases.columnAliases, usecases.clock),
		ingestion.NewUpsertResolver(
			usecases.Repositories.OfferDbRepository,
			usecases.ingestionConfig.CaseInsensitiveAddressMatch,
		),
	)
}

func (usecases *Usecases) NewStreamIngestor() ingestion.StreamIngestor {
	return ingestion.NewStreamIngestor(
		usecases.NewExecutorFactory(),
		usecases.NewJobTracker(),
		usecases.NewBatchExecutor(),
		usecases.Repositories.OfferDbRepository,
		usecases.Repositories.BlobRepository,
		usecases.notifier,
		usecases.clock,
		usecases.ingestionConfig.BucketUrl,
		usecases.ingestionConfig.BatchSize,
	)
}

func (usecases *Usecases) NewFileIngestionWorker() *ingestion.FileIngestionWorker {
	return ingestion.NewFileIngestionWorker(usecases.NewStreamIngestor(), usecases.ingestionConfig.JobTimeout)
}
