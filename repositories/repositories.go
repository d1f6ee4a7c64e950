package repositories

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
)

type Repositories struct {
	ExecutorGetter         ExecutorGetter
	OfferDbRepository      *OfferDbRepository
	TaskQueueRepository    TaskQueueRepository
	BlobRepository         BlobRepository
	ProgressEventPublisher ProgressEventPublisher
}

type Option func(*options)

type options struct {
	riverClient            *river.Client[pgx.Tx]
	progressEventPublisher ProgressEventPublisher
	blobRepository         BlobRepository
}

func WithRiverClient(client *river.Client[pgx.Tx]) Option {
	return func(o *options) {
		o.riverClient = client
	}
}

func WithProgressEventPublisher(publisher ProgressEventPublisher) Option {
	return func(o *options) {
		o.progressEventPublisher = publisher
	}
}

func WithBlobRepository(blobRepository BlobRepository) Option {
	return func(o *options) {
		o.blobRepository = blobRepository
	}
}

func NewRepositories(pool *pgxpool.Pool, opts ...Option) Repositories {
	options := &options{}
	for _, opt := range opts {
		opt(options)
	}

	repositories := Repositories{
		ExecutorGetter:         NewExecutorGetter(pool),
		OfferDbRepository:      NewOfferDbRepository(),
		BlobRepository:         options.blobRepository,
		ProgressEventPublisher: options.progressEventPublisher,
	}
	if repositories.BlobRepository == nil {
		repositories.BlobRepository = NewBlobRepository()
	}
	if options.riverClient != nil {
		repositories.TaskQueueRepository = NewTaskQueueRepository(options.riverClient)
	}
	return repositories
}
