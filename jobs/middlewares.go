package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/offerlookup/offer-backend/utils"
)

const (
	sentryErrorGroupingTime = 30 * time.Second
	sdkIdentifier           = "sentry.go.river.offers"
)

// Logger middleware

type LoggerMiddleware struct {
	l              *slog.Logger
	errorCount     map[string]int
	errorCountLock *sync.Mutex
	groupingTime   time.Duration
}

func (m LoggerMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	logger := m.l.With(
		"river_job_id", job.ID,
		"job_kind", job.Kind,
		"job_attempt", job.Attempt,
		"created_at", job.CreatedAt,
		"queue", job.Queue,
	)
	start := time.Now()
	logger.InfoContext(ctx, fmt.Sprintf("Starting %s job n°%d - attempt %d", job.Kind, job.ID, job.Attempt))

	ctx = utils.StoreLoggerInContext(ctx, logger)
	err := doInner(ctx)
	var snoozeErr *river.JobSnoozeError
	if err != nil && errors.As(err, &snoozeErr) {
		logger.InfoContext(ctx, fmt.Sprintf("%s job n°%d snoozed after %s", job.Kind, job.ID, time.Since(start)))
		return err
	} else if err != nil {
		logger.ErrorContext(ctx, fmt.Sprintf("%s job n°%d failed after %s", job.Kind, job.ID, time.Since(start)),
			"error", err.Error())
		m.aggregateAndLogError(ctx, job, err)
		return err
	}

	logger.InfoContext(ctx, fmt.Sprintf("%s job n°%d succeeded after %s", job.Kind, job.ID, time.Since(start)))
	return nil
}

// Identical errors of the same job kind are reported once per grouping window, with their count.
func (m LoggerMiddleware) aggregateAndLogError(ctx context.Context, job *rivertype.JobRow, err error) {
	m.errorCountLock.Lock()
	defer m.errorCountLock.Unlock()

	errorKey := fmt.Sprintf("%s:%s", job.Kind, err.Error())
	m.errorCount[errorKey]++

	if m.errorCount[errorKey] == 1 {
		ctx = context.WithoutCancel(ctx)
		go func() {
			time.Sleep(m.groupingTime)
			m.errorCountLock.Lock()
			count := m.errorCount[errorKey]
			delete(m.errorCount, errorKey)
			m.errorCountLock.Unlock()

			reported := err
			if count > 1 {
				reported = errors.WithDetailf(err, "occurred %d times in %s", count, m.groupingTime)
			}
			utils.LogAndReportSentryError(ctx, reported)
		}()
	}
}

func (m LoggerMiddleware) pendingErrorCount(errorKey string) int {
	m.errorCountLock.Lock()
	defer m.errorCountLock.Unlock()
	return m.errorCount[errorKey]
}

// IsMiddleware marks LoggerMiddleware as a river middleware.
func (m LoggerMiddleware) IsMiddleware() bool { return true }

func NewLoggerMiddleware(l *slog.Logger) LoggerMiddleware {
	return LoggerMiddleware{
		l:              l,
		errorCount:     make(map[string]int),
		errorCountLock: &sync.Mutex{},
		groupingTime:   sentryErrorGroupingTime,
	}
}

// Recovered middleware

type RecovererMiddleware struct{}

func (m RecovererMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("panic in %s job n°%d: %v", job.Kind, job.ID, r)
		}
	}()
	return doInner(ctx)
}

// IsMiddleware marks RecovererMiddleware as a river middleware.
func (m RecovererMiddleware) IsMiddleware() bool { return true }

func NewRecoveredMiddleware() RecovererMiddleware {
	return RecovererMiddleware{}
}

// Sentry middleware

type SentryMiddleware struct{}

func (m SentryMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
		ctx = sentry.SetHubOnContext(ctx, hub)
	}

	if client := hub.Client(); client != nil {
		client.SetSDKIdentifier(sdkIdentifier)
	}

	scope := hub.PushScope()
	defer hub.PopScope()
	scope.SetTag("river_job_id", strconv.FormatInt(job.ID, 10))
	scope.SetTag("job_kind", job.Kind)
	scope.SetTag("job_attempt", strconv.Itoa(job.Attempt))
	scope.SetTag("queue", job.Queue)
	var args map[string]any
	if err := json.Unmarshal(job.EncodedArgs, &args); err != nil {
		scope.SetTag("payload", "error decoding payload")
	} else {
		scope.SetExtra("payload", args)
	}

	transaction := sentry.StartTransaction(ctx,
		job.Kind,
		sentry.WithOpName("river.task"),
		sentry.WithTransactionSource(sentry.SourceTask),
	)
	defer transaction.Finish()

	err := doInner(transaction.Context())
	if err != nil {
		transaction.Status = sentry.SpanStatusInternalError
	} else {
		transaction.Status = sentry.SpanStatusOK
	}
	return err
}

// IsMiddleware marks SentryMiddleware as a river middleware.
func (m SentryMiddleware) IsMiddleware() bool { return true }

func NewSentryMiddleware() SentryMiddleware {
	return SentryMiddleware{}
}
