package utils

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
)

// LogAndReportSentryError logs the error with its stack and sends it to sentry, through the hub
// of the request or job when there is one. Cancellations are only logged.
func LogAndReportSentryError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	logger := LoggerFromContext(ctx)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		logger.WarnContext(ctx, fmt.Sprintf("deadline exceeded or context canceled: %v", err))
		return
	}
	logger.ErrorContext(ctx, fmt.Sprintf("%+v", err))

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
}
