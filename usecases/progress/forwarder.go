package progress

import (
	"context"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/utils"
)

type progressEventPublisher interface {
	PublishProgressEvent(ctx context.Context, event models.ProgressEvent) error
}

// Forward publishes every event of the notifier to an external publisher until ctx is done.
// Publishing errors are logged and the event is skipped.
func Forward(ctx context.Context, notifier *Notifier, publisher progressEventPublisher) {
	logger := utils.LoggerFromContext(ctx)
	sub := notifier.SubscribeAll()
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := publisher.PublishProgressEvent(ctx, event); err != nil {
				logger.WarnContext(ctx, "could not forward ingestion progress event",
					"job_id", event.JobId, "error", err.Error())
			}
		}
	}
}
