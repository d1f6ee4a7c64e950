package repositories

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories/dbmodels"
)

type ActivityLogRepository interface {
	CreateActivityLog(ctx context.Context, exec Executor, input models.CreateActivityLogInput) error
}

func (repo *OfferDbRepository) CreateActivityLog(
	ctx context.Context,
	exec Executor,
	input models.CreateActivityLogInput,
) error {
	details, err := json.Marshal(input.Details)
	if err != nil {
		return errors.Wrap(err, "could not marshal activity log details")
	}

	_, err = ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_ACTIVITY_LOGS).
			Columns(
				"id",
				"user_id",
				"action",
				"entity_type",
				"entity_id",
				"details",
			).
			Values(
				uuid.NewString(),
				input.UserId,
				input.Action,
				input.EntityType,
				input.EntityId,
				details,
			),
	)
	return err
}
