package repositories

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/offerlookup/offer-backend/repositories/dbmodels"
)

// Liveness checks that the database answers and that the ingestion tables are migrated.
func (repo *OfferDbRepository) Liveness(ctx context.Context, exec Executor) error {
	query, args, err := NewQueryBuilder().
		Select("1").
		From(dbmodels.TABLE_INGESTION_JOBS).
		Limit(1).
		ToSql()
	if err != nil {
		return err
	}

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "database liveness check failed")
	}
	rows.Close()
	return rows.Err()
}
