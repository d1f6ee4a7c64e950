package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories/dbmodels"
)

type PropertyRepository interface {
	FindPropertyByTupleForUpdate(
		ctx context.Context,
		exec Executor,
		tuple models.PropertyTuple,
		caseInsensitive bool,
	) (*models.PropertyRecord, error)
	// InsertPropertyIfAbsent returns nil when a record with the same address tuple already exists
	InsertPropertyIfAbsent(ctx context.Context, exec Executor, record models.PropertyRecord) (*models.PropertyRecord, error)
	UpdatePropertyOffer(
		ctx context.Context,
		exec Executor,
		id string,
		offerAmount float64,
		updatedAt time.Time,
	) (models.PropertyRecord, error)
	SearchProperties(ctx context.Context, exec Executor, search models.PropertySearch) ([]models.PropertyRecord, error)
}

func tupleFilter(tuple models.PropertyTuple, caseInsensitive bool) squirrel.Sqlizer {
	if !caseInsensitive {
		return squirrel.Eq{
			"property_address": tuple.Address,
			"property_city":    tuple.City,
			"property_state":   tuple.State,
			"property_zip":     tuple.Zip,
		}
	}
	return squirrel.And{
		squirrel.Expr("lower(property_address) = lower(?)", tuple.Address),
		squirrel.Expr("lower(property_city) = lower(?)", tuple.City),
		squirrel.Eq{"property_state": tuple.State},
		squirrel.Eq{"property_zip": tuple.Zip},
	}
}

func (repo *OfferDbRepository) FindPropertyByTupleForUpdate(
	ctx context.Context,
	exec Executor,
	tuple models.PropertyTuple,
	caseInsensitive bool,
) (*models.PropertyRecord, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectPropertyColumn...).
		From(dbmodels.TABLE_PROPERTIES).
		Where(tupleFilter(tuple, caseInsensitive)).
		OrderBy("created_at").
		Limit(1).
		Suffix("FOR UPDATE")

	return SqlToOptionalModel(ctx, exec, query, dbmodels.AdaptProperty)
}

func (repo *OfferDbRepository) InsertPropertyIfAbsent(
	ctx context.Context,
	exec Executor,
	record models.PropertyRecord,
) (*models.PropertyRecord, error) {
	query := NewQueryBuilder().
		Insert(dbmodels.TABLE_PROPERTIES).
		Columns(dbmodels.SelectPropertyColumn...).
		Values(
			record.Id,
			record.OwnerFirstName,
			record.OwnerLastName,
			record.PropertyAddress,
			record.PropertyCity,
			record.PropertyState,
			record.PropertyZip,
			record.OfferAmount,
			record.CreatedAt,
			record.UpdatedAt,
		).
		Suffix(fmt.Sprintf(
			"ON CONFLICT (%s) DO NOTHING RETURNING %s",
			strings.Join(dbmodels.PropertyTupleColumns, ", "),
			strings.Join(dbmodels.SelectPropertyColumn, ", "),
		))

	return SqlToOptionalModel(ctx, exec, query, dbmodels.AdaptProperty)
}

func (repo *OfferDbRepository) UpdatePropertyOffer(
	ctx context.Context,
	exec Executor,
	id string,
	offerAmount float64,
	updatedAt time.Time,
) (models.PropertyRecord, error) {
	query := NewQueryBuilder().
		Update(dbmodels.TABLE_PROPERTIES).
		Set("offer_amount", offerAmount).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(dbmodels.SelectPropertyColumn, ", "))

	property, err := SqlToModel(ctx, exec, query, dbmodels.AdaptProperty)
	if err != nil {
		return models.PropertyRecord{}, errors.Wrapf(err, "could not update offer of property %s", id)
	}
	return property, nil
}

func (repo *OfferDbRepository) SearchProperties(
	ctx context.Context,
	exec Executor,
	search models.PropertySearch,
) ([]models.PropertyRecord, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectPropertyColumn...).
		From(dbmodels.TABLE_PROPERTIES).
		OrderBy("id").
		Limit(uint64(search.Limit))

	filters := search.Filters
	if filters.Zip != "" {
		query = query.Where(squirrel.Eq{"property_zip": filters.Zip})
	}
	if filters.State != "" {
		query = query.Where(squirrel.Eq{"property_state": filters.State})
	}
	if filters.City != "" {
		query = query.Where(squirrel.Expr("lower(property_city) = lower(?)", filters.City))
	}
	if filters.AddressPrefix != "" {
		query = query.Where(squirrel.ILike{"property_address": escapeLikePattern(filters.AddressPrefix) + "%"})
	}
	if search.OffsetId != "" {
		query = query.Where(squirrel.Gt{"id": search.OffsetId})
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptProperty)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}
