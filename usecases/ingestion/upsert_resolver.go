package ingestion

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories"
)

type propertyRepository interface {
	FindPropertyByTupleForUpdate(
		ctx context.Context,
		exec repositories.Executor,
		tuple models.PropertyTuple,
		caseInsensitive bool,
	) (*models.PropertyRecord, error)
	InsertPropertyIfAbsent(
		ctx context.Context,
		exec repositories.Executor,
		record models.PropertyRecord,
	) (*models.PropertyRecord, error)
	UpdatePropertyOffer(
		ctx context.Context,
		exec repositories.Executor,
		id string,
		offerAmount float64,
		updatedAt time.Time,
	) (models.PropertyRecord, error)
}

type ResolveOutcome struct {
	Record  models.PropertyRecord
	Created bool
	// Changed is true when a new record was inserted or the offer of the existing one was modified
	Changed bool
}

// UpsertResolver enforces that a single stored record exists per address tuple. The stored offer
// follows the last resolved record; owner names are only set at creation.
type UpsertResolver struct {
	repository      propertyRepository
	caseInsensitive bool
}

func NewUpsertResolver(repository propertyRepository, caseInsensitive bool) UpsertResolver {
	return UpsertResolver{repository: repository, caseInsensitive: caseInsensitive}
}

func (r UpsertResolver) Resolve(
	ctx context.Context,
	exec repositories.Executor,
	record models.PropertyRecord,
) (ResolveOutcome, error) {
	existing, err := r.repository.FindPropertyByTupleForUpdate(ctx, exec, record.Tuple(), r.caseInsensitive)
	if err != nil {
		return ResolveOutcome{}, errors.Wrap(err, "could not look up property by address")
	}

	if existing == nil {
		if record.Id == "" {
			record.Id = uuid.NewString()
		}
		inserted, err := r.repository.InsertPropertyIfAbsent(ctx, exec, record)
		if err != nil {
			return ResolveOutcome{}, errors.Wrap(err, "could not insert property")
		}
		if inserted != nil {
			return ResolveOutcome{Record: *inserted, Created: true, Changed: true}, nil
		}

		// a concurrent ingestion inserted the same tuple after our lookup, the row is now visible
		existing, err = r.repository.FindPropertyByTupleForUpdate(ctx, exec, record.Tuple(), r.caseInsensitive)
		if err != nil {
			return ResolveOutcome{}, errors.Wrap(err, "could not look up property after insert conflict")
		}
		if existing == nil {
			return ResolveOutcome{}, errors.Newf("property %v conflicted on insert but cannot be found", record.Tuple())
		}
	}

	if existing.OfferAmount == record.OfferAmount {
		return ResolveOutcome{Record: *existing}, nil
	}

	updated, err := r.repository.UpdatePropertyOffer(ctx, exec, existing.Id, record.OfferAmount, record.UpdatedAt)
	if err != nil {
		return ResolveOutcome{}, err
	}
	return ResolveOutcome{Record: updated, Changed: true}, nil
}
