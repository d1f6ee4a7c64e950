package repositories

import (
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolationError(err error) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgxErr.Code == pgerrcode.UniqueViolation
}

func IsDeadlockError(err error) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgxErr.Code == pgerrcode.DeadlockDetected
}

func IsSerializationFailureError(err error) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgxErr.Code == pgerrcode.SerializationFailure
}

// IsRetryableError reports transient postgres errors after which the whole transaction can be replayed
func IsRetryableError(err error) bool {
	return IsDeadlockError(err) || IsSerializationFailureError(err)
}
