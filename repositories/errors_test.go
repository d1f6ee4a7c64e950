package repositories

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	unique := errors.Wrap(&pgconn.PgError{Code: pgerrcode.UniqueViolation}, "insert property")
	deadlock := &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
	other := errors.New("boom")

	assert.True(t, IsUniqueViolationError(unique))
	assert.False(t, IsUniqueViolationError(deadlock))
	assert.True(t, IsDeadlockError(deadlock))
	assert.True(t, IsRetryableError(deadlock))
	assert.False(t, IsRetryableError(unique))
	assert.False(t, IsRetryableError(other))
}
