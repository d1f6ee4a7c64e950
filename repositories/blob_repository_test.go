package repositories

import (
	"context"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "gocloud.dev/blob/memblob"

	"github.com/offerlookup/offer-backend/models"
)

func TestBlobRepository_lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewBlobRepository()
	bucketUrl := "mem://ingestion"

	w, err := repo.OpenStream(ctx, bucketUrl, "pending/job/offers.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("address,city\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, repo.MoveFile(ctx, bucketUrl, "pending/job/offers.csv", "processed/job/offers.csv"))

	_, err = repo.GetBlob(ctx, bucketUrl, "pending/job/offers.csv")
	assert.True(t, errors.Is(err, models.NotFoundError))

	blob, err := repo.GetBlob(ctx, bucketUrl, "processed/job/offers.csv")
	require.NoError(t, err)
	content, err := io.ReadAll(blob.ReadCloser)
	require.NoError(t, err)
	require.NoError(t, blob.ReadCloser.Close())
	assert.Equal(t, "address,city\n", string(content))

	require.NoError(t, repo.DeleteFile(ctx, bucketUrl, "processed/job/offers.csv"))
	// deleting twice is not an error
	require.NoError(t, repo.DeleteFile(ctx, bucketUrl, "processed/job/offers.csv"))
}
