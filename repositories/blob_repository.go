package repositories

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	"github.com/offerlookup/offer-backend/models"
)

type BlobRepository interface {
	GetBlob(ctx context.Context, bucketUrl, fileName string) (models.Blob, error)
	OpenStream(ctx context.Context, bucketUrl, fileName string) (io.WriteCloser, error)
	DeleteFile(ctx context.Context, bucketUrl, fileName string) error
	MoveFile(ctx context.Context, bucketUrl, source, destination string) error
}

type blobRepository struct {
	buckets map[string]*blob.Bucket
	m       sync.Mutex
}

func NewBlobRepository() BlobRepository {
	return &blobRepository{
		buckets: make(map[string]*blob.Bucket),
	}
}

func (repository *blobRepository) openBlobBucket(ctx context.Context, bucketUrl string) (*blob.Bucket, error) {
	repository.m.Lock()
	defer repository.m.Unlock()

	if bucket, ok := repository.buckets[bucketUrl]; ok {
		return bucket, nil
	}

	bucket, err := blob.OpenBucket(ctx, bucketUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketUrl)
	}

	ok, err := bucket.IsAccessible(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check bucket accessibility %s", bucketUrl)
	} else if !ok {
		return nil, errors.Newf("bucket %s is not accessible", bucketUrl)
	}

	repository.buckets[bucketUrl] = bucket
	return bucket, nil
}

func (repository *blobRepository) GetBlob(ctx context.Context, bucketUrl, fileName string) (models.Blob, error) {
	bucket, err := repository.openBlobBucket(ctx, bucketUrl)
	if err != nil {
		return models.Blob{}, err
	}

	reader, err := bucket.NewReader(ctx, fileName, nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return models.Blob{}, errors.Wrapf(
			models.NotFoundError,
			"file %s does not exist in bucket %s", fileName, bucketUrl,
		)
	} else if err != nil {
		return models.Blob{}, errors.Wrapf(err, "failed to read object %s/%s", bucketUrl, fileName)
	}

	return models.Blob{FileName: fileName, ReadCloser: reader}, nil
}

func (repository *blobRepository) OpenStream(ctx context.Context, bucketUrl, fileName string) (io.WriteCloser, error) {
	bucket, err := repository.openBlobBucket(ctx, bucketUrl)
	if err != nil {
		return nil, err
	}

	return bucket.NewWriter(ctx, fileName, &blob.WriterOptions{
		ContentDisposition: fmt.Sprintf("attachment; filename=\"%s\"", fileName),
	})
}

func (repository *blobRepository) DeleteFile(ctx context.Context, bucketUrl, fileName string) error {
	bucket, err := repository.openBlobBucket(ctx, bucketUrl)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err = bucket.Delete(ctx, fileName)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (repository *blobRepository) MoveFile(ctx context.Context, bucketUrl, source, destination string) error {
	bucket, err := repository.openBlobBucket(ctx, bucketUrl)
	if err != nil {
		return err
	}

	if err := bucket.Copy(ctx, destination, source, nil); err != nil {
		return errors.Wrapf(err, "failed to copy %s to %s", source, destination)
	}
	if err := bucket.Delete(ctx, source); err != nil {
		return errors.Wrapf(err, "failed to delete %s after copy", source)
	}
	return nil
}
