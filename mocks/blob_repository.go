package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/offerlookup/offer-backend/models"
)

type BlobRepository struct {
	mock.Mock
}

func (m *BlobRepository) GetBlob(ctx context.Context, bucketUrl, fileName string) (models.Blob, error) {
	args := m.Called(ctx, bucketUrl, fileName)
	return args.Get(0).(models.Blob), args.Error(1)
}

func (m *BlobRepository) OpenStream(ctx context.Context, bucketUrl, fileName string) (io.WriteCloser, error) {
	args := m.Called(ctx, bucketUrl, fileName)
	if writer, ok := args.Get(0).(io.WriteCloser); ok {
		return writer, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BlobRepository) DeleteFile(ctx context.Context, bucketUrl, fileName string) error {
	args := m.Called(ctx, bucketUrl, fileName)
	return args.Error(0)
}

func (m *BlobRepository) MoveFile(ctx context.Context, bucketUrl, source, destination string) error {
	args := m.Called(ctx, bucketUrl, source, destination)
	return args.Error(0)
}
