package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"

	"github.com/offerlookup/offer-backend/models"
)

type ingesterStub struct {
	jobIds []string
	err    error
}

func (i *ingesterStub) Ingest(ctx context.Context, jobId string) (models.IngestionProgress, error) {
	i.jobIds = append(i.jobIds, jobId)
	return models.IngestionProgress{}, i.err
}

func riverJob(jobId string) *river.Job[models.FileIngestionArgs] {
	return &river.Job[models.FileIngestionArgs]{
		JobRow: &rivertype.JobRow{ID: 1, Kind: models.FileIngestionArgs{}.Kind()},
		Args:   models.FileIngestionArgs{JobId: jobId},
	}
}

func TestFileIngestionWorker_Work(t *testing.T) {
	ingester := &ingesterStub{}
	worker := NewFileIngestionWorker(ingester, 0)

	err := worker.Work(context.Background(), riverJob("job-1"))

	assert.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, ingester.jobIds)
}

func TestFileIngestionWorker_returnsIngestionError(t *testing.T) {
	ingester := &ingesterStub{err: errors.New("malformed csv file")}
	worker := NewFileIngestionWorker(ingester, 0)

	err := worker.Work(context.Background(), riverJob("job-1"))

	assert.EqualError(t, err, "malformed csv file")
}

func TestFileIngestionWorker_Timeout(t *testing.T) {
	assert.Equal(t, time.Duration(-1), NewFileIngestionWorker(&ingesterStub{}, 0).Timeout(riverJob("job-1")))
	assert.Equal(t, time.Hour, NewFileIngestionWorker(&ingesterStub{}, time.Hour).Timeout(riverJob("job-1")))
}
