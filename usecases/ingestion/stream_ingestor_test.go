package ingestion

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "gocloud.dev/blob/memblob"

	"github.com/offerlookup/offer-backend/mocks"
	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/repositories/clock"
	"github.com/offerlookup/offer-backend/usecases/progress"
)

const offersHeader = "propertyAddress,propertyCity,propertyState,propertyZip,offerAmount,ownerFirstName"

type ingestionFixture struct {
	t          *testing.T
	ctx        context.Context
	properties *memoryPropertyStore
	jobs       *memoryJobRepository
	activity   *memoryActivityLog
	blobs      repositories.BlobRepository
	notifier   *progress.Notifier
	bucketUrl  string
	batchSize  int
}

func newIngestionFixture(t *testing.T, batchSize int) *ingestionFixture {
	return &ingestionFixture{
		t:          t,
		ctx:        context.Background(),
		properties: newMemoryPropertyStore(),
		jobs:       newMemoryJobRepository(),
		activity:   &memoryActivityLog{},
		blobs:      repositories.NewBlobRepository(),
		notifier:   progress.NewNotifier(),
		bucketUrl:  "mem://ingestion",
		batchSize:  batchSize,
	}
}

func (f *ingestionFixture) ingestor() StreamIngestor {
	exec := new(mocks.Transaction)
	executorFactory := new(mocks.ExecutorFactory)
	executorFactory.On("NewExecutor").Return(exec)
	clk := clock.NewMock(testNow)

	batchExecutor := NewBatchExecutor(f.properties, NewRecordMapper(nil, clk), NewUpsertResolver(f.properties, false))
	batchExecutor.withSavepoint = f.properties.savepoint

	return NewStreamIngestor(
		executorFactory,
		NewJobTracker(executorFactory, f.jobs, clk),
		batchExecutor,
		f.activity,
		f.blobs,
		f.notifier,
		clk,
		f.bucketUrl,
		f.batchSize,
	)
}

func (f *ingestionFixture) upload(fileType models.FileType, content string) models.IngestionJob {
	f.t.Helper()
	input := models.CreateIngestionJobInput{
		Id:       uuid.NewString(),
		UserId:   "user-1",
		FileName: "offers." + string(fileType),
		FileType: fileType,
	}
	require.NoError(f.t, f.jobs.CreateIngestionJob(f.ctx, nil, input))
	job := f.jobs.get(input.Id)

	w, err := f.blobs.OpenStream(f.ctx, f.bucketUrl, job.PendingFilePath())
	require.NoError(f.t, err)
	_, err = w.Write([]byte(content))
	require.NoError(f.t, err)
	require.NoError(f.t, w.Close())
	return job
}

func (f *ingestionFixture) fileExists(path string) bool {
	blob, err := f.blobs.GetBlob(f.ctx, f.bucketUrl, path)
	if err != nil {
		return false
	}
	blob.ReadCloser.Close()
	return true
}

func csvOf(lines ...string) string {
	return strings.Join(append([]string{offersHeader}, lines...), "\n") + "\n"
}

// distinctRows returns n rows with distinct addresses and valid offers.
func distinctRows(n int) []string {
	lines := make([]string, 0, n)
	for i := range n {
		lines = append(lines, fmt.Sprintf("%d Main St,Austin,TX,78701,%d,Jane", i+1, 1000+i))
	}
	return lines
}

func assertConservation(t *testing.T, counters models.IngestionProgress) {
	t.Helper()
	assert.Equal(t, counters.Total, counters.New+counters.Updated+counters.Error)
}

func TestIngest_duplicateAddressAndUnparsableOffer(t *testing.T) {
	f := newIngestionFixture(t, 500)
	job := f.upload(models.FileTypeCsv, csvOf(
		"12 Main St,Austin,TX,78701,1000,Jane",
		"12  Main St ,Austin,tx,78701-1234,1500,Jane",
		"4 Oak Ave,Dallas,TX,75201,N/A,Bob",
	))

	counters, err := f.ingestor().Ingest(f.ctx, job.Id)
	require.NoError(t, err)

	assert.Equal(t, models.IngestionProgress{Total: 3, New: 2, Updated: 1, Error: 0, Coerced: 1}, counters)
	assertConservation(t, counters)

	stored := f.properties.all()
	require.Len(t, stored, 2)
	assert.Equal(t, models.PropertyTuple{Address: "12 Main St", City: "Austin", State: "TX", Zip: "78701"}, stored[0].Tuple())
	assert.Equal(t, 1500.0, stored[0].OfferAmount)
	assert.Equal(t, 0.0, stored[1].OfferAmount)

	saved := f.jobs.get(job.Id)
	assert.Equal(t, models.JobCompleted, saved.Status)
	assert.Equal(t, counters, saved.Progress)
	require.NotNil(t, saved.CompletedAt)
	assert.Equal(t, 100.0, saved.ProgressPercentage())

	assert.False(t, f.fileExists(job.PendingFilePath()))
	assert.True(t, f.fileExists(job.ProcessedFilePath()))
	assert.Equal(t, []models.ActivityAction{
		models.ActivityIngestionStarted,
		models.ActivityIngestionCompleted,
	}, f.activity.actions())
}

func TestIngest_reimportIsIdempotent(t *testing.T) {
	f := newIngestionFixture(t, 2)
	content := csvOf(distinctRows(5)...)

	first, err := f.ingestor().Ingest(f.ctx, f.upload(models.FileTypeCsv, content).Id)
	require.NoError(t, err)
	assert.Equal(t, 5, first.New)
	before := f.properties.all()

	second, err := f.ingestor().Ingest(f.ctx, f.upload(models.FileTypeCsv, content).Id)
	require.NoError(t, err)

	assert.Equal(t, models.IngestionProgress{Total: 5, Updated: 5}, second)
	assert.Equal(t, before, f.properties.all())
}

func TestIngest_cancelledBetweenBatches(t *testing.T) {
	f := newIngestionFixture(t, 2)
	job := f.upload(models.FileTypeCsv, csvOf(distinctRows(10)...))
	f.jobs.afterProgress = func(writes int) {
		if writes == 2 {
			f.jobs.setStatus(job.Id, models.JobCancelled)
		}
	}
	events := f.notifier.Subscribe(job.Id)

	counters, err := f.ingestor().Ingest(f.ctx, job.Id)
	require.NoError(t, err)

	assert.Equal(t, models.IngestionProgress{Total: 4, New: 4}, counters)
	assert.Len(t, f.properties.all(), 4)
	saved := f.jobs.get(job.Id)
	assert.Equal(t, models.JobCancelled, saved.Status)
	assert.Equal(t, counters, saved.Progress)
	assert.False(t, f.fileExists(job.PendingFilePath()))

	var last models.ProgressEvent
	for event := range events.Events() {
		last = event
	}
	assert.True(t, last.Final)
	assert.Equal(t, models.JobCancelled, last.Status)
	assert.Equal(t, 0, f.notifier.SubscriberCount(job.Id))
}

func TestIngest_failedBatchMidFileIsSkipped(t *testing.T) {
	f := newIngestionFixture(t, 2)
	// rows 3 and 4 are resolved in the second transaction
	f.properties.failingCommits[2] = true
	job := f.upload(models.FileTypeCsv, csvOf(distinctRows(5)...))

	counters, err := f.ingestor().Ingest(f.ctx, job.Id)
	require.NoError(t, err)

	assert.Equal(t, models.IngestionProgress{Total: 5, New: 3, Error: 2}, counters)
	assertConservation(t, counters)
	addresses := make([]string, 0)
	for _, record := range f.properties.all() {
		addresses = append(addresses, record.PropertyAddress)
	}
	// nothing of the failed batch was committed
	assert.Equal(t, []string{"1 Main St", "2 Main St", "5 Main St"}, addresses)
	assert.Equal(t, models.JobCompleted, f.jobs.get(job.Id).Status)
}

func TestIngest_failedFinalBatchFailsTheJob(t *testing.T) {
	f := newIngestionFixture(t, 2)
	f.properties.failingCommits[3] = true
	job := f.upload(models.FileTypeCsv, csvOf(distinctRows(5)...))
	events := f.notifier.Subscribe(job.Id)

	counters, err := f.ingestor().Ingest(f.ctx, job.Id)
	require.Error(t, err)

	assert.Equal(t, models.IngestionProgress{Total: 5, New: 4, Error: 1}, counters)
	saved := f.jobs.get(job.Id)
	assert.Equal(t, models.JobFailed, saved.Status)
	require.NotNil(t, saved.ErrorMsg)
	assert.Contains(t, *saved.ErrorMsg, "could not commit transaction")
	require.NotNil(t, saved.CompletedAt)
	assert.False(t, f.fileExists(job.PendingFilePath()))
	assert.False(t, f.fileExists(job.ProcessedFilePath()))
	assert.Equal(t, []models.ActivityAction{
		models.ActivityIngestionStarted,
		models.ActivityIngestionFailed,
	}, f.activity.actions())

	var last models.ProgressEvent
	for event := range events.Events() {
		last = event
	}
	assert.Equal(t, models.JobFailed, last.Status)
}

func TestIngest_rowErrorsAreCounted(t *testing.T) {
	f := newIngestionFixture(t, 10)
	f.properties.failingAddresses["2 Main St"] = true
	job := f.upload(models.FileTypeCsv, csvOf(append(distinctRows(3), ",Austin,TX,78701,100,Jane")...))

	counters, err := f.ingestor().Ingest(f.ctx, job.Id)
	require.NoError(t, err)

	assert.Equal(t, models.IngestionProgress{Total: 4, New: 2, Error: 2}, counters)
	assertConservation(t, counters)
	assert.Len(t, f.properties.all(), 2)
}

func TestIngest_emptyFileCompletes(t *testing.T) {
	f := newIngestionFixture(t, 10)
	job := f.upload(models.FileTypeCsv, csvOf())

	counters, err := f.ingestor().Ingest(f.ctx, job.Id)
	require.NoError(t, err)

	assert.Equal(t, models.IngestionProgress{}, counters)
	assert.Equal(t, models.JobCompleted, f.jobs.get(job.Id).Status)
	assert.Equal(t, 0.0, f.jobs.get(job.Id).ProgressPercentage())
}

func TestIngest_missingHeaderFailsTheJob(t *testing.T) {
	f := newIngestionFixture(t, 10)
	job := f.upload(models.FileTypeCsv, "")

	_, err := f.ingestor().Ingest(f.ctx, job.Id)
	assert.ErrorIs(t, err, models.ErrMissingHeader)
	assert.Equal(t, models.JobFailed, f.jobs.get(job.Id).Status)
	assert.Empty(t, f.properties.all())
}

func TestIngest_missingFileFailsTheJob(t *testing.T) {
	f := newIngestionFixture(t, 10)
	input := models.CreateIngestionJobInput{Id: uuid.NewString(), UserId: "user-1", FileName: "gone.csv", FileType: models.FileTypeCsv}
	require.NoError(t, f.jobs.CreateIngestionJob(f.ctx, nil, input))

	_, err := f.ingestor().Ingest(f.ctx, input.Id)
	assert.ErrorIs(t, err, models.NotFoundError)
	assert.Equal(t, models.JobFailed, f.jobs.get(input.Id).Status)
}

func TestIngest_skipsJobThatIsNotPending(t *testing.T) {
	f := newIngestionFixture(t, 10)
	job := f.upload(models.FileTypeCsv, csvOf(distinctRows(3)...))
	f.jobs.setStatus(job.Id, models.JobCancelled)

	counters, err := f.ingestor().Ingest(f.ctx, job.Id)
	require.NoError(t, err)

	assert.Equal(t, models.IngestionProgress{}, counters)
	assert.Empty(t, f.properties.all())
	assert.Equal(t, models.JobCancelled, f.jobs.get(job.Id).Status)
	assert.False(t, f.fileExists(job.PendingFilePath()))
	assert.Empty(t, f.activity.actions())
}

func TestIngest_spreadsheet(t *testing.T) {
	f := newIngestionFixture(t, 2)
	workbook := buildWorkbook(t,
		[]any{"Property Address", "City", "State", "Zip", "Offer"},
		[]any{"12 Main St", "Austin", "TX", 78701, 1000},
		[]any{"12 Main St", "Austin", "TX", "78701", 1200},
		[]any{"4 Oak Ave", "Dallas", "TX", "75201", "unknown"},
	)
	job := f.upload(models.FileTypeXlsx, workbook.String())

	counters, err := f.ingestor().Ingest(f.ctx, job.Id)
	require.NoError(t, err)

	assert.Equal(t, models.IngestionProgress{Total: 3, New: 2, Updated: 1, Coerced: 1}, counters)
	stored := f.properties.all()
	require.Len(t, stored, 2)
	assert.Equal(t, 1200.0, stored[0].OfferAmount)
}

func TestIngestionRun_nextBatch(t *testing.T) {
	reader, err := NewRowReader(models.FileTypeCsv, strings.NewReader(csvOf(distinctRows(5)...)))
	require.NoError(t, err)
	run := &ingestionRun{reader: reader, batchSize: 2}

	sizes := make([]int, 0)
	lastFlags := make([]bool, 0)
	for {
		rows, last, err := run.nextBatch()
		require.NoError(t, err)
		sizes = append(sizes, len(rows))
		lastFlags = append(lastFlags, last)
		if last {
			break
		}
	}
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, []bool{false, false, true}, lastFlags)
}

func TestIngestionRun_nextBatchExactMultiple(t *testing.T) {
	reader, err := NewRowReader(models.FileTypeCsv, strings.NewReader(csvOf(distinctRows(4)...)))
	require.NoError(t, err)
	run := &ingestionRun{reader: reader, batchSize: 2}

	rows, last, err := run.nextBatch()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.False(t, last)

	rows, last, err = run.nextBatch()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.True(t, last)
}
