package ingestion

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/offerlookup/offer-backend/mocks"
	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/repositories"
)

// memoryPropertyStore is a property table with transactions and savepoints: a failed
// transaction or savepoint restores the records as they were when it began.
type memoryPropertyStore struct {
	mu      sync.Mutex
	records []models.PropertyRecord
	nextId  int

	transactions     int
	failingCommits   map[int]bool
	failingAddresses map[string]bool
}

func newMemoryPropertyStore() *memoryPropertyStore {
	return &memoryPropertyStore{
		failingCommits:   map[int]bool{},
		failingAddresses: map[string]bool{},
	}
}

func (s *memoryPropertyStore) snapshot() []models.PropertyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

func (s *memoryPropertyStore) restore(records []models.PropertyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
}

func (s *memoryPropertyStore) Transaction(ctx context.Context, fn func(tx repositories.Transaction) error) error {
	s.mu.Lock()
	s.transactions++
	number := s.transactions
	s.mu.Unlock()

	before := s.snapshot()
	err := fn(new(mocks.Transaction))
	if err == nil && s.failingCommits[number] {
		err = errors.New("could not commit transaction")
	}
	if err != nil {
		s.restore(before)
	}
	return err
}

func (s *memoryPropertyStore) savepoint(
	ctx context.Context,
	tx repositories.Transaction,
	fn func(tx repositories.Transaction) error,
) error {
	before := s.snapshot()
	err := fn(tx)
	if err != nil {
		s.restore(before)
	}
	return err
}

func tupleMatches(a, b models.PropertyTuple, caseInsensitive bool) bool {
	if !caseInsensitive {
		return a == b
	}
	return strings.EqualFold(a.Address, b.Address) && strings.EqualFold(a.City, b.City) &&
		strings.EqualFold(a.State, b.State) && a.Zip == b.Zip
}

func (s *memoryPropertyStore) FindPropertyByTupleForUpdate(
	ctx context.Context,
	exec repositories.Executor,
	tuple models.PropertyTuple,
	caseInsensitive bool,
) (*models.PropertyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if tupleMatches(record.Tuple(), tuple, caseInsensitive) {
			found := record
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memoryPropertyStore) InsertPropertyIfAbsent(
	ctx context.Context,
	exec repositories.Executor,
	record models.PropertyRecord,
) (*models.PropertyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failingAddresses[record.PropertyAddress] {
		return nil, errors.Newf("could not insert %s", record.PropertyAddress)
	}
	for _, existing := range s.records {
		if existing.Tuple() == record.Tuple() {
			return nil, nil
		}
	}
	s.nextId++
	record.Id = fmt.Sprintf("property-%d", s.nextId)
	s.records = append(s.records, record)
	return &record, nil
}

func (s *memoryPropertyStore) UpdatePropertyOffer(
	ctx context.Context,
	exec repositories.Executor,
	id string,
	offerAmount float64,
	updatedAt time.Time,
) (models.PropertyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].Id == id {
			s.records[i].OfferAmount = offerAmount
			s.records[i].UpdatedAt = updatedAt
			return s.records[i], nil
		}
	}
	return models.PropertyRecord{}, errors.Wrapf(models.NotFoundError, "property %s", id)
}

func (s *memoryPropertyStore) all() []models.PropertyRecord {
	return s.snapshot()
}

// memoryJobRepository applies the same conditional status transitions as the sql repository.
type memoryJobRepository struct {
	mu             sync.Mutex
	jobs           map[string]models.IngestionJob
	progressWrites int
	// called after every progress write, outside of the lock
	afterProgress func(writes int)
}

func newMemoryJobRepository() *memoryJobRepository {
	return &memoryJobRepository{jobs: map[string]models.IngestionJob{}}
}

func (r *memoryJobRepository) CreateIngestionJob(
	ctx context.Context,
	exec repositories.Executor,
	input models.CreateIngestionJobInput,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[input.Id]; ok {
		return errors.Wrapf(models.ConflictError, "job %s", input.Id)
	}
	r.jobs[input.Id] = models.IngestionJob{
		Id:        input.Id,
		UserId:    input.UserId,
		FileName:  input.FileName,
		FileType:  input.FileType,
		Status:    models.JobPending,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	return nil
}

func (r *memoryJobRepository) GetIngestionJobById(ctx context.Context, exec repositories.Executor, id string) (models.IngestionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return models.IngestionJob{}, errors.Wrapf(models.NotFoundError, "job %s", id)
	}
	return job, nil
}

func (r *memoryJobRepository) UpdateIngestionJobStatus(
	ctx context.Context,
	exec repositories.Executor,
	input models.UpdateIngestionJobStatusInput,
) (*models.IngestionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[input.Id]
	if !ok || !input.Status.CanTransitionFrom(job.Status) {
		return nil, nil
	}
	job.Status = input.Status
	if input.ErrorMessage != nil {
		job.ErrorMsg = input.ErrorMessage
	}
	if input.CompletedAt != nil {
		job.CompletedAt = input.CompletedAt
	}
	r.jobs[input.Id] = job
	return &job, nil
}

func (r *memoryJobRepository) UpdateIngestionJobProgress(
	ctx context.Context,
	exec repositories.Executor,
	id string,
	progress models.IngestionProgress,
) error {
	r.mu.Lock()
	job, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return errors.Wrapf(models.NotFoundError, "job %s", id)
	}
	job.Progress = models.IngestionProgress{
		Total:   max(job.Progress.Total, progress.Total),
		New:     max(job.Progress.New, progress.New),
		Updated: max(job.Progress.Updated, progress.Updated),
		Error:   max(job.Progress.Error, progress.Error),
		Coerced: max(job.Progress.Coerced, progress.Coerced),
	}
	r.jobs[id] = job
	r.progressWrites++
	writes := r.progressWrites
	r.mu.Unlock()

	if r.afterProgress != nil {
		r.afterProgress(writes)
	}
	return nil
}

func (r *memoryJobRepository) ListIngestionJobsOfUser(
	ctx context.Context,
	exec repositories.Executor,
	userId models.UserId,
	limit int,
) ([]models.IngestionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var jobs []models.IngestionJob
	for _, job := range r.jobs {
		if job.UserId == userId {
			jobs = append(jobs, job)
		}
	}
	return jobs[:min(limit, len(jobs))], nil
}

func (r *memoryJobRepository) setStatus(id string, status models.IngestionJobStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.jobs[id]
	job.Status = status
	r.jobs[id] = job
}

func (r *memoryJobRepository) get(id string) models.IngestionJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id]
}

type memoryActivityLog struct {
	mu      sync.Mutex
	entries []models.CreateActivityLogInput
}

func (l *memoryActivityLog) CreateActivityLog(
	ctx context.Context,
	exec repositories.Executor,
	input models.CreateActivityLogInput,
) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, input)
	return nil
}

func (l *memoryActivityLog) actions() []models.ActivityAction {
	l.mu.Lock()
	defer l.mu.Unlock()
	actions := make([]models.ActivityAction, 0, len(l.entries))
	for _, entry := range l.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}
