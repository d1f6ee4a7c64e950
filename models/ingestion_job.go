package models

import (
	"io"
	"path"
	"slices"
	"time"
)

type IngestionJob struct {
	Id          string
	UserId      UserId
	FileName    string
	FileType    FileType
	Status      IngestionJobStatus
	Progress    IngestionProgress
	ErrorMsg    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// PendingFilePath is where the uploaded file waits for ingestion in the bucket.
func (j IngestionJob) PendingFilePath() string {
	return path.Join("pending", j.Id, j.FileName)
}

// ProcessedFilePath is where the file is kept once the job completed.
func (j IngestionJob) ProcessedFilePath() string {
	return path.Join("processed", j.Id, j.FileName)
}

// IngestionProgress holds the absolute counters of a job. They only grow while the job is
// processing and are snapshotted when it reaches a terminal status.
type IngestionProgress struct {
	Total   int
	New     int
	Updated int
	Error   int
	// Rows whose offer could not be parsed and was stored as 0. They are also counted as new or updated.
	Coerced int
}

func (p IngestionProgress) Add(stats BatchStats) IngestionProgress {
	return IngestionProgress{
		Total:   p.Total + stats.Total,
		New:     p.New + stats.New,
		Updated: p.Updated + stats.Updated,
		Error:   p.Error + stats.Error,
		Coerced: p.Coerced + stats.Coerced,
	}
}

func (p IngestionProgress) Processed() int {
	return p.New + p.Updated + p.Error
}

// ProgressPercentage is (new+updated+error)/total*100, or 0 when nothing was seen yet.
func (j IngestionJob) ProgressPercentage() float64 {
	if j.Progress.Total <= 0 {
		return 0
	}
	return float64(j.Progress.Processed()) / float64(j.Progress.Total) * 100
}

// ProcessingDuration returns completed_at - created_at in seconds, if the job is completed.
func (j IngestionJob) ProcessingDuration() (float64, bool) {
	if j.CompletedAt == nil {
		return 0, false
	}
	return j.CompletedAt.Sub(j.CreatedAt).Seconds(), true
}

type FileType string

const (
	FileTypeCsv  FileType = "csv"
	FileTypeXlsx FileType = "xlsx"
)

func FileTypeFrom(s string) FileType {
	switch s {
	case "csv":
		return FileTypeCsv
	case "xlsx", "xls":
		return FileTypeXlsx
	}
	return ""
}

type IngestionJobStatus string

const (
	JobPending    IngestionJobStatus = "pending"
	JobProcessing IngestionJobStatus = "processing"
	JobCompleted  IngestionJobStatus = "completed"
	JobFailed     IngestionJobStatus = "failed"
	JobCancelled  IngestionJobStatus = "cancelled"
)

func IngestionJobStatusFrom(s string) IngestionJobStatus {
	switch s {
	case "pending":
		return JobPending
	case "processing":
		return JobProcessing
	case "completed":
		return JobCompleted
	case "failed":
		return JobFailed
	case "cancelled":
		return JobCancelled
	}
	return JobPending
}

func (s IngestionJobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// AllowedPreviousStatuses lists the statuses a job may move to s from.
func (s IngestionJobStatus) AllowedPreviousStatuses() []IngestionJobStatus {
	switch s {
	case JobProcessing:
		return []IngestionJobStatus{JobPending}
	case JobCompleted, JobFailed:
		return []IngestionJobStatus{JobProcessing}
	case JobCancelled:
		return []IngestionJobStatus{JobPending, JobProcessing}
	}
	return nil
}

func (s IngestionJobStatus) CanTransitionFrom(previous IngestionJobStatus) bool {
	return slices.Contains(s.AllowedPreviousStatuses(), previous)
}

type CreateIngestionJobInput struct {
	Id       string
	UserId   UserId
	FileName string
	FileType FileType
}

type UpdateIngestionJobStatusInput struct {
	Id           string
	Status       IngestionJobStatus
	ErrorMessage *string
	CompletedAt  *time.Time
	// FromStatuses narrows the statuses the job may be moved from, when set
	FromStatuses []IngestionJobStatus
}

func (input UpdateIngestionJobStatusInput) AllowedPreviousStatuses() []IngestionJobStatus {
	allowed := input.Status.AllowedPreviousStatuses()
	if len(input.FromStatuses) == 0 {
		return allowed
	}
	return slices.DeleteFunc(slices.Clone(allowed), func(s IngestionJobStatus) bool {
		return !slices.Contains(input.FromStatuses, s)
	})
}

// JobCancellation is the outcome of a cancel request. PreviousStatus is the status the job was
// cancelled from, or its current status when it was already terminal.
type JobCancellation struct {
	Job            IngestionJob
	PreviousStatus IngestionJobStatus
	Cancelled      bool
}

type UploadFileInput struct {
	FileName string
	Size     int64
	Content  io.Reader
}
