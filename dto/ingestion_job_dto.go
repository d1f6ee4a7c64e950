package dto

import (
	"math"
	"time"

	"github.com/guregu/null/v5"

	"github.com/offerlookup/offer-backend/models"
)

type UploadAccepted struct {
	JobId string `json:"jobId"`
}

type IngestionJob struct {
	Id             string      `json:"id"`
	UserId         string      `json:"userId"`
	FileName       string      `json:"fileName"`
	FileType       string      `json:"fileType"`
	Status         string      `json:"status"`
	Progress       float64     `json:"progress"`
	TotalRecords   int         `json:"totalRecords"`
	NewRecords     int         `json:"newRecords"`
	UpdatedRecords int         `json:"updatedRecords"`
	ErrorRecords   int         `json:"errorRecords"`
	CoercedRecords int         `json:"coercedRecords"`
	ErrorMessage   null.String `json:"errorMessage"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
	CompletedAt    null.Time   `json:"completedAt"`
	// seconds between creation and completion
	Duration null.Float `json:"duration"`
}

func AdaptIngestionJobDto(job models.IngestionJob) IngestionJob {
	out := IngestionJob{
		Id:             job.Id,
		UserId:         string(job.UserId),
		FileName:       job.FileName,
		FileType:       string(job.FileType),
		Status:         string(job.Status),
		Progress:       roundPercentage(job.ProgressPercentage()),
		TotalRecords:   job.Progress.Total,
		NewRecords:     job.Progress.New,
		UpdatedRecords: job.Progress.Updated,
		ErrorRecords:   job.Progress.Error,
		CoercedRecords: job.Progress.Coerced,
		ErrorMessage:   null.StringFromPtr(job.ErrorMsg),
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
		CompletedAt:    null.TimeFromPtr(job.CompletedAt),
	}
	if duration, ok := job.ProcessingDuration(); ok {
		out.Duration = null.FloatFrom(duration)
	}
	return out
}

type ProgressEvent struct {
	JobId          string    `json:"jobId"`
	Status         string    `json:"status"`
	Progress       float64   `json:"progress"`
	TotalRecords   int       `json:"totalRecords"`
	NewRecords     int       `json:"newRecords"`
	UpdatedRecords int       `json:"updatedRecords"`
	ErrorRecords   int       `json:"errorRecords"`
	CoercedRecords int       `json:"coercedRecords"`
	Final          bool      `json:"final"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func AdaptProgressEventDto(event models.ProgressEvent) ProgressEvent {
	return ProgressEvent{
		JobId:          event.JobId,
		Status:         string(event.Status),
		Progress:       roundPercentage(event.ProgressPercentage()),
		TotalRecords:   event.Progress.Total,
		NewRecords:     event.Progress.New,
		UpdatedRecords: event.Progress.Updated,
		ErrorRecords:   event.Progress.Error,
		CoercedRecords: event.Progress.Coerced,
		Final:          event.Final,
		OccurredAt:     event.OccurredAt,
	}
}

// ProgressEventFromJob is the event sent to a late subscriber, built from the stored job.
func ProgressEventFromJob(job models.IngestionJob) ProgressEvent {
	return AdaptProgressEventDto(models.ProgressEvent{
		JobId:      job.Id,
		Status:     job.Status,
		Progress:   job.Progress,
		Final:      job.Status.IsTerminal(),
		OccurredAt: job.UpdatedAt,
	})
}

func roundPercentage(p float64) float64 {
	return math.Round(p*100) / 100
}

type ListJobsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}
