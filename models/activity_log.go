package models

import (
	"time"
)

type ActivityAction string

const (
	ActivityIngestionStarted   ActivityAction = "ingestion_started"
	ActivityIngestionCompleted ActivityAction = "ingestion_completed"
	ActivityIngestionFailed    ActivityAction = "ingestion_failed"
	ActivityIngestionCancelled ActivityAction = "ingestion_cancelled"
)

const ActivityEntityIngestionJob = "ingestion_job"

type ActivityLog struct {
	Id         string
	UserId     UserId
	Action     ActivityAction
	EntityType string
	EntityId   string
	Details    map[string]any
	CreatedAt  time.Time
}

type CreateActivityLogInput struct {
	UserId     UserId
	Action     ActivityAction
	EntityType string
	EntityId   string
	Details    map[string]any
}
