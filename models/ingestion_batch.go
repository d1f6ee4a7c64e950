package models

import "time"

// RawRow maps a header to the cell value of one data row, as read from the file.
type RawRow map[string]string

type MappedRecord struct {
	Record       PropertyRecord
	OfferCoerced bool
}

type BatchStats struct {
	New     int
	Updated int
	Error   int
	Coerced int
	Total   int
}

func (s BatchStats) Add(other BatchStats) BatchStats {
	return BatchStats{
		New:     s.New + other.New,
		Updated: s.Updated + other.Updated,
		Error:   s.Error + other.Error,
		Coerced: s.Coerced + other.Coerced,
		Total:   s.Total + other.Total,
	}
}

// FailedBatchStats is what a batch reports when its transaction could not commit: every row is an error.
func FailedBatchStats(size int) BatchStats {
	return BatchStats{Error: size, Total: size}
}

type ProgressEvent struct {
	JobId      string
	Status     IngestionJobStatus
	Progress   IngestionProgress
	Final      bool
	OccurredAt time.Time
}

func (e ProgressEvent) ProgressPercentage() float64 {
	return IngestionJob{Progress: e.Progress}.ProgressPercentage()
}
