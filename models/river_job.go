package models

// ingest one uploaded file, job row created in the same transaction
type FileIngestionArgs struct {
	JobId string `json:"job_id"`
}

func (FileIngestionArgs) Kind() string { return "file_ingestion" }
