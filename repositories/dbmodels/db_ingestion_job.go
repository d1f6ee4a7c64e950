package dbmodels

import (
	"time"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/utils"
)

type DBIngestionJob struct {
	Id             string     `db:"id"`
	UserId         string     `db:"user_id"`
	FileName       string     `db:"filename"`
	FileType       string     `db:"file_type"`
	Status         string     `db:"status"`
	TotalRecords   int        `db:"total_records"`
	NewRecords     int        `db:"new_records"`
	UpdatedRecords int        `db:"updated_records"`
	ErrorRecords   int        `db:"error_records"`
	CoercedRecords int        `db:"coerced_records"`
	ErrorMessage   *string    `db:"error_message"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	CompletedAt    *time.Time `db:"completed_at"`
}

const TABLE_INGESTION_JOBS = "ingestion_jobs"

var SelectIngestionJobColumn = utils.ColumnList[DBIngestionJob]()

func AdaptIngestionJob(db DBIngestionJob) (models.IngestionJob, error) {
	return models.IngestionJob{
		Id:       db.Id,
		UserId:   models.UserId(db.UserId),
		FileName: db.FileName,
		FileType: models.FileTypeFrom(db.FileType),
		Status:   models.IngestionJobStatusFrom(db.Status),
		Progress: models.IngestionProgress{
			Total:   db.TotalRecords,
			New:     db.NewRecords,
			Updated: db.UpdatedRecords,
			Error:   db.ErrorRecords,
			Coerced: db.CoercedRecords,
		},
		ErrorMsg:    db.ErrorMessage,
		CreatedAt:   db.CreatedAt,
		UpdatedAt:   db.UpdatedAt,
		CompletedAt: db.CompletedAt,
	}, nil
}
