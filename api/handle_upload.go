package api

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/offerlookup/offer-backend/dto"
	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/pure_utils"
	"github.com/offerlookup/offer-backend/usecases"
	"github.com/offerlookup/offer-backend/utils"
)

const (
	sseKeepAliveInterval = 15 * time.Second
	ssePollInterval      = 2 * time.Second
)

type FileForm struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
}

type JobInput struct {
	Id string `uri:"jobId" binding:"required,uuid"`
}

// bind errors are client errors, the cause is kept for the validation details
func badParameter(err error) error {
	return errors.Mark(err, models.BadParameterError)
}

func handleUploadFile(uc usecases.Usecases, maxUploadBytes int64) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if c.Request.ContentLength > maxUploadBytes {
			presentError(ctx, c, errors.Wrapf(models.ErrFileTooLarge,
				"request is %d bytes, the limit is %d bytes", c.Request.ContentLength, maxUploadBytes))
			return
		}

		var form FileForm
		err := c.ShouldBind(&form)
		if c.IsAborted() {
			// the size limiter already answered
			return
		}
		if err != nil {
			presentError(ctx, c, badParameter(err))
			return
		}

		file, err := form.File.Open()
		if presentError(ctx, c, err) {
			return
		}
		defer file.Close()

		usecase := usecasesWithCreds(ctx, uc).NewUploadUsecase()
		job, err := usecase.UploadFile(ctx, models.UploadFileInput{
			FileName: form.File.Filename,
			Size:     form.File.Size,
			Content:  file,
		})
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusAccepted, dto.UploadAccepted{JobId: job.Id})
	}
}

func handleGetUploadJob(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var input JobInput
		if err := c.ShouldBindUri(&input); err != nil {
			presentError(ctx, c, badParameter(err))
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewUploadUsecase()
		job, err := usecase.GetJob(ctx, input.Id)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, dto.AdaptIngestionJobDto(job))
	}
}

func handleListUploadJobs(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var query dto.ListJobsQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentError(ctx, c, badParameter(err))
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewUploadUsecase()
		jobs, err := usecase.ListJobs(ctx, query.Limit)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"jobs": pure_utils.Map(jobs, dto.AdaptIngestionJobDto)})
	}
}

func handleCancelUploadJob(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var input JobInput
		if err := c.ShouldBindUri(&input); err != nil {
			presentError(ctx, c, badParameter(err))
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewUploadUsecase()
		job, err := usecase.CancelJob(ctx, input.Id)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, dto.AdaptIngestionJobDto(job))
	}
}

// handleUploadJobEvents streams the progress of a job as server sent events, starting with its
// current state, until its final event or until the client goes away.
func handleUploadJobEvents(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var input JobInput
		if err := c.ShouldBindUri(&input); err != nil {
			presentError(ctx, c, badParameter(err))
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewUploadUsecase()
		job, sub, err := usecase.SubscribeToJob(ctx, input.Id)
		if presentError(ctx, c, err) {
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)

		c.SSEvent("progress", dto.ProgressEventFromJob(job))
		c.Writer.Flush()
		if sub == nil {
			return
		}
		defer sub.Unsubscribe()

		ticker := time.NewTicker(sseKeepAliveInterval)
		defer ticker.Stop()
		// workers running in another process only report through the job row
		poll := time.NewTicker(ssePollInterval)
		defer poll.Stop()
		lastUpdate := job.UpdatedAt

		for {
			select {
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				c.SSEvent("progress", dto.AdaptProgressEventDto(event))
				c.Writer.Flush()
				if event.Final {
					return
				}
				lastUpdate = event.OccurredAt
			case <-poll.C:
				current, err := usecase.GetJob(ctx, input.Id)
				if err != nil {
					utils.LoggerFromContext(ctx).WarnContext(ctx, "could not read the job of a progress stream",
						"job_id", input.Id, "error", err.Error())
					continue
				}
				if !current.UpdatedAt.After(lastUpdate) {
					continue
				}
				lastUpdate = current.UpdatedAt
				c.SSEvent("progress", dto.ProgressEventFromJob(current))
				c.Writer.Flush()
				if current.Status.IsTerminal() {
					return
				}
			case <-ticker.C:
				if _, err := c.Writer.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				c.Writer.Flush()
			case <-ctx.Done():
				utils.LoggerFromContext(ctx).DebugContext(ctx, "progress stream client disconnected", "job_id", input.Id)
				return
			}
		}
	}
}
