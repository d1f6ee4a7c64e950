package api

import (
	"net/http"
	"time"

	limits "github.com/gin-contrib/size"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	timeout "github.com/vearne/gin-timeout"

	"github.com/offerlookup/offer-backend/usecases"
)

// multipart framing on top of the file itself
const multipartOverheadBytes = 1024 * 1024

func timeoutMiddleware(duration time.Duration) gin.HandlerFunc {
	return timeout.Timeout(
		timeout.WithTimeout(duration),
		timeout.WithErrorHttpCode(http.StatusRequestTimeout),
		timeout.WithDefaultMsg("Request timeout"),
	)
}

func addRoutes(r *gin.Engine, conf Configuration, uc usecases.Usecases, auth Authentication) {
	tom := timeoutMiddleware(conf.DefaultTimeout)

	r.GET("/liveness", tom, handleLivenessProbe(uc))
	if conf.EnablePrometheus {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router := r.Use(auth.Middleware)

	// no timeout on the upload, it is bounded by the size limit, nor on the event stream
	router.POST("/upload",
		limits.RequestSizeLimiter(conf.UploadMaxSizeBytes+multipartOverheadBytes),
		handleUploadFile(uc, conf.UploadMaxSizeBytes+multipartOverheadBytes))
	router.GET("/upload", tom, handleListUploadJobs(uc))
	router.GET("/upload/:jobId", tom, handleGetUploadJob(uc))
	router.PUT("/upload/:jobId/cancel", tom, handleCancelUploadJob(uc))
	router.GET("/upload/:jobId/events", handleUploadJobEvents(uc))

	router.GET("/properties", tom, handleSearchProperties(uc))
}
