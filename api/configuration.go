package api

import (
	"time"
)

type Configuration struct {
	Env                 string
	AppName             string
	AppVersion          string
	Port                string
	RequestLoggingLevel string
	// comma separated origins of the browser apps calling the api
	CorsAllowedOrigins string
	DefaultTimeout     time.Duration
	UploadMaxSizeBytes int64
	EnablePrometheus   bool
}
