package infra

import (
	"fmt"
	"time"
)

type PgConfig struct {
	ConnectionString    string
	Database            string
	DbConnectWithSocket bool
	Hostname            string
	Password            string
	Port                string
	User                string
	MaxPoolConnections  int
	SslMode             string
}

func (config PgConfig) GetConnectionString() string {
	if config.ConnectionString != "" {
		return config.ConnectionString
	}

	if config.SslMode == "" {
		config.SslMode = "prefer"
	}

	connectionString := fmt.Sprintf("host=%s user=%s password=%s database=%s sslmode=%s",
		config.Hostname, config.User, config.Password, config.Database, config.SslMode)
	if !config.DbConnectWithSocket {
		// through a unix socket, no port is needed
		connectionString = fmt.Sprintf("%s port=%s", connectionString, config.Port)
	}
	return connectionString
}

const (
	DEFAULT_INGESTION_BATCH_SIZE = 500
	MAX_INGESTION_BATCH_SIZE     = 10000
	DEFAULT_UPLOAD_MAX_SIZE_MB   = 50
)

type IngestionConfig struct {
	BucketUrl                   string
	BatchSize                   int
	MaxWorkers                  int
	JobTimeout                  time.Duration
	UploadMaxSizeMb             int
	CaseInsensitiveAddressMatch bool
	ColumnAliasesFile           string
}

// Normalize clamps the numeric knobs to their allowed ranges.
func (c IngestionConfig) Normalize() IngestionConfig {
	c.BatchSize = ClampBatchSize(c.BatchSize)
	if c.MaxWorkers < 1 {
		c.MaxWorkers = 1
	}
	if c.UploadMaxSizeMb <= 0 {
		c.UploadMaxSizeMb = DEFAULT_UPLOAD_MAX_SIZE_MB
	}
	if c.JobTimeout < 0 {
		c.JobTimeout = 0
	}
	return c
}

func (c IngestionConfig) UploadMaxSizeBytes() int64 {
	return int64(c.UploadMaxSizeMb) * 1024 * 1024
}

func ClampBatchSize(size int) int {
	switch {
	case size <= 0:
		return DEFAULT_INGESTION_BATCH_SIZE
	case size > MAX_INGESTION_BATCH_SIZE:
		return MAX_INGESTION_BATCH_SIZE
	}
	return size
}

type AmqpConfig struct {
	Url              string
	ProgressExchange string
}

func (c AmqpConfig) Enabled() bool {
	return c.Url != ""
}
