package cmd

import (
	"time"

	"github.com/offerlookup/offer-backend/infra"
	"github.com/offerlookup/offer-backend/usecases/ingestion"
	"github.com/offerlookup/offer-backend/utils"
)

type CompiledConfig struct {
	Version string
}

func pgConfigFromEnv() infra.PgConfig {
	return infra.PgConfig{
		ConnectionString:   utils.GetEnv("PG_CONNECTION_STRING", ""),
		Database:           utils.GetEnv("PG_DATABASE", "offers"),
		Hostname:           utils.GetEnv("PG_HOSTNAME", ""),
		Password:           utils.GetEnv("PG_PASSWORD", ""),
		Port:               utils.GetEnv("PG_PORT", "5432"),
		User:               utils.GetEnv("PG_USER", ""),
		MaxPoolConnections: utils.GetEnv("PG_MAX_POOL_SIZE", infra.MAX_CONNECTIONS),
		SslMode:            utils.GetEnv("PG_SSL_MODE", "prefer"),
	}
}

func ingestionConfigFromEnv() infra.IngestionConfig {
	return infra.IngestionConfig{
		BucketUrl:                   utils.GetRequiredEnv[string]("INGESTION_BUCKET_URL"),
		BatchSize:                   utils.GetEnv("INGESTION_BATCH_SIZE", infra.DEFAULT_INGESTION_BATCH_SIZE),
		MaxWorkers:                  utils.GetEnv("INGESTION_MAX_WORKERS", 1),
		JobTimeout:                  utils.GetEnv("INGESTION_JOB_TIMEOUT", time.Duration(0)),
		UploadMaxSizeMb:             utils.GetEnv("UPLOAD_MAX_SIZE_MB", infra.DEFAULT_UPLOAD_MAX_SIZE_MB),
		CaseInsensitiveAddressMatch: utils.GetEnv("CASE_INSENSITIVE_ADDRESS_MATCH", false),
		ColumnAliasesFile:           utils.GetEnv("COLUMN_ALIASES_FILE", ""),
	}.Normalize()
}

func amqpConfigFromEnv() infra.AmqpConfig {
	return infra.AmqpConfig{
		Url:              utils.GetEnv("AMQP_URL", ""),
		ProgressExchange: utils.GetEnv("AMQP_PROGRESS_EXCHANGE", "ingestion.progress"),
	}
}

func columnAliases(config infra.IngestionConfig) (ingestion.ColumnAliases, error) {
	return ingestion.LoadColumnAliases(config.ColumnAliasesFile)
}
