package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MetricIngestedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offer_ingestion_rows_total",
			Help: "Rows processed by the file ingestion, by outcome (new, updated, error, coerced)",
		},
		[]string{"outcome"},
	)

	MetricIngestionBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "offer_ingestion_batch_duration_seconds",
			Help:    "Duration of one ingestion batch transaction",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
		[]string{"file_type"},
	)

	MetricIngestionJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offer_ingestion_jobs_total",
			Help: "Ingestion jobs that reached a terminal status",
		},
		[]string{"status"},
	)
)
