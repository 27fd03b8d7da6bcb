package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_sync_jobs_scheduled_total",
		Help: "Total number of resync jobs scheduled by entity mutations",
	})

	jobsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_sync_jobs_coalesced_total",
		Help: "Total number of mutations absorbed into an already-pending resync",
	})

	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_sync_jobs_failed_total",
		Help: "Total number of resync jobs that exhausted their retries",
	})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_sync_job_duration_seconds",
		Help:    "Duration of resync jobs, including retries",
		Buckets: prometheus.DefBuckets,
	})

	documentsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_sync_documents_deleted_total",
		Help: "Total number of index documents removed for vanished entities",
	})
)
