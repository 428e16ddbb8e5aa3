package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	SoftDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soft_deletes_total",
			Help: "Rows transitioned from live to deleted",
		},
		[]string{"table"},
	)

	UpstreamFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_failures_total",
			Help: "Failed calls to external collaborators",
		},
		[]string{"service"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Emails handed to the provider",
		},
		[]string{"kind", "result"},
	)

	RecapRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recap_runs_total",
			Help: "Daily recap executions",
		},
		[]string{"result"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by outcome",
		},
		[]string{"namespace", "outcome"},
	)
)
