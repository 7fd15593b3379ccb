// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DriverMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_mutations_total",
			Help: "Total number of leaderboard mutations",
		},
		[]string{"action"},
	)

	RaceExpiriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "race_expiries_total",
			Help: "Number of times an announced race auto-expired on read",
		},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_uploads_total",
			Help: "Total number of accepted image uploads",
		},
		[]string{"kind"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
