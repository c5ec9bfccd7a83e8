// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MarksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_marks_total",
			Help: "Total number of attendance marks in working sessions",
		},
		[]string{"status"},
	)

	SessionsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_sessions_submitted_total",
			Help: "Total number of submitted attendance sessions",
		},
		[]string{"section"},
	)

	SyncFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_sync_failures_total",
			Help: "Remote attendance submissions that failed and were dropped",
		},
	)

	PersistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_persist_failures_total",
			Help: "Failed writes of tracker state to local storage",
		},
	)

	SessionPresentRatio = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_session_present_percent",
			Help:    "Distribution of per-session present percentage",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"section"},
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
