package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Relationship metrics
	RelationToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookbook_relation_toggles_total",
			Help: "Total number of follow/favourite toggles",
		},
		[]string{"relation", "action"}, // action: "added", "removed"
	)

	CascadeRemovals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookbook_cascade_removals_total",
			Help: "Total number of dangling references removed by cascade cleanup",
		},
		[]string{"relation"},
	)

	CascadeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookbook_cascade_failures_total",
			Help: "Total number of cascade cleanup operations that failed",
		},
		[]string{"relation"},
	)

	// API Endpoint Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookbook_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cookbook_http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)
)

// RecordToggle counts one toggle on relation.
func RecordToggle(relation string, added bool) {
	action := "removed"
	if added {
		action = "added"
	}
	RelationToggles.WithLabelValues(relation, action).Inc()
}

// RecordCascade counts removed references and failed removals for relation.
func RecordCascade(relation string, removed, failed int) {
	if removed > 0 {
		CascadeRemovals.WithLabelValues(relation).Add(float64(removed))
	}
	if failed > 0 {
		CascadeFailures.WithLabelValues(relation).Add(float64(failed))
	}
}

func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
