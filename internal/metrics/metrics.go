package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distribution_assignments_total",
			Help: "Units assigned to franchise phones",
		},
		[]string{"franchise", "kind"},
	)

	AssignmentFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distribution_failures_total",
			Help: "Failed assignment attempts by reason",
		},
		[]string{"reason"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Webhook events received by type and outcome",
		},
		[]string{"type", "outcome"},
	)
)
