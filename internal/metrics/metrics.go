// Package metrics defines the Prometheus collectors for the Gather API.
// Collectors register themselves on the default registry via promauto and
// are exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gather_events_created_total",
		Help: "Total number of events created.",
	})

	AttendanceToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gather_attendance_toggles_total",
		Help: "Total number of attendance toggles, labelled by outcome.",
	}, []string{"outcome"})

	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gather_notifications_published_total",
		Help: "Total number of realtime notifications published, labelled by topic.",
	}, []string{"topic"})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gather_notifications_dropped_total",
		Help: "Total number of notifications skipped because a subscriber buffer was full.",
	})

	SSESubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gather_sse_subscribers",
		Help: "Current number of connected SSE subscribers.",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gather_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter.",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gather_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, labelled by method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// ToggleOutcome label values for AttendanceToggles
const (
	OutcomeJoined   = "joined"
	OutcomeLeft     = "left"
	OutcomeCapacity = "capacity"
	OutcomeError    = "error"
)
