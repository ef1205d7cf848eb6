package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Change feed metrics
	ActiveSubscriptionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_active_subscriptions",
			Help: "Current number of live change-feed subscriptions",
		},
		[]string{"service"},
	)

	SnapshotsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_snapshots_processed_total",
			Help: "Total number of change-feed snapshots folded into statistics",
		},
		[]string{"service", "key"},
	)

	SubscriptionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_subscription_errors_total",
			Help: "Total number of per-key subscription errors",
		},
		[]string{"service", "key"},
	)

	DecodeSkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_decode_skips_total",
			Help: "Total number of documents skipped because they failed to decode",
		},
		[]string{"service", "collection"},
	)

	// Trip metrics
	TripTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_transitions_total",
			Help: "Total number of trip status transitions",
		},
		[]string{"service", "to_status"},
	)

	TripTransitionRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_transition_rejections_total",
			Help: "Total number of rejected trip transitions",
		},
		[]string{"service"},
	)

	// Reminder metrics
	RemindersScheduledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_scheduled_total",
			Help: "Total number of reminders scheduled",
		},
		[]string{"service", "kind"},
	)

	RemindersImmediateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_immediate_total",
			Help: "Total number of immediate (already expired) reminders sent",
		},
		[]string{"service", "kind"},
	)

	RemindersDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_dispatched_total",
			Help: "Total number of due reminders published to the broker",
		},
		[]string{"service"},
	)
)

// RecordHTTPRequest records metrics of http request
func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	HttpRequestsTotal.WithLabelValues(service, method, path, statusStr).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, statusStr).Observe(duration.Seconds())
}
