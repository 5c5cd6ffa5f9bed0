package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts upstream responses by endpoint group and status.
	// Transport failures are recorded with status "error".
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_upstream_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"endpoint", "status"},
	)

	// RequestDuration tracks the latency of a single attempt.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_upstream_request_duration_seconds",
			Help:    "Upstream API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// RetriesTotal counts retry attempts after a transport error or 5xx.
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_upstream_retries_total",
			Help: "Total number of upstream retry attempts",
		},
		[]string{"endpoint"},
	)

	// BreakerState is 0 closed, 1 open, 2 half-open.
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_upstream_breaker_state",
			Help: "Circuit breaker state per upstream endpoint group",
		},
		[]string{"name"},
	)
)
