// Package metrics exposes the Prometheus endpoint and the HTTP server
// metrics. Component metrics live next to their code and register through
// promauto:
//
// Upstream (pkg/upstream):
//   - storefront_upstream_requests_total{endpoint, status}
//   - storefront_upstream_request_duration_seconds{endpoint}
//   - storefront_upstream_retries_total{endpoint}
//   - storefront_upstream_breaker_state{name}
//
// Cache (pkg/redis):
//   - storefront_cache_hits_total{namespace}
//   - storefront_cache_misses_total{namespace}
//   - storefront_cache_errors_total{operation}
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the service.
var Registry = prometheus.DefaultRegisterer

var (
	// HTTPRequestsTotal counts served requests by route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks handler latency by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
