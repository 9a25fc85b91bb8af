package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outbound API call metrics. The "endpoint" label is the logical operation
// name ("auth.login", "profile.get"), never the raw URL path, to keep
// cardinality bounded.
var (
	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "Duration of outbound storefront API requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "code"},
	)

	apiRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Total number of outbound storefront API requests",
		},
		[]string{"method", "endpoint", "code"},
	)

	apiRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_api_requests_in_flight",
			Help: "Number of outbound storefront API requests currently in flight",
		},
		[]string{"endpoint"},
	)

	apiErrorTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_errors_total",
			Help: "Total number of failed outbound storefront API requests",
		},
		[]string{"method", "endpoint", "code"},
	)
)

// APIRequestStarted marks an outbound request as in flight and returns a
// function that records its outcome. Status 0 means a transport-level failure
// (no HTTP response at all).
//
// Usage:
//
//	done := observability.APIRequestStarted("auth.login")
//	...
//	done(http.MethodPost, resp.StatusCode())
func APIRequestStarted(endpoint string) func(method string, status int) {
	apiRequestsInFlight.WithLabelValues(endpoint).Inc()
	start := time.Now()

	return func(method string, status int) {
		apiRequestsInFlight.WithLabelValues(endpoint).Dec()

		code := strconv.Itoa(status)
		apiRequestDuration.WithLabelValues(method, endpoint, code).Observe(time.Since(start).Seconds())
		apiRequestTotal.WithLabelValues(method, endpoint, code).Inc()

		// Transport failures and non-2xx responses both count as errors
		if status == 0 || status >= 400 {
			apiErrorTotal.WithLabelValues(method, endpoint, code).Inc()
		}
	}
}
