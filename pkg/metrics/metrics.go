package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "surecart_licensing"

var (
	Registry = prometheus.NewRegistry()

	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Requests sent to the licensing API by method and result.",
	}, []string{"method", "result"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Latency of requests sent to the licensing API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	updateChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "update_checks_total",
		Help:      "Version info lookups by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(requestsTotal, requestDuration, updateChecksTotal)
}

// ObserveRequest records one licensing API call. result is the HTTP status code or an error kind.
func ObserveRequest(method string, result string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method, result).Inc()
	requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveUpdateCheck records a version info lookup: "cached", "fetched", "unavailable" or "error".
func ObserveUpdateCheck(outcome string) {
	updateChecksTotal.WithLabelValues(outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
