// Package metrics provides Prometheus metrics for the price compare server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests by route pattern and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ottprice",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration measures handler latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ottprice",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	TrendComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ottprice",
			Name:      "trend_compute_duration_seconds",
			Help:      "Time spent loading and computing a trend view",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"service"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ottprice",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)

	// JobRuns counts scheduled job executions by job and outcome.
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ottprice",
			Name:      "job_runs_total",
			Help:      "Scheduled job executions",
		},
		[]string{"job", "status"},
	)

	AlertsDue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ottprice",
			Name:      "alerts_due",
			Help:      "Price alert subscriptions whose target was met at the last check",
		},
	)
)

func RecordRequest(method, route, status string, seconds float64) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func RecordJob(job string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	JobRuns.WithLabelValues(job, status).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
