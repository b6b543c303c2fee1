package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ems_backend_requests_total",
		Help: "Requests sent to the reporting backend, partitioned by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ems_backend_request_duration_seconds",
		Help:    "Latency of reporting backend requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ems_backend_breaker_state",
		Help: "Circuit breaker state of the backend client: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})

	ReportSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ems_report_submissions_total",
		Help: "Report submissions, partitioned by report type and outcome.",
	}, []string{"report", "outcome"})

	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ems_exports_total",
		Help: "Spreadsheet exports handed out, partitioned by report type.",
	}, []string{"report"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ems_http_requests_total",
		Help: "View API requests, partitioned by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ems_http_request_duration_seconds",
		Help:    "View API request latency, partitioned by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
	OutcomeStale   = "stale"
)
