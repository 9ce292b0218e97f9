// Package metrics defines Prometheus metrics for the rootline server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rootline_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rootline_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rootline_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	ParseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rootline_gedcom_parse_duration_seconds",
			Help:    "GEDCOM parse duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	IndividualsParsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rootline_individuals_parsed_total",
			Help: "Total individuals parsed from uploads",
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rootline_preview_sessions_active",
			Help: "Active import preview sessions",
		},
	)

	MergesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rootline_merges_total",
			Help: "Executed person merges by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		ParseDuration, IndividualsParsed,
		ActiveSessions, MergesTotal,
	)
}
