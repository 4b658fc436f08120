package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors the server updates.
type Metrics struct {
	Conversions *prometheus.CounterVec
	Rows        prometheus.Counter
	Duration    prometheus.Histogram
	Requests    *prometheus.CounterVec
}

// NewMetrics registers the server collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Conversions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stmtconv_conversions_total",
			Help: "Statement conversions by output format and outcome.",
		}, []string{"format", "outcome"}),
		Rows: f.NewCounter(prometheus.CounterOpts{
			Name: "stmtconv_transactions_total",
			Help: "Transaction rows extracted from uploaded statements.",
		}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stmtconv_conversion_duration_seconds",
			Help:    "Time spent parsing and encoding a statement.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stmtconv_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
}
