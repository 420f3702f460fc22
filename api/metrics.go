package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the prometheus collectors exported on /metrics
type Metrics struct {
	Registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	HearingConflicts  prometheus.Counter
	Charges           *prometheus.CounterVec
	GateBlocks        prometheus.Counter
	StalePendingCases prometheus.Gauge
}

// NewMetrics registers every collector on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "court_docket",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "court_docket",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HearingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "court_docket",
			Name:      "hearing_conflicts_total",
			Help:      "Case creations and updates rejected because the hearing date was taken.",
		}),
		Charges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "court_docket",
			Name:      "billing_charges_total",
			Help:      "Billing entries created for lawyers by charge source.",
		}, []string{"source"}),
		GateBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "court_docket",
			Name:      "billing_gate_blocks_total",
			Help:      "Lawyer reads refused because the outstanding balance reached the threshold.",
		}),
		StalePendingCases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "court_docket",
			Name:      "stale_pending_cases",
			Help:      "Pending cases without a current or future hearing at the last sweep.",
		}),
	}
	m.Registry.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.HearingConflicts,
		m.Charges,
		m.GateBlocks,
		m.StalePendingCases,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
