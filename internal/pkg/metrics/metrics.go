package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kylingate_upstream_requests_total",
		Help: "Dispatched commands by outcome",
	}, []string{"command", "outcome"})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kylingate_upstream_latency_seconds",
		Help:    "Upstream call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	AuditWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kylingate_audit_writes_total",
		Help: "Audit record writes by sink and outcome",
	}, []string{"sink", "outcome"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kylingate_http_latency_seconds",
		Help:    "Inbound request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})
)
