package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "langnerd_pipeline_requests_total",
		Help: "Pipeline requests by mode and outcome.",
	}, []string{"mode", "outcome"})

	degradedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "langnerd_pipeline_degraded_total",
		Help: "Requests that continued past a sourcing failure.",
	}, []string{"mode"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "langnerd_pipeline_request_duration_seconds",
		Help:    "End-to-end pipeline latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
)
