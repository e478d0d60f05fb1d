package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the dispatcher, grounded on the teacher's
// ambient metrics registration style (promauto.NewCounterVec at package
// scope, labeled by operation) even though this system's Non-goals exclude
// a dedicated metrics subsystem — ambient observability is carried
// regardless (SPEC_FULL.md ambient stack).
var (
	metricCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mce_operations_total",
		Help: "Total successful operation invocations, labeled by operation name.",
	}, []string{"op"})

	metricErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mce_operation_errors_total",
		Help: "Total failed operation invocations, labeled by operation name.",
	}, []string{"op"})

	metricLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mce_operation_duration_seconds",
		Help:    "Operation dispatch latency in seconds, labeled by operation name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)
