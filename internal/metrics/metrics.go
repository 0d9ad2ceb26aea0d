// Package metrics wires the Prometheus registry and grpc server metrics,
// grounded on the teacher's metrics/metric.go, generalized from the
// InodeDB namespace to Nebula's and extended with the tick-duration
// histogram and per-reply-kind counters §4.7/§10 call for.
package metrics

import (
	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nebula"

var (
	Registry = prometheus.NewRegistry()

	GRPCServerMetrics = grpcprometheus.NewServerMetrics(
		func(c *prometheus.CounterOpts) { c.Namespace = namespace },
	)
	GRPCClientMetrics = grpcprometheus.NewClientMetrics(
		func(c *prometheus.CounterOpts) { c.Namespace = namespace },
	)

	// TickDuration observes the wall-clock cost of one reconciliation
	// tick (§4.7).
	TickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "tick_duration_seconds",
		Help:      "Duration of one reconciliation tick.",
		Buckets:   prometheus.DefBuckets,
	})

	// TaskReplies counts dispatcher outcomes by task type and reply kind
	// (§4.6 reply table).
	TaskReplies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatch",
		Name:      "task_replies_total",
		Help:      "Task replies observed by the dispatcher, by task type and reply.",
	}, []string{"task_type", "reply"})

	// ActiveNodes reports the current size of the active fleet, sampled
	// once per tick.
	ActiveNodes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "cluster",
		Name:      "active_nodes",
		Help:      "Number of nodes currently considered active.",
	})

	// SpecsByState reports the current spec count per lifecycle state,
	// sampled once per tick.
	SpecsByState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "specrepo",
		Name:      "specs",
		Help:      "Number of specs currently in each lifecycle state.",
	}, []string{"state"})
)

func init() {
	Registry.MustRegister(
		GRPCServerMetrics,
		GRPCClientMetrics,
		TickDuration,
		TaskReplies,
		ActiveNodes,
		SpecsByState,
	)
	GRPCServerMetrics.EnableHandlingTimeHistogram(
		func(h *prometheus.HistogramOpts) { h.Namespace = namespace },
	)
}
