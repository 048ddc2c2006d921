package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	operationsTotal *prometheus.CounterVec
	queueDepth      prometheus.Gauge
	warningsTotal   prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Gauge, prometheus.Counter) {
	ops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_operations_total",
			Help: "Number of coordinator operations by outcome",
		},
		[]string{"op", "outcome"},
	)
	depth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coordinator_queue_depth",
			Help: "Current length of the waiting queue",
		},
	)
	warn := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coordinator_consistency_warnings_total",
			Help: "Number of tolerated consistency warnings",
		},
	)
	return ops, depth, warn
}

func init() {
	operationsTotal, queueDepth, warningsTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers coordinator metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(operationsTotal, queueDepth, warningsTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	operationsTotal, queueDepth, warningsTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

// recordOp counts one coordinator operation under its outcome label.
func recordOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(op, outcome).Inc()
}
