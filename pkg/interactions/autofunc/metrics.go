// ABOUTME: Prometheus instrumentation for function execution and loop iterations
// ABOUTME: Collectors are shared when several runners register on the same registry

package autofunc

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeNotFound = "not_found"
	outcomePanic    = "panic"
)

type metrics struct {
	calls      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	iterations prometheus.Counter
	maxLoops   prometheus.Counter
}

// newMetrics builds collectors and registers them on reg when it is non-nil.
func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		calls: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interactions_function_calls_total",
			Help: "Function calls executed by the auto-function loop, by outcome.",
		}, []string{"function", "outcome"})),
		duration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interactions_function_duration_seconds",
			Help:    "Wall time of function executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"function"})),
		iterations: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interactions_autofunc_iterations_total",
			Help: "Turns sent by the auto-function loop.",
		})),
		maxLoops: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interactions_autofunc_max_loops_total",
			Help: "Runs that stopped at the iteration cap.",
		})),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}
