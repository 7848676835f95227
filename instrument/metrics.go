package instrument

import (
	"errors"
	"strings"
	"sync"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "storage"

// Metrics holds the collectors recorded by instrumented storages.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var (
	defaultMetricsOnce sync.Once
	defaultMetricsInst *Metrics
)

// DefaultMetrics returns metrics registered with prometheus.DefaultRegisterer.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetricsInst = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetricsInst
}

// NewMetrics creates the storage collectors and registers them with reg
// when it is not nil. Calling it again with the same registry returns
// metrics backed by the collectors registered first.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Total number of storage operations by outcome.",
		}, []string{"backend", "operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "operation_duration_seconds",
			Help:      "Storage operation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
	}
	if reg != nil {
		m.operations = register(reg, m.operations)
		m.duration = register(reg, m.duration)
	}
	return m
}

// register adds c to reg. When an identical collector is already
// registered, that one is returned so repeated setups share one series.
// Conflicting registrations still panic.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// resultLabel maps an operation outcome to a low-cardinality label: "ok",
// or the lower-cased platform error code.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(platformerrors.GetCode(err)))
}
