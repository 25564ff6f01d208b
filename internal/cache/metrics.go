package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricCacheHits   = "cache_hits_total"
	MetricCacheMisses = "cache_misses_total"
	MetricCacheErrors = "cache_errors_total"
)

// Metrics contains Prometheus counters for cache operations.
// All operations are thread-safe. A nil *Metrics is a no-op.
type Metrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
	errors prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCacheHits,
			Help: "Total number of cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCacheMisses,
			Help: "Total number of cache misses",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCacheErrors,
			Help: "Total number of cache errors absorbed by fail-open handling",
		}),
	}
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.errors} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) observeMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) observeError() {
	if m != nil {
		m.errors.Inc()
	}
}
