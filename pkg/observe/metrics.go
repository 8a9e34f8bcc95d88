// Package observe provides weft.Instrument implementations for Prometheus
// metrics and OpenTelemetry traces, plus a combinator for stacking them.
package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weft-dev/weft/pkg/weft"
)

// MetricsConfig configures the Prometheus instrument.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "weft").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for propagation and recompute
	// duration. Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus instrument.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "weft",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metricsInstrument implements weft.Instrument on Prometheus collectors.
type metricsInstrument struct {
	nodes              prometheus.Gauge
	nodesCreated       *prometheus.CounterVec
	nodesRemoved       prometheus.Counter
	valueChanges       prometheus.Counter
	recomputes         prometheus.Counter
	recomputeDuration  prometheus.Histogram
	dependencyCount    prometheus.Histogram
	propagations       prometheus.Counter
	propagationSize    prometheus.Histogram
	propagationSeconds prometheus.Histogram
}

// Prometheus creates a weft.Instrument that records store activity as
// Prometheus metrics.
//
// Metrics collected:
//   - weft_nodes: Gauge of live nodes
//   - weft_nodes_created_total: Counter of node registrations by kind
//   - weft_nodes_removed_total: Counter of node removals
//   - weft_value_changes_total: Counter of value writes and recomputes
//   - weft_selector_recomputes_total: Counter of selector evaluations
//   - weft_recompute_duration_seconds: Histogram of evaluation duration
//   - weft_selector_dependencies: Histogram of discovered dependency counts
//   - weft_propagations_total: Counter of invalidation waves
//   - weft_propagation_recomputes: Histogram of edge recomputes per wave
//   - weft_propagation_duration_seconds: Histogram of wave duration
//
// Example:
//
//	store := weft.NewStore(
//	    weft.WithInstrument(observe.Prometheus(
//	        observe.WithNamespace("myapp"),
//	    )),
//	)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) weft.Instrument {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &metricsInstrument{
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes",
			Help:        "Number of live nodes in the store",
			ConstLabels: config.ConstLabels,
		}),

		nodesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_created_total",
			Help:        "Total number of node registrations by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		nodesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_removed_total",
			Help:        "Total number of node removals",
			ConstLabels: config.ConstLabels,
		}),

		valueChanges: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "value_changes_total",
			Help:        "Total number of value changes, written and recomputed",
			ConstLabels: config.ConstLabels,
		}),

		recomputes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "selector_recomputes_total",
			Help:        "Total number of selector evaluations",
			ConstLabels: config.ConstLabels,
		}),

		recomputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recompute_duration_seconds",
			Help:        "Selector evaluation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		dependencyCount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "selector_dependencies",
			Help:        "Dependency set size discovered per selector evaluation",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100},
		}),

		propagations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "propagations_total",
			Help:        "Total number of invalidation waves",
			ConstLabels: config.ConstLabels,
		}),

		propagationSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "propagation_recomputes",
			Help:        "Edge recomputes performed per invalidation wave",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),

		propagationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "propagation_duration_seconds",
			Help:        "Invalidation wave duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func (m *metricsInstrument) NodeAdded(_ weft.NodeID, kind weft.NodeKind, _ weft.Owner) {
	m.nodes.Inc()
	m.nodesCreated.WithLabelValues(kind.String()).Inc()
}

func (m *metricsInstrument) NodeRemoved(weft.NodeID) {
	m.nodes.Dec()
	m.nodesRemoved.Inc()
}

func (m *metricsInstrument) ValueChanged(weft.NodeID) {
	m.valueChanges.Inc()
}

func (m *metricsInstrument) SelectorRecomputed(_ weft.NodeID, deps int, elapsed time.Duration) {
	m.recomputes.Inc()
	m.recomputeDuration.Observe(elapsed.Seconds())
	m.dependencyCount.Observe(float64(deps))
}

func (m *metricsInstrument) PropagationFinished(_ weft.NodeID, recomputed int, elapsed time.Duration) {
	m.propagations.Inc()
	m.propagationSize.Observe(float64(recomputed))
	m.propagationSeconds.Observe(elapsed.Seconds())
}
