package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/weft-dev/weft/pkg/weft"
)

// Default tracer name for weft stores.
const defaultTracerName = "weft"

// OTelConfig configures the OpenTelemetry instrument.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "weft").
	TracerName string

	// RecomputeSpans emits a span per selector evaluation in addition to
	// the per-propagation span. High volume - disabled by default.
	RecomputeSpans bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry instrument.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithRecomputeSpans enables a span per selector evaluation.
func WithRecomputeSpans(enable bool) OTelOption {
	return func(c *OTelConfig) {
		c.RecomputeSpans = enable
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:     defaultTracerName,
		RecomputeSpans: false,
	}
}

// otelInstrument implements weft.Instrument by emitting trace spans.
//
// The store's callbacks fire after the fact, so spans are reconstructed
// with explicit timestamps: started elapsed ago, ended now.
type otelInstrument struct {
	config OTelConfig
}

// OpenTelemetry creates a weft.Instrument that emits a trace span per
// invalidation wave, and optionally per selector evaluation.
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before creating the store:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
//
//	store := weft.NewStore(
//	    weft.WithInstrument(observe.OpenTelemetry(
//	        observe.WithTracerName("my-app"),
//	    )),
//	)
func OpenTelemetry(opts ...OTelOption) weft.Instrument {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return &otelInstrument{config: config}
}

func (o *otelInstrument) NodeAdded(weft.NodeID, weft.NodeKind, weft.Owner) {}

func (o *otelInstrument) NodeRemoved(weft.NodeID) {}

func (o *otelInstrument) ValueChanged(weft.NodeID) {}

func (o *otelInstrument) SelectorRecomputed(id weft.NodeID, deps int, elapsed time.Duration) {
	if !o.config.RecomputeSpans {
		return
	}
	end := time.Now()
	_, span := o.config.tracer.Start(
		context.Background(),
		fmt.Sprintf("weft.recompute %d", id),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(end.Add(-elapsed)),
		trace.WithAttributes(
			attribute.Int64("weft.node_id", int64(id)),
			attribute.Int("weft.dependencies", deps),
		),
	)
	span.End(trace.WithTimestamp(end))
}

func (o *otelInstrument) PropagationFinished(origin weft.NodeID, recomputed int, elapsed time.Duration) {
	end := time.Now()
	_, span := o.config.tracer.Start(
		context.Background(),
		"weft.propagation",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(end.Add(-elapsed)),
		trace.WithAttributes(
			attribute.Int64("weft.origin", int64(origin)),
			attribute.Int("weft.recomputed", recomputed),
		),
	)
	span.End(trace.WithTimestamp(end))
}
