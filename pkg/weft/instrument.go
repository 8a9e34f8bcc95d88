package weft

import "time"

// Instrument receives store lifecycle callbacks. Implementations are
// invoked inline on the store's goroutine and must not call back into the
// store. See pkg/observe for Prometheus and OpenTelemetry implementations
// and pkg/inspect for the live devtools feed.
type Instrument interface {
	// NodeAdded fires when a node is registered under an owner.
	NodeAdded(id NodeID, kind NodeKind, owner Owner)

	// NodeRemoved fires when a node is removed from the store.
	NodeRemoved(id NodeID)

	// ValueChanged fires when a node's value changes: once for the written
	// atom and once per recomputed selector during propagation.
	ValueChanged(id NodeID)

	// SelectorRecomputed fires after a selector evaluation, with the size
	// of the freshly discovered dependency set.
	SelectorRecomputed(id NodeID, deps int, elapsed time.Duration)

	// PropagationFinished fires when an invalidation triggered at origin
	// has fully settled.
	PropagationFinished(origin NodeID, recomputed int, elapsed time.Duration)
}

// NopInstrument is the default no-op instrumentation.
type NopInstrument struct{}

func (NopInstrument) NodeAdded(NodeID, NodeKind, Owner)                {}
func (NopInstrument) NodeRemoved(NodeID)                               {}
func (NopInstrument) ValueChanged(NodeID)                              {}
func (NopInstrument) SelectorRecomputed(NodeID, int, time.Duration)    {}
func (NopInstrument) PropagationFinished(NodeID, int, time.Duration)   {}

var _ Instrument = NopInstrument{}
