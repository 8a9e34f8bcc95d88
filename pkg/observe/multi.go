package observe

import (
	"time"

	"github.com/weft-dev/weft/pkg/weft"
)

// multiInstrument fans callbacks out to several instruments in order.
type multiInstrument []weft.Instrument

// Multi combines instruments into one, invoking each in order. Nil
// entries are skipped, so conditional wiring stays simple:
//
//	weft.WithInstrument(observe.Multi(
//	    observe.Prometheus(),
//	    maybeTracing, // nil unless tracing is enabled
//	))
func Multi(instruments ...weft.Instrument) weft.Instrument {
	kept := make(multiInstrument, 0, len(instruments))
	for _, inst := range instruments {
		if inst != nil {
			kept = append(kept, inst)
		}
	}
	return kept
}

func (m multiInstrument) NodeAdded(id weft.NodeID, kind weft.NodeKind, owner weft.Owner) {
	for _, inst := range m {
		inst.NodeAdded(id, kind, owner)
	}
}

func (m multiInstrument) NodeRemoved(id weft.NodeID) {
	for _, inst := range m {
		inst.NodeRemoved(id)
	}
}

func (m multiInstrument) ValueChanged(id weft.NodeID) {
	for _, inst := range m {
		inst.ValueChanged(id)
	}
}

func (m multiInstrument) SelectorRecomputed(id weft.NodeID, deps int, elapsed time.Duration) {
	for _, inst := range m {
		inst.SelectorRecomputed(id, deps, elapsed)
	}
}

func (m multiInstrument) PropagationFinished(origin weft.NodeID, recomputed int, elapsed time.Duration) {
	for _, inst := range m {
		inst.PropagationFinished(origin, recomputed, elapsed)
	}
}
