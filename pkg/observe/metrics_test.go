package observe

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weft-dev/weft/pkg/weft"
)

func TestPrometheusInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := weft.NewStore(weft.WithInstrument(Prometheus(
		WithRegistry(reg),
		WithNamespace("test"),
	)))

	a := weft.NewSignal(s, 1, 1)
	weft.NewDerived(s, 1, func(st *weft.Store) int { return a.Get(st) * 2 })

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	byName := make(map[string]bool, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = true
	}
	for _, name := range []string{
		"test_nodes",
		"test_nodes_created_total",
		"test_value_changes_total",
		"test_selector_recomputes_total",
		"test_propagation_duration_seconds",
	} {
		if !byName[name] {
			t.Errorf("metric %s not registered", name)
		}
	}

	a.Set(s, 5)

	if nodes := gaugeValue(t, reg, "test_nodes"); nodes != 2 {
		t.Errorf("expected 2 live nodes, got %v", nodes)
	}

	s.EntityDestroyed(1)
	if nodes := gaugeValue(t, reg, "test_nodes"); nodes != 0 {
		t.Errorf("expected 0 live nodes after teardown, got %v", nodes)
	}
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestPrometheusCountsPropagation(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := weft.NewStore(weft.WithInstrument(Prometheus(WithRegistry(reg))))

	a := weft.NewSignal(s, 1, 1)
	weft.NewDerived(s, 1, func(st *weft.Store) int { return a.Get(st) + 1 })

	a.Set(s, 2)
	a.Set(s, 3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "weft_propagations_total" {
			continue
		}
		if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 2 {
			t.Errorf("expected 2 propagations, got %v", got)
		}
		return
	}
	t.Fatal("weft_propagations_total not found")
}

type countingInstrument struct {
	calls int
}

func (c *countingInstrument) NodeAdded(weft.NodeID, weft.NodeKind, weft.Owner)       { c.calls++ }
func (c *countingInstrument) NodeRemoved(weft.NodeID)                                { c.calls++ }
func (c *countingInstrument) ValueChanged(weft.NodeID)                               { c.calls++ }
func (c *countingInstrument) SelectorRecomputed(weft.NodeID, int, time.Duration)     { c.calls++ }
func (c *countingInstrument) PropagationFinished(weft.NodeID, int, time.Duration)    { c.calls++ }

func TestMultiFansOut(t *testing.T) {
	first := &countingInstrument{}
	second := &countingInstrument{}
	inst := Multi(first, nil, second)

	inst.NodeAdded(1, weft.KindAtom, 1)
	inst.ValueChanged(1)
	inst.PropagationFinished(1, 0, 0)

	if first.calls != 3 || second.calls != 3 {
		t.Errorf("expected 3 calls each, got %d and %d", first.calls, second.calls)
	}
}

func TestOpenTelemetryIsSafeWithoutProvider(t *testing.T) {
	// Without a configured provider the global tracer is a no-op; the
	// instrument must still be callable.
	inst := OpenTelemetry(WithTracerName("test"), WithRecomputeSpans(true))
	inst.SelectorRecomputed(1, 2, time.Millisecond)
	inst.PropagationFinished(1, 3, time.Millisecond)
	inst.NodeAdded(1, weft.KindAtom, 1)
	inst.NodeRemoved(1)
	inst.ValueChanged(1)
}
