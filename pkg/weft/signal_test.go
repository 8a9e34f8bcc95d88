package weft

import (
	"strings"
	"testing"
)

func TestSignalUpdateInPlace(t *testing.T) {
	s := NewStore()
	list := NewSignal(s, 1, []string{"a"})
	length := NewDerived(s, 1, func(st *Store) int {
		return len(list.Get(st))
	})

	if length.Get(s) != 1 {
		t.Fatalf("expected length 1, got %d", length.Get(s))
	}

	list.Update(s, func(v *[]string) {
		*v = append(*v, "b", "c")
	})

	if got := list.Get(s); len(got) != 3 {
		t.Errorf("expected 3 elements, got %v", got)
	}
	if length.Get(s) != 3 {
		t.Errorf("in-place mutation did not propagate, length = %d", length.Get(s))
	}
}

func TestStaleHandleGetPanics(t *testing.T) {
	s := NewStore()
	x := NewSignal(s, 1, 1)
	s.RemoveSignal(x.ID())

	if _, ok := x.TryGet(s); ok {
		t.Error("TryGet on a removed node should report missing")
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic from Get on a stale handle")
		}
		if !strings.Contains(r.(string), "E001") {
			t.Errorf("expected E001 panic, got %v", r)
		}
	}()
	x.Get(s)
}

func TestStaleDerivedGetPanics(t *testing.T) {
	s := NewStore()
	x := NewSignal(s, 1, 1)
	d := NewDerived(s, 1, func(st *Store) int { return x.Get(st) })
	s.RemoveSignal(d.ID())

	if _, ok := d.TryGet(s); ok {
		t.Error("TryGet on a removed node should report missing")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic from Get on a stale handle")
		}
	}()
	d.Get(s)
}

func TestObserveRegistersOwner(t *testing.T) {
	s := NewStore()
	x := NewSignal(s, 1, 1)

	x.Observe(s, 10)
	x.Observe(s, 12)
	x.Observe(s, 10) // duplicate subscription collapses

	got := s.ObserversOf(x.ID())
	if len(got) != 2 || got[0] != 10 || got[1] != 12 {
		t.Errorf("expected observers [10 12], got %v", got)
	}

	s.RemoveSignal(x.ID())
	if got := s.ObserversOf(x.ID()); len(got) != 0 {
		t.Errorf("observer set leaked after removal: %v", got)
	}
}

func TestNestedSelectorsRecordDirectDepsOnly(t *testing.T) {
	s := NewStore()
	base := NewSignal(s, 1, 2)
	inner := NewDerived(s, 1, func(st *Store) int { return base.Get(st) * 10 })
	outer := NewDerived(s, 1, func(st *Store) int {
		// Force a fresh inner evaluation inside outer's tracking session;
		// the reads inner performs must land on inner, not outer.
		st.RecomputeSelector(inner.ID())
		return inner.Get(st) + 1
	})

	if outer.Get(s) != 21 {
		t.Fatalf("expected 21, got %d", outer.Get(s))
	}

	outerDeps := s.DependenciesOf(outer.ID())
	if len(outerDeps) != 1 || outerDeps[0] != inner.ID() {
		t.Errorf("outer should depend only on inner, got %v", outerDeps)
	}
	innerDeps := s.DependenciesOf(inner.ID())
	if len(innerDeps) != 1 || innerDeps[0] != base.ID() {
		t.Errorf("inner should depend only on base, got %v", innerDeps)
	}

	base.Set(s, 3)
	if outer.Get(s) != 31 {
		t.Errorf("expected 31 after base write, got %d", outer.Get(s))
	}
}

func TestSelectorDoesNotDependOnItself(t *testing.T) {
	s := NewStore()
	x := NewSignal(s, 1, 1)
	d := NewDerived(s, 1, func(st *Store) int {
		// Reading the previous cached value is not a self-dependency.
		prev, _ := Get[int](st, st.tracking.current)
		return x.Get(st) + prev
	})

	deps := s.DependenciesOf(d.ID())
	if len(deps) != 1 || deps[0] != x.ID() {
		t.Errorf("expected deps [%d], got %v", x.ID(), deps)
	}
}
