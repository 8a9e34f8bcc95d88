package weft

import "fmt"

// Signal is a copyable typed handle to an atom. The zero value is not a
// valid handle; create signals with NewSignal.
type Signal[T any] struct {
	id NodeID
}

// NewSignal creates an atom scoped to owner with the given initial value.
func NewSignal[T any](s *Store, owner Owner, initial T) Signal[T] {
	id := s.NextID()
	s.register(id, owner, KindAtom)
	Set(s, id, initial)
	return Signal[T]{id: id}
}

// ID returns the underlying node identifier.
func (sig Signal[T]) ID() NodeID {
	return sig.id
}

// Get returns the current value, recording a dependency edge if a selector
// computation is in flight. Panics if the node has been removed; use
// TryGet for handles that can outlive their owner.
func (sig Signal[T]) Get(s *Store) T {
	v, ok := Get[T](s, sig.id)
	if !ok {
		panic(fmt.Sprintf("[WEFT E001] signal node %d is missing (owner destroyed?)", sig.id))
	}
	return v
}

// TryGet returns the current value, or ok=false if the node has been
// removed. Records a dependency like Get.
func (sig Signal[T]) TryGet(s *Store) (T, bool) {
	return Get[T](s, sig.id)
}

// Set overwrites the value and synchronously recomputes all dependents.
func (sig Signal[T]) Set(s *Store, value T) {
	Set(s, sig.id, value)
}

// Update mutates the value in place, then propagates. Because the
// mutation happens through a pointer rather than through Set, the
// dependents are invalidated explicitly here.
func (sig Signal[T]) Update(s *Store, fn func(*T)) {
	p, ok := GetMut[T](s, sig.id)
	if !ok {
		panic(fmt.Sprintf("[WEFT E001] signal node %d is missing (owner destroyed?)", sig.id))
	}
	fn(p)
	s.UpdateDependents(sig.id)
}

// Observe subscribes owner to change notifications for this signal. The
// external binding layer reads the observer set; Observe itself never
// causes a re-render.
func (sig Signal[T]) Observe(s *Store, owner Owner) {
	s.Observe(sig.id, owner)
}

// Derived is a copyable typed handle to a selector. It has no Set: derived
// values are recomputed automatically and writing one is a compile-time
// impossibility through this handle.
type Derived[T any] struct {
	id NodeID
}

// NewDerived creates a selector scoped to owner and immediately evaluates
// it, discovering its initial dependency set.
func NewDerived[T any](s *Store, owner Owner, compute func(*Store) T) Derived[T] {
	id := s.NextID()
	s.register(id, owner, KindSelector)
	RegisterComputeFn(s, id, compute)
	s.RecomputeSelector(id)
	return Derived[T]{id: id}
}

// ID returns the underlying node identifier.
func (d Derived[T]) ID() NodeID {
	return d.id
}

// Get returns the current computed value, recording a dependency edge if
// another selector's computation is in flight. Panics if the node has
// been removed; use TryGet for handles that can outlive their owner.
func (d Derived[T]) Get(s *Store) T {
	v, ok := Get[T](s, d.id)
	if !ok {
		panic(fmt.Sprintf("[WEFT E001] derived node %d is missing (owner destroyed?)", d.id))
	}
	return v
}

// TryGet returns the current computed value, or ok=false if the node has
// been removed.
func (d Derived[T]) TryGet(s *Store) (T, bool) {
	return Get[T](s, d.id)
}

// Observe subscribes owner to change notifications for this selector.
func (d Derived[T]) Observe(s *Store, owner Owner) {
	s.Observe(d.id, owner)
}
