// Package weft provides a fine-grained reactive value store with automatic
// dependency tracking.
//
// The store holds two kinds of nodes: atoms (independently writable state,
// created with NewSignal) and selectors (values derived from other nodes,
// created with NewDerived). Reading a node while a selector is being computed
// records a dependency edge automatically; writing an atom synchronously
// recomputes every selector that transitively depends on it.
//
// # Core Types
//
// Signal[T] is a typed handle to an atom:
//
//	count := weft.NewSignal(store, owner, 0)
//	value := count.Get(store)  // Read (records a dependency if a computation is in flight)
//	count.Set(store, 5)        // Write (propagates to dependents before returning)
//	count.Update(store, func(n *int) { *n++ })
//
// Derived[T] is a typed handle to a selector:
//
//	doubled := weft.NewDerived(store, owner, func(s *weft.Store) int {
//	    return count.Get(s) * 2
//	})
//	value := doubled.Get(store)  // Always consistent with the current atom values
//
// Every node is scoped to an Owner, the identity of the UI node it belongs
// to. Destroying the owner removes all of its nodes and unlinks them from the
// dependency graph:
//
//	store.EntityDestroyed(owner)
//
// # Consistency
//
// Propagation is synchronous: by the time Set or Update returns, every
// transitively dependent selector has been recomputed. A caller never
// observes a torn state. Recomputation order is a stack worklist, not a
// topological sort, so a selector in a diamond-shaped graph may be
// recomputed more than once per write; compute functions must be pure.
//
// # Threading
//
// The store is a single-writer, synchronous evaluator. It performs no
// locking; all access must happen on the goroutine that owns the store.
package weft
