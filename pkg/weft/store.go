package weft

import (
	"fmt"
	"slices"
	"time"
)

// Store owns all node values, the bidirectional dependency graph, compute
// functions, observer sets, and per-owner node inventories. It is the
// single synchronous evaluator behind Signal and Derived handles.
//
// Invariant: dependencies and dependents are exact inverses of each other
// outside of an in-progress mutation:
//
//	b ∈ dependencies[a]  ⇔  a ∈ dependents[b]
type Store struct {
	lastID NodeID

	// values holds the current value of every live node, boxed as *T.
	values map[NodeID]any

	// dependencies maps a selector to the nodes it read during its last
	// computation. dependents is the inverse relation.
	dependencies map[NodeID]map[NodeID]struct{}
	dependents   map[NodeID]map[NodeID]struct{}

	// compute holds the registered compute function per selector. The
	// function evaluates and stores the new value but does not propagate.
	compute map[NodeID]func(*Store)

	// observers are the UI-facing owners subscribed to each node. The
	// store never notifies them itself; the external binding layer reads
	// the set after a change.
	observers map[NodeID]map[Owner]struct{}

	// owned is each owner's node inventory, used solely for bulk cleanup.
	// ownerOf is the inverse, maintained for removal and introspection.
	owned   map[Owner]map[NodeID]struct{}
	ownerOf map[NodeID]Owner

	kinds map[NodeID]NodeKind

	tracking trackingContext

	inst Instrument
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithInstrument attaches an instrumentation hook to the store.
func WithInstrument(inst Instrument) StoreOption {
	return func(s *Store) {
		if inst != nil {
			s.inst = inst
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		values:       make(map[NodeID]any),
		dependencies: make(map[NodeID]map[NodeID]struct{}),
		dependents:   make(map[NodeID]map[NodeID]struct{}),
		compute:      make(map[NodeID]func(*Store)),
		observers:    make(map[NodeID]map[Owner]struct{}),
		owned:        make(map[Owner]map[NodeID]struct{}),
		ownerOf:      make(map[NodeID]Owner),
		kinds:        make(map[NodeID]NodeKind),
		inst:         NopInstrument{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextID returns a fresh, never-before-issued node identifier.
func (s *Store) NextID() NodeID {
	s.lastID++
	return s.lastID
}

// register records a node under its owner's inventory.
func (s *Store) register(id NodeID, owner Owner, kind NodeKind) {
	inv, ok := s.owned[owner]
	if !ok {
		inv = make(map[NodeID]struct{})
		s.owned[owner] = inv
	}
	inv[id] = struct{}{}
	s.ownerOf[id] = owner
	s.kinds[id] = kind
	s.inst.NodeAdded(id, kind, owner)
}

// Get returns the value stored for id, recording a dependency edge if a
// tracking session is open. ok is false if the node was never created or
// has been removed. Panics if the stored value is not of type T.
func Get[T any](s *Store, id NodeID) (T, bool) {
	s.recordRead(id)
	box, exists := s.values[id]
	if !exists {
		var zero T
		return zero, false
	}
	p, ok := box.(*T)
	if !ok {
		panic(fmt.Sprintf("[WEFT E002] node %d holds %T, not the requested type", id, box))
	}
	return *p, true
}

// GetMut returns a pointer to the value stored for id, with the same
// dependency-recording behavior as Get. Mutating through the pointer does
// not propagate; callers must invoke UpdateDependents afterwards (Signal
// Update does this).
func GetMut[T any](s *Store, id NodeID) (*T, bool) {
	s.recordRead(id)
	box, exists := s.values[id]
	if !exists {
		return nil, false
	}
	p, ok := box.(*T)
	if !ok {
		panic(fmt.Sprintf("[WEFT E002] node %d holds %T, not the requested type", id, box))
	}
	return p, true
}

// Set overwrites the value stored for id and recomputes all transitive
// dependents before returning. Panics if id has a registered compute
// function: derived values are solely a function of their dependencies.
func Set[T any](s *Store, id NodeID, value T) {
	if _, isSelector := s.compute[id]; isSelector {
		panic(fmt.Sprintf("[WEFT E003] node %d is derived and cannot be written directly", id))
	}
	putValue(s, id, &value)
	s.UpdateDependents(id)
}

// putValue writes a boxed value, enforcing that a node's stored type never
// changes across its lifetime.
func putValue[T any](s *Store, id NodeID, value *T) {
	if old, exists := s.values[id]; exists {
		if _, ok := old.(*T); !ok {
			panic(fmt.Sprintf("[WEFT E002] node %d holds %T, cannot store %T", id, old, value))
		}
	}
	s.values[id] = value
}

// RegisterComputeFn associates a compute function with a selector id. It
// does not evaluate the function; call RecomputeSelector to populate the
// initial value.
func RegisterComputeFn[T any](s *Store, id NodeID, compute func(*Store) T) {
	s.compute[id] = func(st *Store) {
		v := compute(st)
		putValue(st, id, &v)
	}
}

// RecomputeSelector evaluates the compute function registered for id
// inside a tracking session, then reconciles the dependency graph against
// the dependency set discovered during the evaluation: edges that
// disappeared are removed, edges that appeared are added. The graph is
// never rebuilt wholesale.
//
// Panics if id is already being computed (a cyclic selector graph).
func (s *Store) RecomputeSelector(id NodeID) {
	fn, ok := s.compute[id]
	if !ok {
		return
	}
	if s.computing(id) {
		panic(fmt.Sprintf("[WEFT E004] cyclic dependency: selector %d read during its own computation (chain %v)", id, s.tracking.chain))
	}

	start := time.Now()
	tracker := s.beginTracking(id)
	fn(s)
	discovered := tracker.finish()

	previous := s.dependencies[id]
	for dep := range previous {
		if _, still := discovered[dep]; !still {
			s.unlink(dep, id)
		}
	}
	for dep := range discovered {
		if _, had := previous[dep]; !had {
			s.link(dep, id)
		}
	}
	if len(discovered) > 0 {
		s.dependencies[id] = discovered
	} else {
		delete(s.dependencies, id)
	}

	s.inst.SelectorRecomputed(id, len(discovered), time.Since(start))
}

// link adds the edge dep -> dependent to both graph directions.
func (s *Store) link(dep, dependent NodeID) {
	subs, ok := s.dependents[dep]
	if !ok {
		subs = make(map[NodeID]struct{})
		s.dependents[dep] = subs
	}
	subs[dependent] = struct{}{}
}

// unlink removes dependent from dep's dependents set.
func (s *Store) unlink(dep, dependent NodeID) {
	subs, ok := s.dependents[dep]
	if !ok {
		return
	}
	delete(subs, dependent)
	if len(subs) == 0 {
		delete(s.dependents, dep)
	}
}

// UpdateDependents recomputes every selector transitively reachable from
// id through the dependents graph. The traversal is a stack worklist: each
// popped node recomputes its direct dependents and re-enqueues them, so a
// node recomputed late (through a deeper path) refreshes its own
// dependents in turn. The visited set only collapses duplicates already
// pending on the stack. The order is not a topological sort, so a
// selector reachable through paths of unequal depth is recomputed once
// per incoming edge visit; compute functions are pure, so the extra
// recomputes are redundant rather than incorrect, and the last one sees
// settled inputs. The worklist terminates because re-enqueueing only
// follows forward edges and cyclic graphs already fail the recompute.
func (s *Store) UpdateDependents(id NodeID) {
	s.inst.ValueChanged(id)

	if len(s.dependents[id]) == 0 {
		return
	}

	start := time.Now()
	visited := make(map[NodeID]struct{})
	stack := []NodeID{id}

	recomputed := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}

		// Recomputing a dependent rewires its edges, so iterate a copy.
		for _, sub := range sortedIDs(s.dependents[cur]) {
			s.RecomputeSelector(sub)
			s.inst.ValueChanged(sub)
			recomputed++
			// The fresh value must reach sub's own dependents even if
			// sub was already processed through a shallower path.
			delete(visited, sub)
			stack = append(stack, sub)
		}
	}

	s.inst.PropagationFinished(id, recomputed, time.Since(start))
}

// Observe subscribes owner to change notifications for id. The store only
// maintains the set; the external binding layer is responsible for
// reading it and scheduling whatever re-render it implies.
func (s *Store) Observe(id NodeID, owner Owner) {
	obs, ok := s.observers[id]
	if !ok {
		obs = make(map[Owner]struct{})
		s.observers[id] = obs
	}
	obs[owner] = struct{}{}
}

// RemoveSignal deletes the node's value, compute function, and observer
// set, and detaches it from the dependency graph in both directions.
// Removing an already-removed id is a no-op.
func (s *Store) RemoveSignal(id NodeID) {
	_, hadValue := s.values[id]
	_, hadOwner := s.ownerOf[id]
	if !hadValue && !hadOwner {
		return
	}

	delete(s.values, id)
	delete(s.compute, id)
	delete(s.observers, id)
	delete(s.kinds, id)

	// Nodes this one depended on no longer list it as a dependent.
	for dep := range s.dependencies[id] {
		s.unlink(dep, id)
	}
	delete(s.dependencies, id)

	// Selectors that depended on this node drop the edge. Their values
	// are left as-is; the owner teardown that triggers removal tears the
	// consumers down too.
	for sub := range s.dependents[id] {
		if deps, ok := s.dependencies[sub]; ok {
			delete(deps, id)
			if len(deps) == 0 {
				delete(s.dependencies, sub)
			}
		}
	}
	delete(s.dependents, id)

	if owner, ok := s.ownerOf[id]; ok {
		if inv, ok := s.owned[owner]; ok {
			delete(inv, id)
			if len(inv) == 0 {
				delete(s.owned, owner)
			}
		}
		delete(s.ownerOf, id)
	}

	s.inst.NodeRemoved(id)
}

// EntityDestroyed removes every node owned by owner and forgets the
// owner's inventory. Called by the surrounding tree when the owning UI
// node is destroyed.
func (s *Store) EntityDestroyed(owner Owner) {
	for id := range s.owned[owner] {
		s.RemoveSignal(id)
	}
	delete(s.owned, owner)
}

// =============================================================================
// Read-only graph accessors (inspector / snapshot surface)
// =============================================================================

// Len returns the number of live nodes.
func (s *Store) Len() int {
	return len(s.kinds)
}

// NodeIDs returns the ids of all live nodes in ascending order.
func (s *Store) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(s.kinds))
	for id := range s.kinds {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Kind returns the node kind for id.
func (s *Store) Kind(id NodeID) (NodeKind, bool) {
	k, ok := s.kinds[id]
	return k, ok
}

// OwnerOf returns the owner id belongs to.
func (s *Store) OwnerOf(id NodeID) (Owner, bool) {
	o, ok := s.ownerOf[id]
	return o, ok
}

// RawValue returns the boxed value stored for id without recording a
// dependency. Intended for serialization; the box is a pointer to the
// stored value and must not be mutated.
func (s *Store) RawValue(id NodeID) (any, bool) {
	box, ok := s.values[id]
	return box, ok
}

// DependenciesOf returns the nodes id read during its last computation,
// in ascending order.
func (s *Store) DependenciesOf(id NodeID) []NodeID {
	return sortedIDs(s.dependencies[id])
}

// DependentsOf returns the selectors that depend on id, in ascending order.
func (s *Store) DependentsOf(id NodeID) []NodeID {
	return sortedIDs(s.dependents[id])
}

// ObserversOf returns the owners observing id, in ascending order.
func (s *Store) ObserversOf(id NodeID) []Owner {
	obs := s.observers[id]
	if len(obs) == 0 {
		return nil
	}
	owners := make([]Owner, 0, len(obs))
	for o := range obs {
		owners = append(owners, o)
	}
	slices.Sort(owners)
	return owners
}

func sortedIDs(set map[NodeID]struct{}) []NodeID {
	if len(set) == 0 {
		return nil
	}
	ids := make([]NodeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
