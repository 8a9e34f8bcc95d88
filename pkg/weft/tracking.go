package weft

// trackingContext is the store's single "current computation" register.
// It is a plain field rather than goroutine-local state: the store is
// single-threaded by contract, and keeping the slot on the struct makes
// that contract visible.
type trackingContext struct {
	// current is the selector whose computation is in flight.
	current NodeID

	// active reports whether a tracking session is open. Reads record
	// dependencies only while active.
	active bool

	// reads accumulates the nodes read during the current session.
	reads map[NodeID]struct{}

	// chain is the stack of selectors currently being computed, outermost
	// first. Used to fail fast on cyclic dependencies.
	chain []NodeID
}

// recordRead notes that id was read during the current tracking session,
// if one is open. A selector reading its own cached value is not a
// dependency on itself.
func (s *Store) recordRead(id NodeID) {
	if !s.tracking.active || s.tracking.current == id {
		return
	}
	s.tracking.reads[id] = struct{}{}
}

// dependencyTracker scopes a tracking session around a single selector
// computation. Sessions nest across recursive selector evaluation; each
// level saves and restores the previous session.
type dependencyTracker struct {
	store       *Store
	prevCurrent NodeID
	prevActive  bool
	prevReads   map[NodeID]struct{}
}

// beginTracking opens a tracking session for id, saving the previous one.
func (s *Store) beginTracking(id NodeID) *dependencyTracker {
	t := &dependencyTracker{
		store:       s,
		prevCurrent: s.tracking.current,
		prevActive:  s.tracking.active,
		prevReads:   s.tracking.reads,
	}
	s.tracking.current = id
	s.tracking.active = true
	s.tracking.reads = make(map[NodeID]struct{})
	s.tracking.chain = append(s.tracking.chain, id)
	return t
}

// finish closes the session, restores the previous one, and returns the
// dependency set discovered during this session.
func (t *dependencyTracker) finish() map[NodeID]struct{} {
	s := t.store
	reads := s.tracking.reads
	s.tracking.current = t.prevCurrent
	s.tracking.active = t.prevActive
	s.tracking.reads = t.prevReads
	s.tracking.chain = s.tracking.chain[:len(s.tracking.chain)-1]
	return reads
}

// computing reports whether id is on the in-flight selector chain.
func (s *Store) computing(id NodeID) bool {
	for _, c := range s.tracking.chain {
		if c == id {
			return true
		}
	}
	return false
}
