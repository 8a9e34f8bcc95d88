package weft

// NodeID identifies a stored value (atom) or computed value (selector).
// IDs are issued per store, monotonically, and never reused while the
// store lives.
type NodeID uint64

// Owner is the identity of the UI node a signal is scoped to. Owners are
// issued by the surrounding tree (or by Root.NewOwner for tests and demos)
// and are used solely for bulk lifecycle cleanup.
type Owner uint64

// NodeKind discriminates atoms from selectors.
type NodeKind uint8

const (
	// KindAtom is an independently writable unit of state.
	KindAtom NodeKind = iota + 1

	// KindSelector is a value computed from other nodes, recomputed
	// automatically when its recorded dependencies change.
	KindSelector
)

// String returns a human-readable name for the node kind.
func (k NodeKind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindSelector:
		return "selector"
	default:
		return "unknown"
	}
}
