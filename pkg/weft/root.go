package weft

// Root owns one Store and exposes the entry points the surrounding UI
// system uses to create state. The tree hands each UI node an Owner and
// reports the node's destruction back through EntityDestroyed.
type Root struct {
	store     *Store
	lastOwner Owner
}

// NewRoot creates a Root with a fresh store.
func NewRoot(opts ...StoreOption) *Root {
	return &Root{store: NewStore(opts...)}
}

// Store returns the underlying store.
func (r *Root) Store() *Store {
	return r.store
}

// NewOwner issues a fresh owner identity. Surrounding systems that have
// their own node identities can use those directly instead.
func (r *Root) NewOwner() Owner {
	r.lastOwner++
	return r.lastOwner
}

// EntityDestroyed bulk-frees every signal scoped to owner.
func (r *Root) EntityDestroyed(owner Owner) {
	r.store.EntityDestroyed(owner)
}

// State creates an atom scoped to owner.
func State[T any](r *Root, owner Owner, initial T) Signal[T] {
	return NewSignal(r.store, owner, initial)
}

// DerivedOf creates a selector scoped to owner and evaluates it once.
func DerivedOf[T any](r *Root, owner Owner, compute func(*Store) T) Derived[T] {
	return NewDerived(r.store, owner, compute)
}
