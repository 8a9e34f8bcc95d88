// Package inspect serves a store's dependency graph over HTTP for
// debugging: JSON snapshots, per-node lookups, Prometheus metrics, and a
// live WebSocket event feed.
package inspect

import (
	"sync"
	"time"

	"github.com/weft-dev/weft/pkg/weft"
)

// EventType discriminates feed events.
type EventType string

const (
	EventNodeAdded    EventType = "node_added"
	EventNodeRemoved  EventType = "node_removed"
	EventValueChanged EventType = "value_changed"
	EventRecompute    EventType = "recompute"
	EventPropagation  EventType = "propagation"
)

// Event is one store lifecycle notification, shaped for the wire.
type Event struct {
	Type EventType `json:"type"`

	// NodeID is the subject node; for propagation events it is the origin.
	NodeID weft.NodeID `json:"node_id"`

	Kind  string     `json:"kind,omitempty"`
	Owner weft.Owner `json:"owner,omitempty"`

	// Deps is the dependency count discovered by a recompute.
	Deps int `json:"deps,omitempty"`

	// Recomputed is the edge recompute count of a propagation.
	Recomputed int `json:"recomputed,omitempty"`

	ElapsedMicros int64     `json:"elapsed_us,omitempty"`
	At            time.Time `json:"at"`
}

// Feed is a weft.Instrument that fans store events out to WebSocket
// subscribers. Publishing never blocks: a subscriber that falls behind
// its channel buffer loses events rather than stalling the store.
type Feed struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	buffer int
}

// NewFeed creates a feed whose subscriber channels buffer up to buffer
// events.
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 64
	}
	return &Feed{
		subs:   make(map[chan Event]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber channel.
func (f *Feed) Subscribe() chan Event {
	ch := make(chan Event, f.buffer)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (f *Feed) Unsubscribe(ch chan Event) {
	f.mu.Lock()
	if _, ok := f.subs[ch]; ok {
		delete(f.subs, ch)
		close(ch)
	}
	f.mu.Unlock()
}

func (f *Feed) publish(ev Event) {
	ev.At = time.Now().UTC()
	f.mu.Lock()
	for ch := range f.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is full; drop rather than block the store.
		}
	}
	f.mu.Unlock()
}

func (f *Feed) NodeAdded(id weft.NodeID, kind weft.NodeKind, owner weft.Owner) {
	f.publish(Event{Type: EventNodeAdded, NodeID: id, Kind: kind.String(), Owner: owner})
}

func (f *Feed) NodeRemoved(id weft.NodeID) {
	f.publish(Event{Type: EventNodeRemoved, NodeID: id})
}

func (f *Feed) ValueChanged(id weft.NodeID) {
	f.publish(Event{Type: EventValueChanged, NodeID: id})
}

func (f *Feed) SelectorRecomputed(id weft.NodeID, deps int, elapsed time.Duration) {
	f.publish(Event{Type: EventRecompute, NodeID: id, Deps: deps, ElapsedMicros: elapsed.Microseconds()})
}

func (f *Feed) PropagationFinished(origin weft.NodeID, recomputed int, elapsed time.Duration) {
	f.publish(Event{Type: EventPropagation, NodeID: origin, Recomputed: recomputed, ElapsedMicros: elapsed.Microseconds()})
}

var _ weft.Instrument = (*Feed)(nil)
