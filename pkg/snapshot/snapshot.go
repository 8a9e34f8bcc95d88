// Package snapshot captures a store's nodes and dependency graph as a
// JSON-serializable document, for the inspector surface and for archival.
package snapshot

import (
	"encoding/json"
	"time"

	"github.com/weft-dev/weft/internal/errors"
	"github.com/weft-dev/weft/pkg/weft"
)

// Node is the serializable representation of one store node.
type Node struct {
	// ID is the node identifier within its store.
	ID weft.NodeID `json:"id"`

	// Kind is "atom" or "selector".
	Kind string `json:"kind"`

	// Owner is the UI node this signal is scoped to.
	Owner weft.Owner `json:"owner"`

	// Value is the node's current value as JSON, or null if the value
	// does not marshal.
	Value json.RawMessage `json:"value"`

	// DependsOn lists the nodes read during the last computation.
	// Empty for atoms.
	DependsOn []weft.NodeID `json:"depends_on,omitempty"`

	// Observers lists the owners subscribed to change notifications.
	Observers []weft.Owner `json:"observers,omitempty"`
}

// Snapshot is a point-in-time capture of a store.
type Snapshot struct {
	// Version is the serialization format version.
	Version int `json:"version"`

	// TakenAt is when the capture happened.
	TakenAt time.Time `json:"taken_at"`

	// Nodes holds every live node in ascending id order.
	Nodes []Node `json:"nodes"`
}

// CurrentVersion is the current version of the snapshot format.
// Increment when making breaking changes to the format.
const CurrentVersion = 1

// Capture walks the store and builds a snapshot. The caller must hold
// whatever lock guards the store against concurrent writers.
func Capture(s *weft.Store) *Snapshot {
	snap := &Snapshot{
		Version: CurrentVersion,
		TakenAt: time.Now().UTC(),
		Nodes:   make([]Node, 0, s.Len()),
	}
	for _, id := range s.NodeIDs() {
		kind, _ := s.Kind(id)
		owner, _ := s.OwnerOf(id)

		value := json.RawMessage("null")
		if box, ok := s.RawValue(id); ok {
			if data, err := json.Marshal(box); err == nil {
				value = data
			}
		}

		snap.Nodes = append(snap.Nodes, Node{
			ID:        id,
			Kind:      kind.String(),
			Owner:     owner,
			Value:     value,
			DependsOn: s.DependenciesOf(id),
			Observers: s.ObserversOf(id),
		})
	}
	return snap
}

// Serialize converts a snapshot to bytes.
func Serialize(snap *Snapshot) ([]byte, error) {
	snap.Version = CurrentVersion
	return json.Marshal(snap)
}

// Deserialize converts bytes back to a snapshot.
func Deserialize(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.Version > CurrentVersion {
		return nil, errors.New("E200").WithDetailf("snapshot version %d, supported up to %d", snap.Version, CurrentVersion)
	}
	return &snap, nil
}
