package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/weft-dev/weft/pkg/weft"
)

func buildStore(t *testing.T) (*weft.Store, weft.Signal[int], weft.Derived[int]) {
	t.Helper()
	s := weft.NewStore()
	count := weft.NewSignal(s, 1, 4)
	doubled := weft.NewDerived(s, 2, func(st *weft.Store) int {
		return count.Get(st) * 2
	})
	doubled.Observe(s, 2)
	return s, count, doubled
}

func TestCapture(t *testing.T) {
	s, count, doubled := buildStore(t)

	snap := Capture(s)

	if snap.Version != CurrentVersion {
		t.Errorf("expected version %d, got %d", CurrentVersion, snap.Version)
	}
	if len(snap.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(snap.Nodes))
	}

	atom := snap.Nodes[0]
	if atom.ID != count.ID() || atom.Kind != "atom" || atom.Owner != 1 {
		t.Errorf("unexpected atom node: %+v", atom)
	}
	if string(atom.Value) != "4" {
		t.Errorf("expected atom value 4, got %s", atom.Value)
	}
	if len(atom.DependsOn) != 0 {
		t.Errorf("atoms have no dependencies, got %v", atom.DependsOn)
	}

	sel := snap.Nodes[1]
	if sel.ID != doubled.ID() || sel.Kind != "selector" || sel.Owner != 2 {
		t.Errorf("unexpected selector node: %+v", sel)
	}
	if string(sel.Value) != "8" {
		t.Errorf("expected selector value 8, got %s", sel.Value)
	}
	if len(sel.DependsOn) != 1 || sel.DependsOn[0] != count.ID() {
		t.Errorf("expected selector to depend on %d, got %v", count.ID(), sel.DependsOn)
	}
	if len(sel.Observers) != 1 || sel.Observers[0] != 2 {
		t.Errorf("expected observers [2], got %v", sel.Observers)
	}
}

func TestCaptureUnmarshalableValue(t *testing.T) {
	s := weft.NewStore()
	weft.NewSignal(s, 1, func() {}) // functions do not marshal

	snap := Capture(s)
	if string(snap.Nodes[0].Value) != "null" {
		t.Errorf("expected null for unmarshalable value, got %s", snap.Nodes[0].Value)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	s, _, _ := buildStore(t)
	snap := Capture(s)

	data, err := Serialize(snap)
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}

	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	if got.Version != CurrentVersion {
		t.Errorf("expected version %d, got %d", CurrentVersion, got.Version)
	}
	if len(got.Nodes) != len(snap.Nodes) {
		t.Fatalf("expected %d nodes, got %d", len(snap.Nodes), len(got.Nodes))
	}
	for i, n := range got.Nodes {
		if n.ID != snap.Nodes[i].ID || n.Kind != snap.Nodes[i].Kind {
			t.Errorf("node %d differs: %+v vs %+v", i, n, snap.Nodes[i])
		}
	}
}

func TestDeserializeRejectsNewerVersion(t *testing.T) {
	data, err := json.Marshal(map[string]any{"version": CurrentVersion + 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Deserialize(data); err == nil {
		t.Error("expected an error for an unsupported version")
	}
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	if _, err := Deserialize([]byte("{not json")); err == nil {
		t.Error("expected an error for malformed input")
	}
}
