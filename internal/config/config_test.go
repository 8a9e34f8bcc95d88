package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()
	if cfg.Inspector.Host != DefaultHost || cfg.Inspector.Port != DefaultPort {
		t.Errorf("unexpected inspector defaults: %+v", cfg.Inspector)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("unexpected namespace %q", cfg.Metrics.Namespace)
	}
	if cfg.Snapshot.Prefix != DefaultSnapshotPrefix {
		t.Errorf("unexpected snapshot prefix %q", cfg.Snapshot.Prefix)
	}
	if cfg.SnapshotEnabled() {
		t.Error("snapshot archiving should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Inspector.Port != DefaultPort {
		t.Errorf("expected default port, got %d", cfg.Inspector.Port)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	raw := `{"name": "demo", "inspector": {"port": 9000}, "snapshot": {"bucket": "graphs"}}`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Name != "demo" {
		t.Errorf("expected name demo, got %q", cfg.Name)
	}
	if cfg.Inspector.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Inspector.Port)
	}
	if cfg.Inspector.Host != DefaultHost {
		t.Errorf("host should default, got %q", cfg.Inspector.Host)
	}
	if !cfg.SnapshotEnabled() {
		t.Error("snapshot archiving should be enabled")
	}
	if cfg.Snapshot.Prefix != DefaultSnapshotPrefix {
		t.Errorf("prefix should default, got %q", cfg.Snapshot.Prefix)
	}
	if got := cfg.InspectorAddress(); got != "127.0.0.1:9000" {
		t.Errorf("unexpected address %q", got)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestValidate(t *testing.T) {
	cfg := New()
	cfg.Inspector.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an out-of-range port")
	}

	cfg = New()
	cfg.Snapshot.MaxAgeHours = 24
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for pruning without a bucket")
	}

	cfg.Snapshot.Bucket = "graphs"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.Name = "demo"
	path := filepath.Join(dir, ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name != "demo" {
		t.Errorf("expected name demo, got %q", loaded.Name)
	}
	if loaded.Path() != path {
		t.Errorf("expected path %q, got %q", path, loaded.Path())
	}
	if !Exists(dir) {
		t.Error("Exists should report the saved config")
	}
}
