package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/weft-dev/weft/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "weft.json"

	// DefaultPort is the default inspector port.
	DefaultPort = 7676

	// DefaultHost is the default inspector host. Loopback: the inspector
	// exposes application state and is a development tool.
	DefaultHost = "127.0.0.1"

	// DefaultNamespace is the default Prometheus metrics namespace.
	DefaultNamespace = "weft"

	// DefaultSnapshotPrefix is the default S3 key prefix for archived
	// snapshots.
	DefaultSnapshotPrefix = "snapshots/"
)

// Config represents the complete weft.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Inspector contains devtools server configuration.
	Inspector InspectorConfig `json:"inspector,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Snapshot contains S3 snapshot archiving configuration.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InspectorConfig contains devtools server settings.
type InspectorConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to serve the inspector on.
	Port int `json:"port,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// SnapshotConfig contains S3 snapshot archiving settings.
// Archiving is enabled by setting Bucket.
type SnapshotConfig struct {
	// Bucket is the S3 bucket to archive snapshots to.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 key prefix for archived snapshots.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region of the bucket.
	Region string `json:"region,omitempty"`

	// MaxAgeHours prunes archived snapshots older than this on each
	// archive run. Zero disables pruning.
	MaxAgeHours int `json:"maxAgeHours,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Inspector: InspectorConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Snapshot: SnapshotConfig{
			Prefix: DefaultSnapshotPrefix,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for weft.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. A missing
// file is not an error: defaults are returned so the tooling works in
// projects without a weft.json.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.New("E100").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E100").
			WithDetail("Failed to parse weft.json: " + err.Error()).
			WithSuggestion("Check that weft.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E100").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E100").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Inspector.Host == "" {
		c.Inspector.Host = DefaultHost
	}
	if c.Inspector.Port == 0 {
		c.Inspector.Port = DefaultPort
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Snapshot.Prefix == "" {
		c.Snapshot.Prefix = DefaultSnapshotPrefix
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Inspector.Port < 1 || c.Inspector.Port > 65535 {
		return errors.New("E101").
			WithDetailf("Port %d must be between 1 and 65535", c.Inspector.Port)
	}
	if c.Snapshot.Bucket == "" && c.Snapshot.MaxAgeHours != 0 {
		return errors.New("E102").
			WithSuggestion("Set snapshot.bucket or remove snapshot.maxAgeHours")
	}
	if c.Snapshot.MaxAgeHours < 0 {
		return errors.Newf(errors.CategoryConfig, "snapshot.maxAgeHours must not be negative")
	}
	return nil
}

// SnapshotEnabled reports whether S3 snapshot archiving is configured.
func (c *Config) SnapshotEnabled() bool {
	return c.Snapshot.Bucket != ""
}

// InspectorAddress returns the listen address for the inspector.
func (c *Config) InspectorAddress() string {
	return c.Inspector.Host + ":" + strconv.Itoa(c.Inspector.Port)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
