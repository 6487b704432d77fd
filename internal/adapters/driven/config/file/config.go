package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Backend names selectable in configuration.
const (
	BackendGCS    = "gcs"
	BackendMemory = "memory"
)

// configFileName is the file the CLI reads inside the config directory.
const configFileName = "config.toml"

// Config is the full CLI configuration.
type Config struct {
	// Backend selects the storage backend: "gcs" (default) or
	// "memory" for a process-local sandbox.
	Backend string `toml:"backend"`

	// DataDir overrides where local state (the job database) lives.
	// Empty means ~/.kbsync/data.
	DataDir string `toml:"data_dir,omitempty"`

	Tenant TenantConfig `toml:"tenant"`
	Blob   BlobConfig   `toml:"blob"`
	Chunks ChunkConfig  `toml:"chunks"`
	Worker WorkerConfig `toml:"worker"`
	Sync   SyncConfig   `toml:"sync"`
}

// TenantConfig identifies whose files the CLI manages.
type TenantConfig struct {
	// ID is the tenant identifier. Every remote call is scoped to it.
	ID string `toml:"id"`
}

// BlobConfig configures the blob store backend.
type BlobConfig struct {
	// Bucket is the GCS bucket holding source files.
	Bucket string `toml:"bucket"`

	// CredentialsFile optionally points at a service account key.
	// Empty means application default credentials.
	CredentialsFile string `toml:"credentials_file,omitempty"`
}

// ChunkConfig configures the vector store REST API.
type ChunkConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`

	// RequestsPerSecond bounds the client request rate. Zero means the
	// adapter default.
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty"`
}

// WorkerConfig configures the indexing worker API.
type WorkerConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`

	// PollIntervalSeconds overrides the job status poll interval.
	PollIntervalSeconds int `toml:"poll_interval_seconds,omitempty"`

	// MaxPollAttempts caps status polls per job before it is treated as
	// failed. Zero means the service default.
	MaxPollAttempts int `toml:"max_poll_attempts,omitempty"`
}

// SyncConfig configures the local catalog refresh.
type SyncConfig struct {
	// RefreshIntervalSeconds overrides the background catalog refresh
	// interval. Zero means the service default.
	RefreshIntervalSeconds int `toml:"refresh_interval_seconds,omitempty"`
}

// DefaultDir returns the default config directory, ~/.kbsync.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".kbsync"), nil
}

// Load reads the configuration from configDir. A missing file yields a
// zero config with the default backend, not an error, so first-run
// commands can explain what to configure.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		var err error
		configDir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{Backend: BackendGCS}

	data, err := os.ReadFile(filepath.Join(configDir, configFileName))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendGCS
	}
	return cfg, nil
}

// Save writes the configuration to configDir with restricted
// permissions.
func Save(configDir string, cfg *Config) error {
	if configDir == "" {
		var err error
		configDir, err = DefaultDir()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// API keys live in here
	if err := os.WriteFile(filepath.Join(configDir, configFileName), data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if c.Tenant.ID == "" {
		return fmt.Errorf("tenant.id is not set")
	}

	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendGCS:
		if c.Blob.Bucket == "" {
			return fmt.Errorf("blob.bucket is not set")
		}
		if c.Chunks.BaseURL == "" || c.Chunks.APIKey == "" {
			return fmt.Errorf("chunks.base_url and chunks.api_key must be set")
		}
		if c.Worker.BaseURL == "" || c.Worker.APIKey == "" {
			return fmt.Errorf("worker.base_url and worker.api_key must be set")
		}
		return nil
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
}
