// Package config provides configuration loading for VisuaLoom.
// Configuration comes from defaults, an optional YAML file, and
// VISUALOOM_* environment variable overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/visualoom/visualoom/internal/errors"
)

// Config represents the complete VisuaLoom configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Paths      PathsConfig      `yaml:"paths" json:"paths"`
	Indexer    IndexerConfig    `yaml:"indexer" json:"indexer"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Watcher    WatcherConfig    `yaml:"watcher" json:"watcher"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`
}

// PathsConfig configures where catalog state lives on disk.
type PathsConfig struct {
	// DataDir is the root data directory (default: ~/.visualoom).
	DataDir string `yaml:"data_dir" json:"data_dir"`
	// CatalogFile is the image record store, relative to DataDir unless absolute.
	CatalogFile string `yaml:"catalog_file" json:"catalog_file"`
	// TagFile is the tag store, relative to DataDir unless absolute.
	TagFile string `yaml:"tag_file" json:"tag_file"`
}

// IndexerConfig configures sweep behavior.
type IndexerConfig struct {
	// BatchSize is how many new records are persisted per intermediate
	// flush during a sweep. Bounds data loss on a late write failure.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// Workers is the embedding worker pool size (0 = NumCPU).
	Workers int `yaml:"workers" json:"workers"`
}

// EmbeddingsConfig configures the embedding collaborator.
type EmbeddingsConfig struct {
	// Provider selects the embedder: "http" (CLIP sidecar) or "static" (offline).
	Provider string `yaml:"provider" json:"provider"`
	// Endpoint is the HTTP embedding service base URL.
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// Model is the model identifier reported by the service.
	Model string `yaml:"model" json:"model"`
	// Dimensions is the fixed vector dimension D (e.g. 512).
	Dimensions int `yaml:"dimensions" json:"dimensions"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// CacheSize is the LRU size for cached text-query embeddings.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// SearchConfig configures query behavior.
type SearchConfig struct {
	// TopK is the default semantic result count.
	TopK int `yaml:"top_k" json:"top_k"`
}

// WatcherConfig configures filesystem watching of indexed roots.
type WatcherConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Debounce is the window for coalescing bursts of file events.
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// Default returns the default configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	dataDir := filepath.Join(home, ".visualoom")
	if err != nil {
		dataDir = filepath.Join(os.TempDir(), ".visualoom")
	}

	return &Config{
		Version: 1,
		Paths: PathsConfig{
			DataDir:     dataDir,
			CatalogFile: "image_data.json",
			TagFile:     "tag_data.json",
		},
		Indexer: IndexerConfig{
			BatchSize: 100,
			Workers:   0,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "http",
			Endpoint:   "http://localhost:9710",
			Model:      "clip-vit-b-32",
			Dimensions: 512,
			Timeout:    60 * time.Second,
			CacheSize:  1000,
		},
		Search: SearchConfig{
			TopK: 10,
		},
		Watcher: WatcherConfig{
			Enabled:  false,
			Debounce: 2 * time.Second,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the given path, falling back to defaults
// when the file is absent. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeConfigNotFound, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CatalogPath returns the absolute path of the catalog file.
func (c *Config) CatalogPath() string {
	return c.resolve(c.Paths.CatalogFile)
}

// TagPath returns the absolute path of the tag file.
func (c *Config) TagPath() string {
	return c.resolve(c.Paths.TagFile)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.DataDir, p)
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Embeddings.Dimensions <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions), nil)
	}
	if c.Indexer.BatchSize <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("indexer.batch_size must be positive, got %d", c.Indexer.BatchSize), nil)
	}
	if c.Search.TopK <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("search.top_k must be positive, got %d", c.Search.TopK), nil)
	}
	switch c.Embeddings.Provider {
	case "http", "static":
	default:
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("embeddings.provider must be http or static, got %q", c.Embeddings.Provider), nil)
	}
	return nil
}

// applyEnvOverrides applies VISUALOOM_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VISUALOOM_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("VISUALOOM_EMBED_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("VISUALOOM_EMBED_ENDPOINT"); v != "" {
		c.Embeddings.Endpoint = v
	}
	if v := os.Getenv("VISUALOOM_EMBED_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Embeddings.Dimensions = n
		}
	}
	if v := os.Getenv("VISUALOOM_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.TopK = n
		}
	}
	if v := os.Getenv("VISUALOOM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// DefaultConfigPath returns the path of the user config file.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "visualoom", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "visualoom", "config.yaml")
}
