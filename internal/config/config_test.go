package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 512, cfg.Embeddings.Dimensions)
	assert.Equal(t, 100, cfg.Indexer.BatchSize)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Search.TopK, cfg.Search.TopK)
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
version: 1
embeddings:
  provider: static
  dimensions: 256
search:
  top_k: 25
watcher:
  enabled: true
  debounce: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "static", cfg.Embeddings.Provider)
	assert.Equal(t, 256, cfg.Embeddings.Dimensions)
	assert.Equal(t, 25, cfg.Search.TopK)
	assert.True(t, cfg.Watcher.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Watcher.Debounce)
}

func TestLoad_MalformedYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	t.Setenv("VISUALOOM_EMBED_PROVIDER", "static")
	t.Setenv("VISUALOOM_EMBED_DIMENSIONS", "128")
	t.Setenv("VISUALOOM_TOP_K", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "static", cfg.Embeddings.Provider)
	assert.Equal(t, 128, cfg.Embeddings.Dimensions)
	assert.Equal(t, 3, cfg.Search.TopK)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dimensions", func(c *Config) { c.Embeddings.Dimensions = 0 }},
		{"zero batch size", func(c *Config) { c.Indexer.BatchSize = 0 }},
		{"zero top k", func(c *Config) { c.Search.TopK = 0 }},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "carrier-pigeon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCatalogPath_ResolvesRelativeToDataDir(t *testing.T) {
	cfg := Default()
	cfg.Paths.DataDir = "/data"
	assert.Equal(t, filepath.Join("/data", "image_data.json"), cfg.CatalogPath())

	cfg.Paths.CatalogFile = "/elsewhere/cat.json"
	assert.Equal(t, "/elsewhere/cat.json", cfg.CatalogPath())
}
