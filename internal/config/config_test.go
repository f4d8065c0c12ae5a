package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/bookmind/bookmind/internal/errors"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ollama", cfg.Embeddings.Provider)
	assert.Equal(t, 5, cfg.Search.DefaultLimit)
	assert.Equal(t, 5, cfg.Search.MaxReviews)
	assert.True(t, cfg.Server.IsDevelopment())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmind.yaml")
	content := `
server:
  port: 9090
  env: production
embeddings:
  provider: static
search:
  default_limit: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "static", cfg.Embeddings.Provider)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.False(t, cfg.Server.IsDevelopment())
	// Untouched sections keep defaults.
	assert.Equal(t, "bookmind.db", cfg.Database.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("BOOKMIND_PORT", "7070")
	t.Setenv("BOOKMIND_EMBEDDER", "static")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "static", cfg.Embeddings.Provider)
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, apperr.ErrCodeConfigInvalid, apperr.GetCode(err))
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero default limit", func(c *Config) { c.Search.DefaultLimit = 0 }},
		{"negative max reviews", func(c *Config) { c.Search.MaxReviews = -1 }},
		{"zero workers", func(c *Config) { c.Reindex.Workers = 0 }},
		{"unknown embedder", func(c *Config) { c.Embeddings.Provider = "bert" }},
		{"unknown summarizer", func(c *Config) { c.Summarizer.Provider = "gpt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
