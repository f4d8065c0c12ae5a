// Package config loads and validates the bookmind configuration.
//
// Configuration sources, lowest to highest priority:
//  1. Built-in defaults
//  2. YAML config file (bookmind.yaml)
//  3. BOOKMIND_* environment variables
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	apperr "github.com/bookmind/bookmind/internal/errors"
)

// Config is the complete bookmind configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Search     SearchConfig     `yaml:"search"`
	Reindex    ReindexConfig    `yaml:"reindex"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Env is the deployment environment: "development" or "production".
	// The debug dump endpoint is only registered in development.
	Env string `yaml:"env"`
}

// IsDevelopment reports whether the server runs in development mode.
func (s ServerConfig) IsDevelopment() bool {
	return s.Env != "production"
}

// DatabaseConfig configures the SQLite database.
type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" is accepted for tests.
	Path string `yaml:"path"`

	// DataDir holds uploaded document files.
	DataDir string `yaml:"data_dir"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedder: "ollama" or "static".
	Provider string `yaml:"provider"`

	// Model is the embedding model name (Ollama only).
	Model string `yaml:"model"`

	// OllamaHost is the Ollama API endpoint.
	OllamaHost string `yaml:"ollama_host"`

	// Dimensions is the embedding dimension. 0 means auto-detect.
	Dimensions int `yaml:"dimensions"`

	// TimeoutSecs bounds a single embedding request.
	TimeoutSecs int `yaml:"timeout_secs"`

	// MaxRetries is the number of attempts per embedding request.
	MaxRetries int `yaml:"max_retries"`

	// CacheSize is the number of query embeddings kept in the LRU cache.
	CacheSize int `yaml:"cache_size"`
}

// SearchConfig configures the search service.
type SearchConfig struct {
	// DefaultLimit is used when a request does not specify a result limit.
	DefaultLimit int `yaml:"default_limit"`

	// MaxReviews bounds how many recent reviews enrich a book's index entry.
	MaxReviews int `yaml:"max_reviews"`
}

// ReindexConfig configures full rebuilds of the vector index.
type ReindexConfig struct {
	// Workers bounds concurrent embedding calls during a rebuild.
	Workers int `yaml:"workers"`
}

// SummarizerConfig configures LLM book summaries.
type SummarizerConfig struct {
	// Provider selects the summarizer: "openrouter" or "none".
	Provider string `yaml:"provider"`

	// Model is the chat model used for summaries.
	Model string `yaml:"model"`

	// BaseURL is the OpenRouter-compatible API endpoint.
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	// TimeoutSecs bounds a single summary request.
	TimeoutSecs int `yaml:"timeout_secs"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Env:  "development",
		},
		Database: DatabaseConfig{
			Path:    "bookmind.db",
			DataDir: "data",
		},
		Embeddings: EmbeddingsConfig{
			Provider:    "ollama",
			Model:       "nomic-embed-text",
			OllamaHost:  "http://localhost:11434",
			TimeoutSecs: 30,
			MaxRetries:  3,
			CacheSize:   1000,
		},
		Search: SearchConfig{
			DefaultLimit: 5,
			MaxReviews:   5,
		},
		Reindex: ReindexConfig{
			Workers: 4,
		},
		Summarizer: SummarizerConfig{
			Provider:    "none",
			Model:       "meta-llama/llama-3-8b-instruct",
			BaseURL:     "https://openrouter.ai/api/v1",
			APIKeyEnv:   "OPENROUTER_API_KEY",
			TimeoutSecs: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the file
// does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return nil, apperr.Wrap(apperr.ErrCodeConfigNotFound, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, apperr.Wrap(apperr.ErrCodeConfigInvalid, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperr.Newf(apperr.ErrCodeConfigInvalid, "server port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return apperr.Newf(apperr.ErrCodeConfigInvalid, "database path must not be empty")
	}
	if c.Search.DefaultLimit < 1 {
		return apperr.Newf(apperr.ErrCodeConfigInvalid, "search default_limit must be >= 1, got %d", c.Search.DefaultLimit)
	}
	if c.Search.MaxReviews < 0 {
		return apperr.Newf(apperr.ErrCodeConfigInvalid, "search max_reviews must be >= 0, got %d", c.Search.MaxReviews)
	}
	if c.Reindex.Workers < 1 {
		return apperr.Newf(apperr.ErrCodeConfigInvalid, "reindex workers must be >= 1, got %d", c.Reindex.Workers)
	}
	switch c.Embeddings.Provider {
	case "ollama", "static":
	default:
		return apperr.Newf(apperr.ErrCodeConfigInvalid, "unknown embeddings provider %q", c.Embeddings.Provider)
	}
	switch c.Summarizer.Provider {
	case "openrouter", "none":
	default:
		return apperr.Newf(apperr.ErrCodeConfigInvalid, "unknown summarizer provider %q", c.Summarizer.Provider)
	}
	return nil
}

// DocumentsDir returns the directory for uploaded document files.
func (c *Config) DocumentsDir() string {
	return filepath.Join(c.Database.DataDir, "documents")
}

// applyEnvOverrides applies BOOKMIND_* environment variables on top of the
// loaded configuration.
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "BOOKMIND_HOST")
	setInt(&cfg.Server.Port, "BOOKMIND_PORT")
	setString(&cfg.Server.Env, "BOOKMIND_ENV")
	setString(&cfg.Database.Path, "BOOKMIND_DB_PATH")
	setString(&cfg.Database.DataDir, "BOOKMIND_DATA_DIR")
	setString(&cfg.Embeddings.Provider, "BOOKMIND_EMBEDDER")
	setString(&cfg.Embeddings.Model, "BOOKMIND_EMBED_MODEL")
	setString(&cfg.Embeddings.OllamaHost, "BOOKMIND_OLLAMA_HOST")
	setString(&cfg.Summarizer.Provider, "BOOKMIND_SUMMARIZER")
	setString(&cfg.Logging.Level, "BOOKMIND_LOG_LEVEL")
	setString(&cfg.Logging.File, "BOOKMIND_LOG_FILE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignoring %s=%q: not an integer\n", key, v)
		return
	}
	*dst = n
}
