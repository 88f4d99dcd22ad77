// Package config provides configuration loading and structs for the ragd server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Index      IndexConfig      `yaml:"index"`
	Search     SearchConfig     `yaml:"search"`
	Prompt     PromptConfig     `yaml:"prompt"`
	Generation GenerationConfig `yaml:"generation"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// StorageConfig holds the embedding snapshot database path. An empty path disables snapshots.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	Disabled     bool   `yaml:"disabled"`
}

// CatalogConfig describes where the catalog lives and how its columns are used.
type CatalogConfig struct {
	Source           string   `yaml:"source"`
	Sheet            string   `yaml:"sheet"`
	IDColumn         string   `yaml:"id_column"`
	TextColumn       string   `yaml:"text_column"`
	TitleColumn      string   `yaml:"title_column"`
	PayloadColumns   []string `yaml:"payload_columns"`
	MaxRows          int      `yaml:"max_rows"`
	EmbedConcurrency int      `yaml:"embed_concurrency"`
	Watch            bool     `yaml:"watch"`
	S3               S3Config `yaml:"s3"`
}

// S3Config holds object storage settings for s3:// catalog sources.
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Region          string `yaml:"region"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// EmbeddingConfig selects and configures the embedder. Dimensions is EMBED_DIM.
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider"`
	Dimensions int           `yaml:"dimensions"`
	Model      string        `yaml:"model"`
	BaseURL    string        `yaml:"base_url"`
	ModelPath  string        `yaml:"model_path"`
	MaxTokens  int           `yaml:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout"`
}

// IndexConfig selects the vector index implementation.
type IndexConfig struct {
	Type     string `yaml:"type"`
	M        int    `yaml:"m"`
	EfSearch int    `yaml:"ef_search"`
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	DefaultK          int     `yaml:"default_k"`
	MaxK              int     `yaml:"max_k"`
	KeywordTitleBoost float64 `yaml:"keyword_title_boost"`
	// KeywordWeight and SemanticWeight weight the sources of hybrid catalog search.
	KeywordWeight    float64 `yaml:"keyword_weight"`
	SemanticWeight   float64 `yaml:"semantic_weight"`
	HybridCandidates int     `yaml:"hybrid_candidates"`
}

// PromptConfig holds prompt assembly settings. MaxLength is counted in Unicode code points.
type PromptConfig struct {
	Template  string `yaml:"template"`
	MaxLength int    `yaml:"max_length"`
}

// GenerationConfig holds generation backend settings.
type GenerationConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// Load reads and parses the config file at path, applies defaults and environment overrides,
// and expands paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	if !strings.HasPrefix(cfg.Catalog.Source, "s3://") {
		cfg.Catalog.Source = expandPath(cfg.Catalog.Source, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with defaults and environment overrides applied, for running
// without a config file. Relative paths resolve against the working directory.
func Default() (*Config, error) {
	var cfg Config
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Search.DefaultK <= 0 {
		return fmt.Errorf("search.default_k must be positive, got %d", c.Search.DefaultK)
	}
	if c.Search.MaxK < c.Search.DefaultK {
		return fmt.Errorf("search.max_k (%d) must be at least search.default_k (%d)", c.Search.MaxK, c.Search.DefaultK)
	}
	if c.Prompt.MaxLength <= 0 {
		return fmt.Errorf("prompt.max_length must be positive, got %d", c.Prompt.MaxLength)
	}
	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("generation.timeout must be positive, got %s", c.Generation.Timeout)
	}
	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("generation.max_retries must not be negative, got %d", c.Generation.MaxRetries)
	}
	return nil
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" paths are relative to the home directory; other relative paths are left as they are.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
