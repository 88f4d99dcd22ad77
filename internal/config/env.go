package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RAGD_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg fields from RAGD_* variables. It runs before ApplyDefaults, so an
// override always wins over both the file and the defaults.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	strs := map[string]*string{
		"HOST":                 &cfg.Server.Host,
		"CATALOG_SOURCE":       &cfg.Catalog.Source,
		"CATALOG_SHEET":        &cfg.Catalog.Sheet,
		"S3_ENDPOINT":          &cfg.Catalog.S3.Endpoint,
		"S3_ACCESS_KEY_ID":     &cfg.Catalog.S3.AccessKeyID,
		"S3_SECRET_ACCESS_KEY": &cfg.Catalog.S3.SecretAccessKey,
		"S3_REGION":            &cfg.Catalog.S3.Region,
		"DATABASE_PATH":        &cfg.Storage.DatabasePath,
		"EMBEDDING_PROVIDER":   &cfg.Embedding.Provider,
		"EMBEDDING_MODEL":      &cfg.Embedding.Model,
		"EMBEDDING_BASE_URL":   &cfg.Embedding.BaseURL,
		"EMBEDDING_MODEL_PATH": &cfg.Embedding.ModelPath,
		"INDEX_TYPE":           &cfg.Index.Type,
		"PROMPT_TEMPLATE":      &cfg.Prompt.Template,
		"GENERATION_BASE_URL":  &cfg.Generation.BaseURL,
		"GENERATION_MODEL":     &cfg.Generation.Model,
	}
	ints := map[string]*int{
		"PORT":                   &cfg.Server.Port,
		"EMBED_DIM":              &cfg.Embedding.Dimensions,
		"DEFAULT_K":              &cfg.Search.DefaultK,
		"MAX_PROMPT_LENGTH":      &cfg.Prompt.MaxLength,
		"CATALOG_MAX_ROWS":       &cfg.Catalog.MaxRows,
		"GENERATION_MAX_RETRIES": &cfg.Generation.MaxRetries,
	}
	durations := map[string]*time.Duration{
		"GENERATION_TIMEOUT": &cfg.Generation.Timeout,
		"EMBEDDING_TIMEOUT":  &cfg.Embedding.Timeout,
	}
	bools := map[string]*bool{
		"DEBUG":         &cfg.Debug,
		"CATALOG_WATCH": &cfg.Catalog.Watch,
		"S3_USE_SSL":    &cfg.Catalog.S3.UseSSL,
	}

	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	for name, dst := range ints {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}
	for name, dst := range durations {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
			}
			*dst = d
		}
	}
	for name, dst := range bools {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}
	return nil
}
