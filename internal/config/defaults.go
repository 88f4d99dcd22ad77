package config

import "time"

// DefaultGenerationModel is the model the service was first deployed with.
const DefaultGenerationModel = "deepseek-coder-v2:latest"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 3 * time.Minute
	}
	if cfg.Storage.DatabasePath == "" && !cfg.Storage.Disabled {
		cfg.Storage.DatabasePath = "./data/embeddings.db"
	}
	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = "./myntra_products_catalog.csv"
	}
	if cfg.Catalog.IDColumn == "" {
		cfg.Catalog.IDColumn = "ProductID"
	}
	if cfg.Catalog.TextColumn == "" {
		cfg.Catalog.TextColumn = "Description"
	}
	if cfg.Catalog.TitleColumn == "" {
		cfg.Catalog.TitleColumn = "ProductName"
	}
	if cfg.Catalog.EmbedConcurrency == 0 {
		cfg.Catalog.EmbedConcurrency = 4
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "hashing"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if cfg.Index.M == 0 {
		cfg.Index.M = 16
	}
	if cfg.Index.EfSearch == 0 {
		cfg.Index.EfSearch = 64
	}
	if cfg.Search.DefaultK == 0 {
		cfg.Search.DefaultK = 2
	}
	if cfg.Search.MaxK == 0 {
		cfg.Search.MaxK = 50
	}
	if cfg.Search.KeywordTitleBoost == 0 {
		cfg.Search.KeywordTitleBoost = 3.0
	}
	if cfg.Search.KeywordWeight == 0 && cfg.Search.SemanticWeight == 0 {
		cfg.Search.KeywordWeight = 0.3
		cfg.Search.SemanticWeight = 0.7
	}
	if cfg.Search.HybridCandidates == 0 {
		cfg.Search.HybridCandidates = 50
	}
	if cfg.Prompt.Template == "" {
		cfg.Prompt.Template = "diagnostic"
	}
	if cfg.Prompt.MaxLength == 0 {
		cfg.Prompt.MaxLength = 8000
	}
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = "http://localhost:11434"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = DefaultGenerationModel
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 120 * time.Second
	}
}
