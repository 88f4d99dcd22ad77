package cli

import (
	"context"
	"fmt"

	"github.com/hyperjump/ragd/internal/catalog"
	"github.com/hyperjump/ragd/internal/config"
	"github.com/hyperjump/ragd/internal/embedding"
	"github.com/hyperjump/ragd/internal/generation"
	"github.com/hyperjump/ragd/internal/keyword"
	"github.com/hyperjump/ragd/internal/prompt"
	"github.com/hyperjump/ragd/internal/rag"
	"github.com/hyperjump/ragd/internal/search"
	"github.com/hyperjump/ragd/internal/storage"
	"github.com/hyperjump/ragd/internal/vector"
	"go.uber.org/zap"
)

// App holds the initialized components of a running ragd instance.
type App struct {
	Config    *config.Config
	Embedder  embedding.Embedder
	Store     storage.SnapshotStore
	Index     vector.VectorIndex
	Keyword   keyword.KeywordIndex
	Generator generation.Generator
	Service   *rag.Service
	Search    *search.Engine
	Stats     catalog.BuildStats
}

// Close releases the embedder, snapshot store and keyword index.
func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.Keyword != nil {
		_ = a.Keyword.Close()
	}
}

// openEmbedder creates the configured embedder.
func openEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	return embedding.NewEmbedder(embedding.Options{
		Provider:   cfg.Embedding.Provider,
		Dimensions: cfg.Embedding.Dimensions,
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		ModelPath:  cfg.Embedding.ModelPath,
		MaxTokens:  cfg.Embedding.MaxTokens,
		Timeout:    cfg.Embedding.Timeout,
	})
}

// openStore opens the snapshot database, or returns nil when snapshots are disabled.
func openStore(cfg *config.Config) (storage.SnapshotStore, error) {
	if cfg.Storage.Disabled || cfg.Storage.DatabasePath == "" {
		return nil, nil
	}
	return storage.NewSQLiteStore(cfg.Storage.DatabasePath)
}

// loadRecords reads and normalizes the configured catalog.
func loadRecords(ctx context.Context, cfg *config.Config) ([]catalog.Record, error) {
	var objects catalog.ObjectGetter
	if catalog.IsRemote(cfg.Catalog.Source) {
		s3, err := catalog.NewS3Source(catalog.S3Config{
			Endpoint:        cfg.Catalog.S3.Endpoint,
			AccessKeyID:     cfg.Catalog.S3.AccessKeyID,
			SecretAccessKey: cfg.Catalog.S3.SecretAccessKey,
			Region:          cfg.Catalog.S3.Region,
			UseSSL:          cfg.Catalog.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		objects = s3
	}
	return catalog.Load(ctx, catalog.Options{
		Source: cfg.Catalog.Source,
		Sheet:  cfg.Catalog.Sheet,
		Schema: catalog.Schema{
			IDColumn:       cfg.Catalog.IDColumn,
			TextColumn:     cfg.Catalog.TextColumn,
			PayloadColumns: cfg.Catalog.PayloadColumns,
			MaxRows:        cfg.Catalog.MaxRows,
		},
	}, objects)
}

// newGenerator creates the generation client, wrapped for retries when configured.
func newGenerator(cfg *config.Config, logger *zap.Logger) generation.Generator {
	var gen generation.Generator = generation.NewOllamaClient(cfg.Generation.BaseURL, generation.WithLogger(logger))
	if cfg.Generation.MaxRetries > 0 {
		gen = generation.NewRetryingGenerator(gen, cfg.Generation.MaxRetries, logger)
	}
	return gen
}

// Bootstrap loads the catalog, embeds it, builds both indexes and wires the answer service.
// Any failure is fatal: no partially built instance is returned.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := prompt.ParseTemplate(cfg.Prompt.Template)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	app.Embedder, err = openEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	app.Store, err = openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	records, err := loadRecords(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	opts := []catalog.BuilderOption{
		catalog.WithConcurrency(cfg.Catalog.EmbedConcurrency),
		catalog.WithLogger(logger),
	}
	if app.Store != nil {
		opts = append(opts, catalog.WithSnapshotStore(app.Store))
	}
	items, stats, err := catalog.NewBuilder(app.Embedder, opts...).Build(ctx, records)
	if err != nil {
		return nil, err
	}
	app.Stats = stats

	app.Index, err = vector.NewVectorIndex(cfg.Index.Type, cfg.Embedding.Dimensions, items, vector.HNSWOptions{
		M:        cfg.Index.M,
		EfSearch: cfg.Index.EfSearch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build vector index: %w", err)
	}

	kw, err := keyword.NewBleveIndex(cfg.Catalog.TitleColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	app.Keyword = kw
	if err := kw.IndexItems(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to build keyword index: %w", err)
	}

	app.Search = search.NewEngine(app.Embedder, app.Index, kw, search.Options{
		KeywordWeight:  cfg.Search.KeywordWeight,
		SemanticWeight: cfg.Search.SemanticWeight,
		Candidates:     cfg.Search.HybridCandidates,
		TitleBoost:     cfg.Search.KeywordTitleBoost,
	})

	app.Generator = newGenerator(cfg, logger)
	app.Service = rag.NewService(rag.NewRetriever(app.Embedder, app.Index), app.Generator, rag.Config{
		DefaultK:        cfg.Search.DefaultK,
		Template:        tmpl,
		MaxPromptLength: cfg.Prompt.MaxLength,
		Model:           cfg.Generation.Model,
		Timeout:         cfg.Generation.Timeout,
	}, logger)

	logger.Info("catalog indexed",
		zap.String("source", cfg.Catalog.Source),
		zap.Int("items", app.Index.Size()),
		zap.String("vector_index_type", app.Index.Type()))
	ok = true
	return app, nil
}
