package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/hyperjump/ragd/internal/embedding"
	"github.com/hyperjump/ragd/internal/models"
	"github.com/hyperjump/ragd/internal/storage"
	"go.uber.org/zap"
)

// BuildStats summarizes a catalog build.
type BuildStats struct {
	Records  int
	Embedded int
	Reused   int
	Pruned   int64
}

// Builder embeds records into catalog items, reusing stored vectors whose text is unchanged.
type Builder struct {
	embedder    embedding.Embedder
	store       storage.SnapshotStore
	concurrency int
	logger      *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithSnapshotStore enables vector reuse through store.
func WithSnapshotStore(store storage.SnapshotStore) BuilderOption {
	return func(b *Builder) { b.store = store }
}

// WithConcurrency bounds the number of concurrent Embed calls.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) { b.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a builder that embeds with embedder.
func NewBuilder(embedder embedding.Embedder, opts ...BuilderOption) *Builder {
	b := &Builder{embedder: embedder, concurrency: 4, logger: zap.NewNop()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build returns one item per record, in record order. Nothing is returned unless every record
// was embedded; snapshot store failures are logged and do not fail the build.
func (b *Builder) Build(ctx context.Context, records []Record) ([]*models.CatalogItem, BuildStats, error) {
	stats := BuildStats{Records: len(records)}
	model := b.embedder.Model()
	dims := b.embedder.Dimensions()

	var stored map[string]*storage.Snapshot
	if b.store != nil {
		var err error
		stored, err = b.store.Load(ctx, model)
		if err != nil {
			b.logger.Warn("failed to load embedding snapshots", zap.Error(err))
			stored = nil
		}
	}

	items := make([]*models.CatalogItem, len(records))
	var pending []int
	var texts []string
	for i, r := range records {
		items[i] = &models.CatalogItem{ID: r.ID, Payload: r.Payload, Text: r.Text}
		if snap, ok := stored[r.ID]; ok && snap.ContentHash == ContentHash(r.Text) && len(snap.Vector) == dims {
			items[i].Vector = snap.Vector
			stats.Reused++
			continue
		}
		pending = append(pending, i)
		texts = append(texts, r.Text)
	}

	vectors, err := embedding.EmbedAll(ctx, b.embedder, texts, b.concurrency)
	if err != nil {
		return nil, stats, fmt.Errorf("embed catalog: %w", err)
	}
	fresh := make([]*storage.Snapshot, len(pending))
	for j, i := range pending {
		items[i].Vector = vectors[j]
		fresh[j] = &storage.Snapshot{ItemID: items[i].ID, ContentHash: ContentHash(items[i].Text), Vector: vectors[j]}
	}
	stats.Embedded = len(pending)

	if b.store != nil {
		if err := b.store.Save(ctx, model, fresh); err != nil {
			b.logger.Warn("failed to save embedding snapshots", zap.Error(err))
		}
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}
		n, err := b.store.Prune(ctx, model, ids)
		if err != nil {
			b.logger.Warn("failed to prune embedding snapshots", zap.Error(err))
		}
		stats.Pruned = n
	}

	b.logger.Info("catalog embedded",
		zap.String("model", model),
		zap.Int("records", stats.Records),
		zap.Int("embedded", stats.Embedded),
		zap.Int("reused", stats.Reused))
	return items, stats, nil
}

// ContentHash identifies the text a vector was computed from.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
