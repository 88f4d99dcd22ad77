// Package storage persists catalog embeddings so restarts can skip re-embedding unchanged rows.
package storage

import (
	"context"
)

// Snapshot is the stored embedding of one catalog item for one model.
// ContentHash identifies the text the vector was computed from.
type Snapshot struct {
	ItemID      string
	ContentHash string
	Vector      []float32
}

// SnapshotStore defines embedding snapshot persistence. Snapshots of different models never mix.
type SnapshotStore interface {
	// Load returns all snapshots stored for model, keyed by item ID.
	Load(ctx context.Context, model string) (map[string]*Snapshot, error)
	// Save inserts or replaces snapshots for model in a single transaction.
	Save(ctx context.Context, model string, snaps []*Snapshot) error
	// Prune deletes snapshots for model whose item ID is not in keep and returns how many were removed.
	Prune(ctx context.Context, model string, keep []string) (int64, error)
	// Count returns the number of snapshots stored for model.
	Count(ctx context.Context, model string) (int64, error)

	Close() error
}
