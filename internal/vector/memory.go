package vector

import (
	"context"

	"github.com/hyperjump/ragd/internal/models"
)

// MemoryIndex is an exact brute-force cosine index: O(N·d) per query.
// It is the reference implementation and the default for catalogs up to a few tens of thousands of items.
type MemoryIndex struct {
	*entries
}

// NewMemoryIndex builds an exact index over items. Item norms are computed once here.
func NewMemoryIndex(dimensions int, items []*models.CatalogItem) (*MemoryIndex, error) {
	e, err := newEntries(dimensions, items)
	if err != nil {
		return nil, err
	}
	return &MemoryIndex{entries: e}, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Search scans every item and returns the top-k by cosine similarity.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*models.SearchHit, error) {
	if err := m.checkQuery(ctx, query, k); err != nil {
		return nil, err
	}
	if len(m.items) == 0 {
		return []*models.SearchHit{}, nil
	}
	return m.exactSearch(query, k), nil
}
