package vector

import (
	"fmt"

	"github.com/hyperjump/ragd/internal/models"
)

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeMemory uses exact in-memory brute-force search. Good for catalogs below ~50k items.
	IndexTypeMemory IndexType = "memory"
	// IndexTypeFlat is an alias of IndexTypeMemory.
	IndexTypeFlat IndexType = "flat"
	// IndexTypeHNSW uses an approximate proximity graph. Good for large catalogs.
	IndexTypeHNSW IndexType = "hnsw"
)

// NewVectorIndex builds an index of the requested type over items.
// Supported types: "memory" or "flat" (default), "hnsw".
func NewVectorIndex(indexType string, dimensions int, items []*models.CatalogItem, opts HNSWOptions) (VectorIndex, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, IndexTypeFlat, "":
		return NewMemoryIndex(dimensions, items)
	case IndexTypeHNSW:
		return NewHNSWIndex(dimensions, items, opts)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory, hnsw)", indexType)
	}
}
