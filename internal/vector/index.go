// Package vector provides vector index and similarity search over catalog items.
package vector

import (
	"context"
	"maps"
	"sort"

	"github.com/hyperjump/ragd/internal/models"
)

// VectorIndex is a read-only k-NN index built once from a finite catalog.
// Implementations are safe for concurrent Search calls without locking.
type VectorIndex interface {
	// Search returns up to k items ordered by descending cosine similarity to query.
	// Ties keep insertion order. k <= 0 is an InvalidArgumentError; an empty index returns no hits.
	Search(ctx context.Context, query []float32, k int) ([]*models.SearchHit, error)
	Get(id string) (*models.CatalogItem, bool)
	Size() int
	Dimensions() int
	Type() string
}

// entries holds the validated items shared by all index implementations.
// It is populated once in newEntries and never mutated afterwards.
type entries struct {
	dimensions int
	items      []*models.CatalogItem
	norms      []float64
	byID       map[string]int
}

// newEntries validates items and takes ownership of private copies of them.
// Either every item is accepted or an error is returned and nothing is kept.
func newEntries(dimensions int, items []*models.CatalogItem) (*entries, error) {
	if dimensions <= 0 {
		return nil, models.NewInvalidArgument("dimensions", "must be positive, got %d", dimensions)
	}
	byID := make(map[string]int, len(items))
	for i, it := range items {
		if it == nil {
			return nil, models.NewInvalidArgument("items", "nil item at position %d", i)
		}
		if len(it.Vector) != dimensions {
			return nil, &DimensionMismatchError{ID: it.ID, Got: len(it.Vector), Want: dimensions}
		}
		if _, dup := byID[it.ID]; dup {
			return nil, &DuplicateIDError{ID: it.ID}
		}
		byID[it.ID] = i
	}
	e := &entries{
		dimensions: dimensions,
		items:      make([]*models.CatalogItem, len(items)),
		norms:      make([]float64, len(items)),
		byID:       byID,
	}
	for i, it := range items {
		owned := &models.CatalogItem{
			ID:      it.ID,
			Payload: maps.Clone(it.Payload),
			Text:    it.Text,
			Vector:  append([]float32(nil), it.Vector...),
		}
		e.items[i] = owned
		e.norms[i] = L2Norm(owned.Vector)
	}
	return e, nil
}

func (e *entries) checkQuery(ctx context.Context, query []float32, k int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if k <= 0 {
		return models.NewInvalidArgument("k", "must be positive, got %d", k)
	}
	if len(query) != e.dimensions {
		return &DimensionMismatchError{Got: len(query), Want: e.dimensions}
	}
	return nil
}

// exactSearch scores every item and returns the top-k, ties in insertion order.
func (e *entries) exactSearch(query []float32, k int) []*models.SearchHit {
	qn := L2Norm(query)
	type scored struct {
		pos   int
		score float64
	}
	scores := make([]scored, len(e.items))
	for i, it := range e.items {
		scores[i] = scored{pos: i, score: cosineWithNorms(query, it.Vector, qn, e.norms[i])}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if k > len(scores) {
		k = len(scores)
	}
	hits := make([]*models.SearchHit, k)
	for i := 0; i < k; i++ {
		hits[i] = &models.SearchHit{Item: e.items[scores[i].pos], Score: scores[i].score}
	}
	return hits
}

// Get returns the indexed item with the given ID.
func (e *entries) Get(id string) (*models.CatalogItem, bool) {
	i, ok := e.byID[id]
	if !ok {
		return nil, false
	}
	return e.items[i], true
}

// Size returns the number of indexed items.
func (e *entries) Size() int {
	return len(e.items)
}

// Dimensions returns the configured vector length.
func (e *entries) Dimensions() int {
	return e.dimensions
}
