// Package rag wires retrieval, prompt assembly and generation into the answer pipeline.
package rag

import (
	"context"

	"github.com/hyperjump/ragd/internal/embedding"
	"github.com/hyperjump/ragd/internal/models"
	"github.com/hyperjump/ragd/internal/vector"
)

// Retriever embeds a query and searches the index with it. It keeps no per-query state.
type Retriever struct {
	embedder embedding.Embedder
	index    vector.VectorIndex
}

// NewRetriever returns a retriever over index using embedder for queries.
func NewRetriever(embedder embedding.Embedder, index vector.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve returns up to k hits for query, best first. Embedder and index errors are returned unchanged.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]*models.SearchHit, error) {
	if k <= 0 {
		return nil, models.NewInvalidArgument("k", "must be positive, got %d", k)
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.index.Search(ctx, vec, k)
}

// Index returns the underlying vector index.
func (r *Retriever) Index() vector.VectorIndex {
	return r.index
}

// Embedder returns the query embedder.
func (r *Retriever) Embedder() embedding.Embedder {
	return r.embedder
}
