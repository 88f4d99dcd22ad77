package vector

import (
	"context"
	"sort"

	"github.com/coder/hnsw"
	"github.com/hyperjump/ragd/internal/models"
)

// HNSWOptions tunes the proximity graph. Zero values use the defaults below.
type HNSWOptions struct {
	// M is the maximum number of neighbors per node.
	M int
	// EfSearch is the candidate list size during search; larger means better recall.
	EfSearch int
}

const (
	defaultHNSWM        = 16
	defaultHNSWEfSearch = 64
)

// HNSWIndex is an approximate cosine index backed by a hierarchical navigable small world graph.
// Graph candidates are re-scored with exact cosine similarity, so reported scores are exact and
// only recall is approximate: a true top-k item may be missed, but never a ghost item returned.
// Recall is expected to stay close to 1.0 with the default EfSearch for catalogs below ~1M items.
type HNSWIndex struct {
	*entries
	graph    *hnsw.Graph[int]
	efSearch int
}

// NewHNSWIndex builds a graph index over items. Node keys are insertion positions.
func NewHNSWIndex(dimensions int, items []*models.CatalogItem, opts HNSWOptions) (*HNSWIndex, error) {
	e, err := newEntries(dimensions, items)
	if err != nil {
		return nil, err
	}
	if opts.M <= 0 {
		opts.M = defaultHNSWM
	}
	if opts.EfSearch <= 0 {
		opts.EfSearch = defaultHNSWEfSearch
	}
	g := hnsw.NewGraph[int]()
	g.M = opts.M
	g.EfSearch = opts.EfSearch
	g.Distance = cosineDistance
	nodes := make([]hnsw.Node[int], len(e.items))
	for i, it := range e.items {
		nodes[i] = hnsw.MakeNode(i, it.Vector)
	}
	if len(nodes) > 0 {
		g.Add(nodes...)
	}
	return &HNSWIndex{entries: e, graph: g, efSearch: opts.EfSearch}, nil
}

// cosineDistance is zero-vector safe, unlike a plain 1 - cos.
func cosineDistance(a, b []float32) float32 {
	return float32(1 - CosineSimilarity(a, b))
}

// Type returns the index type identifier.
func (h *HNSWIndex) Type() string {
	return string(IndexTypeHNSW)
}

// Search queries the graph for max(k, EfSearch) candidates and returns the exact top-k among them.
// When that covers the whole index, every item is scored exactly instead.
func (h *HNSWIndex) Search(ctx context.Context, query []float32, k int) ([]*models.SearchHit, error) {
	if err := h.checkQuery(ctx, query, k); err != nil {
		return nil, err
	}
	if len(h.items) == 0 {
		return []*models.SearchHit{}, nil
	}
	want := k
	if want < h.efSearch {
		want = h.efSearch
	}
	if want >= len(h.items) {
		return h.exactSearch(query, k), nil
	}
	nodes := h.graph.Search(query, want)
	positions := make([]int, 0, len(nodes))
	seen := make(map[int]struct{}, len(nodes))
	for _, n := range nodes {
		if n.Key < 0 || n.Key >= len(h.items) {
			continue
		}
		if _, dup := seen[n.Key]; dup {
			continue
		}
		seen[n.Key] = struct{}{}
		positions = append(positions, n.Key)
	}
	sort.Ints(positions)

	qn := L2Norm(query)
	hits := make([]*models.SearchHit, len(positions))
	for i, pos := range positions {
		it := h.items[pos]
		hits[i] = &models.SearchHit{Item: it, Score: cosineWithNorms(query, it.Vector, qn, h.norms[pos])}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}
