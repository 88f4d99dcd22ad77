package search

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/ragd/internal/embedding"
	"github.com/hyperjump/ragd/internal/keyword"
	"github.com/hyperjump/ragd/internal/models"
	"github.com/hyperjump/ragd/internal/vector"
	"golang.org/x/sync/errgroup"
)

// Options tunes fusion. Zero values fall back to defaults.
type Options struct {
	KeywordWeight  float64
	SemanticWeight float64
	// Candidates is how many hits each source contributes before fusion.
	Candidates int
	TitleBoost float64
}

// Engine runs hybrid (keyword + semantic) lookups over one catalog.
type Engine struct {
	embedder     embedding.Embedder
	vectorIndex  vector.VectorIndex
	keywordIndex keyword.KeywordIndex
	opts         Options
}

// NewEngine creates a hybrid engine over the given indexes.
func NewEngine(embedder embedding.Embedder, vectorIndex vector.VectorIndex, keywordIndex keyword.KeywordIndex, opts Options) *Engine {
	if opts.KeywordWeight <= 0 && opts.SemanticWeight <= 0 {
		opts.KeywordWeight, opts.SemanticWeight = 0.3, 0.7
	}
	if opts.Candidates <= 0 {
		opts.Candidates = 50
	}
	return &Engine{
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		opts:         opts,
	}
}

// Search runs the enabled sources concurrently, fuses their normalized scores and returns
// up to q.Limit items.
func (e *Engine) Search(ctx context.Context, q Query) (*Response, error) {
	startTime := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	candidates := max(e.opts.Candidates, q.Limit)

	var (
		keywordResults []*keyword.KeywordResult
		semanticHits   []*models.SearchHit
	)
	g, gctx := errgroup.WithContext(ctx)
	if q.KeywordEnabled && e.keywordIndex != nil {
		g.Go(func() error {
			results, err := e.keywordIndex.Search(gctx, q.Text, candidates, &keyword.SearchOptions{
				TitleBoost:   e.opts.TitleBoost,
				FuzzyEnabled: q.FuzzyEnabled,
			})
			if err != nil {
				return fmt.Errorf("keyword search failed: %w", err)
			}
			keywordResults = results
			return nil
		})
	}
	if q.SemanticEnabled {
		g.Go(func() error {
			vec, err := e.embedder.Embed(gctx, q.Text)
			if err != nil {
				return fmt.Errorf("embedding failed: %w", err)
			}
			hits, err := e.vectorIndex.Search(gctx, vec, candidates)
			if err != nil {
				return fmt.Errorf("vector search failed: %w", err)
			}
			semanticHits = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kw, sem := e.opts.KeywordWeight, e.opts.SemanticWeight
	if !q.KeywordEnabled {
		kw = 0
	}
	if !q.SemanticEnabled {
		sem = 0
	}
	fused := Fuse(NormalizeKeywordScores(keywordResults), SemanticScores(semanticHits), kw, sem)
	if q.MinScore > 0 {
		filtered := fused[:0]
		for _, r := range fused {
			if r.Score >= q.MinScore {
				filtered = append(filtered, r)
			}
		}
		fused = filtered
	}

	response := &Response{
		Query:   q.Text,
		Results: make([]*Result, 0, min(q.Limit, len(fused))),
		Total:   len(fused),
	}
	for _, r := range fused {
		if len(response.Results) == q.Limit {
			break
		}
		item, ok := e.vectorIndex.Get(r.ID)
		if !ok {
			continue
		}
		response.Results = append(response.Results, &Result{
			Item:          item,
			Score:         r.Score,
			KeywordScore:  r.KeywordScore,
			SemanticScore: r.SemanticScore,
			Rank:          len(response.Results) + 1,
		})
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}
