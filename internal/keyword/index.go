// Package keyword provides keyword search over catalog payloads.
package keyword

import (
	"context"

	"github.com/hyperjump/ragd/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution from matches in the title field.
	// Values > 1 make title matches rank higher (e.g. 3.0). Use 1.0 for no boost.
	TitleBoost float64
	// FuzzyEnabled enables fuzzy matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Default is 1.
	Fuzziness int
}

// KeywordIndex defines keyword search over catalog items.
type KeywordIndex interface {
	IndexItems(ctx context.Context, items []*models.CatalogItem) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	Close() error
	// DocCount returns the total number of items in the index.
	DocCount() (uint64, error)
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
