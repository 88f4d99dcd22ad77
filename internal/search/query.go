package search

import (
	"strings"

	"github.com/hyperjump/ragd/internal/models"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Query is a hybrid catalog lookup.
type Query struct {
	Text            string  `json:"query"`
	Limit           int     `json:"limit,omitempty"`
	KeywordEnabled  bool    `json:"keyword_enabled,omitempty"`
	SemanticEnabled bool    `json:"semantic_enabled,omitempty"`
	FuzzyEnabled    bool    `json:"fuzzy_enabled,omitempty"`
	MinScore        float64 `json:"min_score,omitempty"`
}

// Validate trims the query and applies defaults. With neither source enabled, both are used.
func (q *Query) Validate() error {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return models.NewInvalidArgument("query", "must not be empty")
	}
	if q.Limit < 0 {
		return models.NewInvalidArgument("limit", "must be positive, got %d", q.Limit)
	}
	if q.Limit == 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if !q.KeywordEnabled && !q.SemanticEnabled {
		q.KeywordEnabled = true
		q.SemanticEnabled = true
	}
	return nil
}

// Result is one catalog item with its fused and per-source scores.
type Result struct {
	Item          *models.CatalogItem `json:"item"`
	Score         float64             `json:"score"`
	KeywordScore  float64             `json:"keyword_score"`
	SemanticScore float64             `json:"semantic_score"`
	Rank          int                 `json:"rank"`
}

// Response is the result of a hybrid lookup.
type Response struct {
	Query     string    `json:"query"`
	Results   []*Result `json:"results"`
	Total     int       `json:"total"`
	QueryTime int64     `json:"query_time_ms"`
}
