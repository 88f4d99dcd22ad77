// Package search combines keyword and vector lookups over the catalog into one ranked list.
package search

import (
	"sort"

	"github.com/hyperjump/ragd/internal/keyword"
	"github.com/hyperjump/ragd/internal/models"
)

// FusedResult holds an item ID and its fused keyword/semantic scores.
type FusedResult struct {
	ID            string
	Score         float64
	KeywordScore  float64
	SemanticScore float64
}

// NormalizeKeywordScores normalizes keyword scores to [0,1] by max.
func NormalizeKeywordScores(results []*keyword.KeywordResult) map[string]float64 {
	normalized := make(map[string]float64, len(results))
	var maxScore float64
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	for _, r := range results {
		if maxScore > 0 {
			normalized[r.ID] = r.Score / maxScore
		} else {
			normalized[r.ID] = 0
		}
	}
	return normalized
}

// SemanticScores maps hit IDs to cosine scores. Negative similarities count as zero.
func SemanticScores(hits []*models.SearchHit) map[string]float64 {
	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		s := h.Score
		if s < 0 {
			s = 0
		}
		scores[h.Item.ID] = s
	}
	return scores
}

// Fuse merges keyword and semantic score maps with weights and returns results sorted by
// descending score, ties broken by ID.
func Fuse(keywordScores, semanticScores map[string]float64, keywordWeight, semanticWeight float64) []*FusedResult {
	scoreMap := make(map[string]*FusedResult, len(keywordScores)+len(semanticScores))
	for id, score := range keywordScores {
		scoreMap[id] = &FusedResult{ID: id, KeywordScore: score}
	}
	for id, score := range semanticScores {
		if result, exists := scoreMap[id]; exists {
			result.SemanticScore = score
		} else {
			scoreMap[id] = &FusedResult{ID: id, SemanticScore: score}
		}
	}
	results := make([]*FusedResult, 0, len(scoreMap))
	for _, result := range scoreMap {
		result.Score = (keywordWeight * result.KeywordScore) + (semanticWeight * result.SemanticScore)
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results
}
