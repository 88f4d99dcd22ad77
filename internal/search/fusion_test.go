package search

import (
	"testing"

	"github.com/hyperjump/ragd/internal/keyword"
	"github.com/hyperjump/ragd/internal/models"
)

func TestNormalizeKeywordScores(t *testing.T) {
	results := []*keyword.KeywordResult{
		{ID: "a", Score: 2},
		{ID: "b", Score: 4},
		{ID: "c", Score: 1},
	}
	m := NormalizeKeywordScores(results)
	if m["b"] != 1.0 {
		t.Errorf("max score should be 1.0, got %f", m["b"])
	}
	if m["a"] != 0.5 {
		t.Errorf("a should be 0.5, got %f", m["a"])
	}
	if len(m) != 3 {
		t.Errorf("expected 3 entries, got %d", len(m))
	}
	if len(NormalizeKeywordScores(nil)) != 0 {
		t.Error("nil results should give an empty map")
	}
}

func TestSemanticScores_ClampsNegatives(t *testing.T) {
	hits := []*models.SearchHit{
		{Item: &models.CatalogItem{ID: "x"}, Score: 0.9},
		{Item: &models.CatalogItem{ID: "y"}, Score: -0.4},
	}
	m := SemanticScores(hits)
	if m["x"] != 0.9 || m["y"] != 0 {
		t.Errorf("unexpected map %v", m)
	}
}

func TestFuse(t *testing.T) {
	kw := map[string]float64{"d1": 1.0, "d2": 0.5}
	sem := map[string]float64{"d1": 0.5, "d2": 1.0, "d3": 0.2}
	results := Fuse(kw, sem, 0.3, 0.7)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ID != "d2" || results[1].ID != "d1" || results[2].ID != "d3" {
		t.Errorf("order = %s %s %s, want d2 d1 d3", results[0].ID, results[1].ID, results[2].ID)
	}
	if results[2].KeywordScore != 0 || results[2].SemanticScore != 0.2 {
		t.Errorf("d3 scores = %+v", results[2])
	}
}

func TestFuse_TiesBrokenByID(t *testing.T) {
	results := Fuse(map[string]float64{"b": 1, "a": 1}, nil, 1, 1)
	if results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("order = %s %s, want a b", results[0].ID, results[1].ID)
	}
}
