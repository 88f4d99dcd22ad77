// Package models defines core data structures for catalog items, search hits, and answers.
package models

// MissingValue is the placeholder stored for catalog cells that are absent or blank.
const MissingValue = "None"

// CatalogItem is one indexed catalog row. ID is unique within an index and immutable once indexed.
type CatalogItem struct {
	ID      string            `json:"id"`
	Payload map[string]string `json:"payload"`
	// Text is the normalized text the vector was computed from.
	Text   string    `json:"-"`
	Vector []float32 `json:"-"`
}

// Field returns the payload value for name, or MissingValue when the field is absent.
func (c *CatalogItem) Field(name string) string {
	if v, ok := c.Payload[name]; ok {
		return v
	}
	return MissingValue
}

// SearchHit is a single ranked match. Score is cosine similarity in [-1, 1]; higher is closer.
type SearchHit struct {
	Item  *CatalogItem `json:"item"`
	Score float64      `json:"score"`
}
