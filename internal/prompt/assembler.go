// Package prompt renders a query and ranked search hits into a bounded-size prompt.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/ragd/internal/models"
)

// noResults stands in for the context block when no hit fits or none were retrieved.
const noResults = "(no results)\n"

// PromptTooLargeError reports that the query and instructions alone exceed the length budget.
type PromptTooLargeError struct {
	Length    int
	MaxLength int
}

func (e *PromptTooLargeError) Error() string {
	return fmt.Sprintf("prompt without context is %d characters, exceeds maximum %d", e.Length, e.MaxLength)
}

// Kind implements models.Kinded.
func (e *PromptTooLargeError) Kind() string { return models.KindPromptTooLarge }

// Prompt is an assembled prompt and the number of leading hits it includes.
type Prompt struct {
	Text     string
	HitsUsed int
}

type hitLine struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
	Score  float64           `json:"score"`
}

// Assemble renders query and hits with tmpl, dropping hits from the tail until the result is at
// most maxLength code points. See Build for the hit count.
func Assemble(query string, hits []*models.SearchHit, tmpl Template, maxLength int) (string, error) {
	p, err := Build(query, hits, tmpl, maxLength)
	if err != nil {
		return "", err
	}
	return p.Text, nil
}

// Build is Assemble returning how many hits made it into the prompt.
// The output depends only on its arguments.
func Build(query string, hits []*models.SearchHit, tmpl Template, maxLength int) (Prompt, error) {
	if maxLength <= 0 {
		return Prompt{}, models.NewInvalidArgument("max_length", "must be positive, got %d", maxLength)
	}
	sec, ok := templates[tmpl]
	if !ok {
		return Prompt{}, models.NewInvalidArgument("template", "unknown template %s", tmpl)
	}

	lines := make([]string, len(hits))
	for i, h := range hits {
		line, err := renderHit(h)
		if err != nil {
			return Prompt{}, err
		}
		lines[i] = line
	}

	fixed := utf8.RuneCountInString(sec.intro) + utf8.RuneCountInString(query) + 2 +
		utf8.RuneCountInString(sec.resultsHeading) + utf8.RuneCountInString(sec.outro)
	if fixed+utf8.RuneCountInString(noResults) > maxLength {
		return Prompt{}, &PromptTooLargeError{Length: fixed + utf8.RuneCountInString(noResults), MaxLength: maxLength}
	}

	used, total := 0, fixed
	for _, line := range lines {
		n := utf8.RuneCountInString(line)
		if total+n > maxLength {
			break
		}
		total += n
		used++
	}

	var b strings.Builder
	b.WriteString(sec.intro)
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(sec.resultsHeading)
	if used == 0 {
		b.WriteString(noResults)
	}
	for _, line := range lines[:used] {
		b.WriteString(line)
	}
	b.WriteString(sec.outro)
	return Prompt{Text: b.String(), HitsUsed: used}, nil
}

// renderHit serializes a hit as one JSON object terminated by a newline.
func renderHit(h *models.SearchHit) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(hitLine{ID: h.Item.ID, Fields: h.Item.Payload, Score: h.Score}); err != nil {
		return "", fmt.Errorf("failed to serialize hit %s: %w", h.Item.ID, err)
	}
	return buf.String(), nil
}
