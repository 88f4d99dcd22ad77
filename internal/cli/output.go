package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/hyperjump/ragd/internal/catalog"
	"github.com/hyperjump/ragd/internal/models"
	"github.com/hyperjump/ragd/internal/search"
	"github.com/hyperjump/ragd/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const snippetLength = 160

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	scoreColor   = color.New(color.FgGreen)
	dimColor     = color.New(color.Faint)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteAnswer writes a generated answer and the hits it was grounded on.
func WriteAnswer(w io.Writer, answer *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, answer)
	}
	fmt.Fprintln(w, strings.TrimSpace(answer.Response))
	fmt.Fprintln(w)
	headingColor.Fprintf(w, "Context (%d of %d hits used, template %s, model %s)\n",
		answer.HitsUsed, len(answer.Hits), answer.Template, answer.Model)
	writeHitLines(w, answer.Hits)
	dimColor.Fprintf(w, "request %s, generation took %dms\n", answer.RequestID, answer.Timings["generating"])
	return nil
}

// WriteHits writes ranked retrieval hits.
func WriteHits(w io.Writer, query string, hits []*models.SearchHit, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"query": query, "hits": hits})
	}
	headingColor.Fprintf(w, "Found %d results for %q\n", len(hits), query)
	writeHitLines(w, hits)
	return nil
}

func writeHitLines(w io.Writer, hits []*models.SearchHit) {
	for i, h := range hits {
		fmt.Fprintf(w, "%2d. %s  %s\n", i+1, scoreColor.Sprintf("%.4f", h.Score), h.Item.ID)
		if h.Item.Text != "" {
			dimColor.Fprintf(w, "    %s\n", utils.Truncate(h.Item.Text, snippetLength))
		}
	}
}

// WriteSearchResults writes a hybrid lookup response.
func WriteSearchResults(w io.Writer, response *search.Response, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	headingColor.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.QueryTime)
	for _, result := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %s (Keyword: %.4f, Semantic: %.4f)\n",
			result.Rank, scoreColor.Sprintf("%.4f", result.Score), result.KeywordScore, result.SemanticScore)
		fmt.Fprintf(w, "ID: %s\n", result.Item.ID)
		if result.Item.Text != "" {
			fmt.Fprintf(w, "\n%s\n", utils.Truncate(result.Item.Text, 200))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteBuildStats writes the result of embedding a catalog.
func WriteBuildStats(w io.Writer, stats catalog.BuildStats, snapshots int64, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{
			"records":   stats.Records,
			"embedded":  stats.Embedded,
			"reused":    stats.Reused,
			"pruned":    stats.Pruned,
			"snapshots": snapshots,
		})
	}
	headingColor.Fprintln(w, "Catalog indexed")
	fmt.Fprintf(w, "records:    %d\n", stats.Records)
	fmt.Fprintf(w, "embedded:   %d   # computed by the embedder\n", stats.Embedded)
	fmt.Fprintf(w, "reused:     %d   # loaded from snapshots\n", stats.Reused)
	fmt.Fprintf(w, "pruned:     %d   # snapshots of removed items\n", stats.Pruned)
	fmt.Fprintf(w, "snapshots:  %d\n", snapshots)
	return nil
}

// WriteStatus writes a flat status report. Nested objects are printed as their own sections.
func WriteStatus(w io.Writer, status map[string]interface{}, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	var sections []string
	for _, k := range sortedKeys(status) {
		if _, ok := status[k].(map[string]interface{}); ok {
			sections = append(sections, k)
			continue
		}
		fmt.Fprintf(w, "%-22s %v\n", k+":", status[k])
	}
	for _, name := range sections {
		fmt.Fprintln(w)
		headingColor.Fprintf(w, "# %s\n", name)
		sub := status[name].(map[string]interface{})
		for _, k := range sortedKeys(sub) {
			fmt.Fprintf(w, "%-22s %v\n", k+":", sub[k])
		}
	}
	return nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// printError writes err with its kind and stage when it has them.
func printError(w io.Writer, err error) {
	msg := err.Error()
	if kind := models.KindOf(err); kind != models.KindInternal {
		msg = kind + ": " + msg
	}
	errorColor.Fprint(w, "error: ")
	fmt.Fprintln(w, msg)
}
