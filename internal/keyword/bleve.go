package keyword

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/ragd/internal/models"
)

// document is the indexed form of a catalog item.
type document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// BleveIndex implements KeywordIndex with an in-memory Bleve index.
type BleveIndex struct {
	index      bleve.Index
	titleField string
}

// NewBleveIndex creates an empty in-memory index. titleField names the payload field that is
// indexed as the title (e.g. "ProductName"); it may be empty.
func NewBleveIndex(titleField string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so product codes and names match exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("id", bleve.NewKeywordFieldMapping())
	im.AddDocumentMapping("item", docMapping)
	im.DefaultType = "item"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index, titleField: titleField}, nil
}

// IndexItems indexes items in one batch. Missing-value cells are not indexed.
func (b *BleveIndex) IndexItems(ctx context.Context, items []*models.CatalogItem) error {
	batch := b.index.NewBatch()
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(it.ID, b.toDocument(it)); err != nil {
			return fmt.Errorf("index item %s: %w", it.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch failed: %w", err)
	}
	return nil
}

func (b *BleveIndex) toDocument(it *models.CatalogItem) document {
	keys := make([]string, 0, len(it.Payload))
	for k := range it.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var content strings.Builder
	for _, k := range keys {
		v := it.Payload[k]
		if k == b.titleField || v == models.MissingValue {
			continue
		}
		content.WriteString(v)
		content.WriteByte('\n')
	}
	if it.Text != "" && it.Text != models.MissingValue {
		content.WriteString(it.Text)
	}
	title := ""
	if v, ok := it.Payload[b.titleField]; ok && v != models.MissingValue {
		title = v
	}
	return document{ID: it.ID, Title: title, Content: content.String()}
}

// Search runs a match query over title and content and returns up to limit results.
// With opts.TitleBoost > 1 title matches are weighted higher; with opts.FuzzyEnabled each term
// matches within the configured edit distance.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	if limit <= 0 {
		return nil, models.NewInvalidArgument("limit", "must be positive, got %d", limit)
	}
	if strings.TrimSpace(query) == "" {
		return []*KeywordResult{}, nil
	}
	titleBoost := 1.0
	fuzzyEnabled := false
	fuzziness := 1
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	titleQuery := b.fieldQuery(query, "title", fuzzyEnabled, fuzziness, titleBoost)
	contentQuery := b.fieldQuery(query, "content", fuzzyEnabled, fuzziness, 1.0)
	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(titleQuery, contentQuery), limit, 0, false)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// fieldQuery matches query against field, as a match query or a disjunction of fuzzy term queries.
func (b *BleveIndex) fieldQuery(query, field string, fuzzy bool, fuzziness int, boost float64) blevequery.Query {
	terms := tokenizeQuery(query)
	if !fuzzy || len(terms) == 0 {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(field)
		mq.SetBoost(boost)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		fq.SetBoost(boost)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of items in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}
