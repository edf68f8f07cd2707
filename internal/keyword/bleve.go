package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/dialname/internal/contacts"
	"github.com/hyperjump/dialname/internal/models"
)

// minNumberQueryDigits is the shortest digit run that is also searched as a
// phone number fragment.
const minNumberQueryDigits = 3

// contactDoc is the indexed form of a contact record.
type contactDoc struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Label  string `json:"label"`
}

func newContactDoc(c *models.ContactRecord) contactDoc {
	number := c.NormalizedNumber
	if number == "" {
		number = contacts.NormalizeNumber(c.Number)
	}
	return contactDoc{
		Name:   c.DisplayName,
		Number: number,
		Label:  contacts.TypeLabel(contacts.PhoneType(c.Type), c.Label),
	}
}

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path gives an
// in-memory index. If the mapping changes, remove the index directory and
// reindex from storage.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer: lowercase and unicode word split, no stemming, so
	// "Jones" does not collapse into "jone".
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("label", textFieldMapping)
	docMapping.AddFieldMappingsAt("number", bleve.NewKeywordFieldMapping())
	im.AddDocumentMapping("contact", docMapping)
	im.DefaultType = "contact"
	im.DefaultMapping = docMapping

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a contact by its ID.
func (b *BleveIndex) Index(ctx context.Context, c *models.ContactRecord) error {
	return b.index.Index(c.ID, newContactDoc(c))
}

// IndexBatch indexes many contacts in one batch.
func (b *BleveIndex) IndexBatch(ctx context.Context, records []*models.ContactRecord) error {
	batch := b.index.NewBatch()
	for _, c := range records {
		if err := batch.Index(c.ID, newContactDoc(c)); err != nil {
			return fmt.Errorf("failed to batch contact %s: %w", c.ID, err)
		}
	}
	return b.index.Batch(batch)
}

// Search matches query against names and labels, and against numbers when the
// query contains at least three digits. Name matches are boosted by
// opts.NameBoost.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	nameBoost := 1.0
	fuzzyEnabled := false
	fuzziness := 1
	if opts != nil {
		if opts.NameBoost > 0 {
			nameBoost = opts.NameBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	var queries []blevequery.Query
	if fuzzyEnabled {
		queries = append(queries, buildFuzzyQuery(query, fuzziness, "name", nameBoost))
	} else {
		nq := bleve.NewMatchQuery(query)
		nq.SetField("name")
		nq.SetBoost(nameBoost)
		queries = append(queries, nq)
	}
	lq := bleve.NewMatchQuery(query)
	lq.SetField("label")
	queries = append(queries, lq)

	if digits := strings.TrimPrefix(contacts.NormalizeNumber(query), "+"); len(digits) >= minNumberQueryDigits {
		wq := bleve.NewWildcardQuery("*" + digits + "*")
		wq.SetField("number")
		wq.SetBoost(nameBoost)
		queries = append(queries, wq)
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = limit
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

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries, one per query term,
// restricted to field.
func buildFuzzyQuery(queryStr string, fuzziness int, field string, boost float64) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
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
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes a contact from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DeleteBatch removes many contacts in one batch.
func (b *BleveIndex) DeleteBatch(ctx context.Context, ids []string) error {
	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return b.index.Batch(batch)
}

// IDs returns the ID of every indexed contact.
func (b *BleveIndex) IDs(ctx context.Context) ([]string, error) {
	const page = 1000
	var ids []string
	for from := 0; ; from += page {
		req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
		req.From = from
		req.Size = page
		results, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to list indexed contacts: %w", err)
		}
		for _, hit := range results.Hits {
			ids = append(ids, hit.ID)
		}
		if len(results.Hits) < page {
			return ids, nil
		}
	}
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of contacts in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// GetAllTerms returns all unique terms from the name field dictionary.
func (b *BleveIndex) GetAllTerms() ([]string, error) {
	dict, err := b.index.FieldDict("name")
	if err != nil {
		return nil, fmt.Errorf("failed to open name dictionary: %w", err)
	}
	defer dict.Close()

	var terms []string
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return terms, nil
		}
		terms = append(terms, entry.Term)
	}
}

// GetTermFrequency returns the number of contacts whose name contains term.
func (b *BleveIndex) GetTermFrequency(term string) (int, error) {
	q := bleve.NewTermQuery(strings.ToLower(term))
	q.SetField("name")
	req := bleve.NewSearchRequest(q)
	req.Size = 0
	results, err := b.index.Search(req)
	if err != nil {
		return 0, fmt.Errorf("failed to search for term frequency: %w", err)
	}
	return int(results.Total), nil
}

// ContainsTerm checks if a name term exists in the index.
func (b *BleveIndex) ContainsTerm(term string) (bool, error) {
	freq, err := b.GetTermFrequency(term)
	if err != nil {
		return false, err
	}
	return freq > 0, nil
}
