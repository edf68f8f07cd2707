// Package keyword provides a full-text index over contact names, numbers and
// labels, plus a name-term spell checker for "did you mean" hints.
package keyword

import (
	"context"

	"github.com/hyperjump/dialname/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// NameBoost multiplies the score contribution of display name matches
	// relative to label matches. Use 1.0 for no boost.
	NameBoost float64
	// FuzzyEnabled matches name terms within Fuzziness edits.
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance for fuzzy matching (1 or 2).
	// Default is 1 when FuzzyEnabled is true.
	Fuzziness int
}

// KeywordIndex defines keyword search operations over contacts.
type KeywordIndex interface {
	Index(ctx context.Context, c *models.ContactRecord) error
	IndexBatch(ctx context.Context, records []*models.ContactRecord) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	Delete(ctx context.Context, id string) error
	DeleteBatch(ctx context.Context, ids []string) error
	// IDs returns the ID of every indexed contact.
	IDs(ctx context.Context) ([]string, error)
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}

// TermDictionary provides access to the name term dictionary for spell checking.
type TermDictionary interface {
	// GetAllTerms returns all unique name terms in the index.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns the number of contacts whose name has the term.
	GetTermFrequency(term string) (int, error)
	// ContainsTerm checks if a term exists in the index.
	ContainsTerm(term string) (bool, error)
}
