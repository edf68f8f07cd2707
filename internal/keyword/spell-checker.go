package keyword

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hyperjump/dialname/internal/matcher"
)

// Suggestion represents a spelling suggestion with its score.
type Suggestion struct {
	Term      string  // The suggested name term
	Distance  int     // Edit distance from the original term
	Frequency int     // Number of contacts carrying the term
	Score     float64 // Combined score for ranking
}

// SpellCheckResult contains the result of spell checking a query.
type SpellCheckResult struct {
	OriginalQuery   string
	CorrectedQuery  string
	Suggestions     []Suggestion
	HasCorrections  bool
	MisspelledTerms []string
}

// SpellChecker suggests contact name terms close to misspelled query terms.
type SpellChecker struct {
	dictionary     TermDictionary
	maxDistance    int
	minFreq        int
	maxSuggestions int

	cacheMu    sync.RWMutex
	termsCache []string
	termSet    map[string]struct{}
	cacheValid bool
}

// SpellCheckerOption is a functional option for configuring SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency sets the minimum number of contacts a term must appear in.
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// WithMaxSuggestions sets the maximum number of suggestions to return per term.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker creates a new SpellChecker with the given dictionary.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 5,
		termSet:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshCache reloads the term cache from the dictionary.
func (s *SpellChecker) RefreshCache() error {
	terms, err := s.dictionary.GetAllTerms()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.termsCache = terms
	s.termSet = make(map[string]struct{}, len(terms))
	for _, t := range terms {
		s.termSet[strings.ToLower(t)] = struct{}{}
	}
	s.cacheValid = true
	return nil
}

// Invalidate marks the cache stale; the next lookup reloads it.
func (s *SpellChecker) Invalidate() {
	s.cacheMu.Lock()
	s.cacheValid = false
	s.cacheMu.Unlock()
}

func (s *SpellChecker) ensureCache() error {
	s.cacheMu.RLock()
	valid := s.cacheValid
	s.cacheMu.RUnlock()
	if valid {
		return nil
	}
	return s.RefreshCache()
}

func (s *SpellChecker) known(term string) bool {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	_, ok := s.termSet[term]
	return ok
}

// Check checks a query for unknown name terms and returns suggestions.
func (s *SpellChecker) Check(query string) (*SpellCheckResult, error) {
	if err := s.ensureCache(); err != nil {
		return nil, err
	}

	terms := tokenizeQuery(query)
	result := &SpellCheckResult{
		OriginalQuery:   query,
		Suggestions:     make([]Suggestion, 0),
		MisspelledTerms: make([]string, 0),
	}

	corrected := make([]string, 0, len(terms))
	for _, term := range terms {
		if s.known(term) {
			corrected = append(corrected, term)
			continue
		}
		suggestions := s.Suggest(term)
		if len(suggestions) == 0 {
			corrected = append(corrected, term)
			continue
		}
		result.HasCorrections = true
		result.MisspelledTerms = append(result.MisspelledTerms, term)
		result.Suggestions = append(result.Suggestions, suggestions...)
		corrected = append(corrected, suggestions[0].Term)
	}

	result.CorrectedQuery = strings.Join(corrected, " ")
	return result, nil
}

// Suggest returns dictionary terms within the maximum edit distance of term,
// best first. Closer terms win; among equally close terms, more common ones win.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	if err := s.ensureCache(); err != nil {
		return nil
	}

	termLower := strings.ToLower(term)
	termLen := utf8.RuneCountInString(termLower)

	s.cacheMu.RLock()
	terms := s.termsCache
	s.cacheMu.RUnlock()

	suggestions := make([]Suggestion, 0)
	for _, dictTerm := range terms {
		dictTermLower := strings.ToLower(dictTerm)
		if dictTermLower == termLower {
			continue
		}

		// Length difference is a lower bound on edit distance.
		lenDiff := utf8.RuneCountInString(dictTermLower) - termLen
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > s.maxDistance {
			continue
		}

		distance := matcher.LevenshteinDistance(termLower, dictTermLower)
		if distance > s.maxDistance {
			continue
		}
		freq, err := s.dictionary.GetTermFrequency(dictTerm)
		if err != nil || freq < s.minFreq {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Term:      dictTerm,
			Distance:  distance,
			Frequency: freq,
			Score:     float64(freq) / float64(distance+1),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Term < b.Term
	})
	if len(suggestions) > s.maxSuggestions {
		suggestions = suggestions[:s.maxSuggestions]
	}
	return suggestions
}

// GetTopSuggestions returns up to n alternative queries. The first is the
// fully corrected query; the rest swap in runner-up terms for the first
// misspelled term.
func (s *SpellChecker) GetTopSuggestions(query string, n int) []string {
	if n <= 0 {
		return nil
	}
	result, err := s.Check(query)
	if err != nil || !result.HasCorrections {
		return nil
	}

	out := []string{result.CorrectedQuery}
	corrected := strings.Fields(result.CorrectedQuery)
	pos := -1
	for i, term := range tokenizeQuery(query) {
		if term == result.MisspelledTerms[0] {
			pos = i
			break
		}
	}
	if pos < 0 || pos >= len(corrected) {
		return out
	}
	for i, sg := range s.Suggest(result.MisspelledTerms[0]) {
		if len(out) >= n {
			break
		}
		if i == 0 {
			continue
		}
		alt := append([]string(nil), corrected...)
		alt[pos] = sg.Term
		out = append(out, strings.Join(alt, " "))
	}
	return out
}
