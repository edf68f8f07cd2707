package matcher

import (
	"sort"
	"strings"

	"github.com/hyperjump/dialname/internal/models"
)

// Scores returned by FuzzyScore, highest rule first.
const (
	ScoreExact             = 1.0
	ScoreNamePrefix        = 0.95
	ScoreFirstWordPrefix   = 0.92
	ScoreWordPrefixFirst   = 0.9
	ScoreWordPrefix        = 0.85
	ScorePairPrefixFirst   = 0.88
	ScorePairPrefix        = 0.82
	ScorePairNicknameFirst = 0.86
	ScorePairNickname      = 0.80
	ScorePairTypoFirst     = 0.84
	ScorePairTypo          = 0.78
	ScoreAllWords          = 0.8
	ScoreContains          = 0.7
	ScoreSoundex           = 0.65
	ScoreWordSoundex       = 0.6
	ScoreWordContains      = 0.5
	ScoreNone              = 0.0
	typoSimilarityCutoff   = 0.75
	typoSimilarityScale    = 0.9
	minTypoWordLen         = 3
	minContainsInputLen    = 3
)

// FuzzyScore scores how well input matches contactName, in [0, 1].
//
// Rules are tried in a fixed priority order and the first one that applies
// decides the score; scores are never combined. A trailing type label such as
// "(Mobile)" is ignored on the contact side. Blank input scores 0.
func FuzzyScore(input, contactName string) float64 {
	in := normalize(input)
	if in == "" {
		return ScoreNone
	}
	name := normalize(StripTypeLabel(contactName))

	if in == name {
		return ScoreExact
	}
	if strings.HasPrefix(name, in) {
		return ScoreNamePrefix
	}

	nameWords := splitWords(name)
	inputWords := splitWords(in)

	if len(nameWords) > 0 && strings.HasPrefix(nameWords[0], in) {
		return ScoreFirstWordPrefix
	}
	for i, w := range nameWords {
		if strings.HasPrefix(w, in) {
			if i == 0 {
				return ScoreWordPrefixFirst
			}
			return ScoreWordPrefix
		}
	}

	if score, ok := scoreWordPairs(inputWords, nameWords); ok {
		return score
	}

	if len(inputWords) > 0 && allWordsMatch(inputWords, nameWords) {
		return ScoreAllWords
	}

	if strings.Contains(name, in) {
		return ScoreContains
	}

	if sim := similarity(in, name); sim > typoSimilarityCutoff {
		return sim * typoSimilarityScale
	}

	if Soundex(in) == Soundex(name) {
		return ScoreSoundex
	}
	for _, iw := range inputWords {
		code := Soundex(iw)
		for _, nw := range nameWords {
			if code == Soundex(nw) {
				return ScoreWordSoundex
			}
		}
	}

	if runeLen(in) >= minContainsInputLen {
		for _, nw := range nameWords {
			if strings.Contains(nw, in) {
				return ScoreWordContains
			}
		}
	}

	return ScoreNone
}

// scoreWordPairs compares every input word against every name word. The first
// pair that is a prefix match, a nickname variation, or a one-edit typo wins.
func scoreWordPairs(inputWords, nameWords []string) (float64, bool) {
	for ii, iw := range inputWords {
		for ni, nw := range nameWords {
			first := ii == 0 && ni == 0
			if strings.HasPrefix(nw, iw) || strings.HasPrefix(iw, nw) {
				return pick(first, ScorePairPrefixFirst, ScorePairPrefix), true
			}
			if areVariations(iw, nw) {
				return pick(first, ScorePairNicknameFirst, ScorePairNickname), true
			}
			if runeLen(iw) >= minTypoWordLen && runeLen(nw) >= minTypoWordLen &&
				LevenshteinDistance(iw, nw) <= 1 {
				return pick(first, ScorePairTypoFirst, ScorePairTypo), true
			}
		}
	}
	return 0, false
}

// allWordsMatch reports whether each input word is a prefix of, or within two
// edits of, some name word.
func allWordsMatch(inputWords, nameWords []string) bool {
	for _, iw := range inputWords {
		matched := false
		for _, nw := range nameWords {
			if strings.HasPrefix(nw, iw) ||
				(runeLen(iw) >= minTypoWordLen && LevenshteinDistance(iw, nw) <= 2) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func pick(first bool, firstScore, otherScore float64) float64 {
	if first {
		return firstScore
	}
	return otherScore
}

// Defaults for FindMatches and FindGroupedMatches.
const (
	DefaultThreshold  = 0.4
	DefaultMaxResults = 3
	// alternateBias is how much better the space-stripped query must score
	// before it replaces the original query's score.
	alternateBias = 1.05
)

type options struct {
	threshold  float64
	maxResults int
}

// Option configures FindMatches and FindGroupedMatches.
type Option func(*options)

// WithThreshold sets the minimum score a result needs. Values outside [0, 1]
// are ignored.
func WithThreshold(t float64) Option {
	return func(o *options) {
		if t >= 0 && t <= 1 {
			o.threshold = t
		}
	}
}

// WithMaxResults caps the number of results. Non-positive values are ignored.
func WithMaxResults(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxResults = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{threshold: DefaultThreshold, maxResults: DefaultMaxResults}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FindMatches scores every (name, number) pair against input and returns the
// best matches: score >= threshold, highest first, ties in input order, at
// most maxResults. Blank input yields no results.
func FindMatches(input string, contacts []models.NamedNumber, opts ...Option) []models.MatchResult {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	o := buildOptions(opts)
	results := make([]models.MatchResult, 0, len(contacts))
	for _, c := range contacts {
		score := FuzzyScore(input, c.Name)
		if score >= o.threshold {
			results = append(results, models.NewMatchResult(c.Name, c.Number, score))
		}
	}
	return rank(results, o.maxResults)
}

// AlternateQuery returns query with spaces removed and whether it should be
// tried too. Spelled-out names like "J O N" are matched this way.
func AlternateQuery(query string) (string, bool) {
	stripped := strings.ReplaceAll(query, " ", "")
	return stripped, strings.Contains(query, " ") && runeLen(stripped) >= 2
}

// FindGroupedMatches is FindMatches over a grouped directory. When the query
// contains spaces it is also scored with the spaces removed, and that score is
// used only when it beats the original by more than 5%.
func FindGroupedMatches(query string, dir models.Directory, opts ...Option) []models.MatchResult {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	o := buildOptions(opts)
	alt, useAlt := AlternateQuery(query)

	results := make([]models.MatchResult, 0, len(dir))
	for _, entry := range dir {
		score := FuzzyScore(query, entry.Name)
		if useAlt {
			if altScore := FuzzyScore(alt, entry.Name); altScore > score*alternateBias {
				score = altScore
			}
		}
		if score >= o.threshold {
			results = append(results, models.MatchResult{
				Name:         entry.Name,
				PhoneNumbers: append([]models.PhoneNumber(nil), entry.PhoneNumbers...),
				Score:        score,
			})
		}
	}
	return rank(results, o.maxResults)
}

// rank sorts by score descending, keeping input order for ties, and truncates.
func rank(results []models.MatchResult, maxResults int) []models.MatchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}
