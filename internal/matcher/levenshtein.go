// Package matcher scores free-text names against contact display names.
//
// Every function in this package is pure: no I/O, no shared mutable state, no
// errors. Unmatched or malformed input simply scores 0 or yields no results.
package matcher

import "unicode"

// LevenshteinDistance returns the minimum number of single-rune insertions,
// deletions, or substitutions needed to turn a into b. Runes are compared
// case-insensitively.
func LevenshteinDistance(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)
	lenA := len(runesA)
	lenB := len(runesB)
	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// Two rows of the (lenA+1) x (lenB+1) cost matrix are enough.
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)
	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		ra := unicode.ToLower(runesA[i-1])
		for j := 1; j <= lenB; j++ {
			cost := 1
			if ra == unicode.ToLower(runesB[j-1]) {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[lenB]
}

// similarity returns 1 - distance/maxLen, or 0 when both strings are empty.
func similarity(a, b string) float64 {
	maxLen := max(runeLen(a), runeLen(b))
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}
