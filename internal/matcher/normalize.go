package matcher

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// typeLabelPattern matches a trailing phone type label such as " (Mobile)".
var typeLabelPattern = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// StripTypeLabel removes a trailing parenthetical label from a display name:
// "Jane Doe (Work)" becomes "Jane Doe".
func StripTypeLabel(name string) string {
	return strings.TrimSpace(typeLabelPattern.ReplaceAllString(name, ""))
}

// normalize composes, trims, and lower-cases s. A Caser is stateful, so each
// call builds its own.
func normalize(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" {
		return ""
	}
	return cases.Lower(language.Und).String(s)
}

func isWordSeparator(r rune) bool {
	return r == ' ' || r == '-' || r == '.'
}

// splitWords splits on spaces, hyphens, and periods. Empty tokens are dropped.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, isWordSeparator)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
