// Package utils provides shared utilities for text, speech, and logging.
package utils

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Truncate returns s cut to maxLen user-perceived characters (grapheme
// clusters), with "..." appended if truncated. If maxLen is 0 or negative,
// returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || uniseg.GraphemeClusterCount(s) <= maxLen {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < maxLen && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	return b.String() + "..."
}

// PadRight pads s with spaces to width terminal columns. Wide characters
// count as two columns. Strings already wider than width are returned as is.
func PadRight(s string, width int) string {
	w := uniseg.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// FitColumn truncates s to fit width columns and pads it to exactly width.
func FitColumn(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return PadRight(s, width)
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := g.Width()
		if used+cw > width-1 {
			break
		}
		b.WriteString(g.Str())
		used += cw
	}
	b.WriteString("…")
	return PadRight(b.String(), width)
}
