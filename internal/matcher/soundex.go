package matcher

import (
	"strings"
	"unicode"
)

const soundexLen = 4

// Soundex returns the 4-character phonetic code of name: the first letter in
// upper case followed by three digits, zero padded. Letters without a digit
// group (vowels, H, W, Y) and non-letters are dropped before adjacent
// duplicate digits are collapsed, so "Robert" and "Rupert" both yield R163.
// An empty name yields "".
func Soundex(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteRune(unicode.ToUpper(runes[0]))
	written := 1
	var last rune
	for _, r := range runes[1:] {
		if written == soundexLen {
			break
		}
		d := soundexDigit(unicode.ToUpper(r))
		if d == 0 || d == last {
			continue
		}
		b.WriteRune(d)
		last = d
		written++
	}
	for ; written < soundexLen; written++ {
		b.WriteByte('0')
	}
	return b.String()
}

func soundexDigit(r rune) rune {
	switch r {
	case 'B', 'F', 'P', 'V':
		return '1'
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return '2'
	case 'D', 'T':
		return '3'
	case 'L':
		return '4'
	case 'M', 'N':
		return '5'
	case 'R':
		return '6'
	default:
		return 0
	}
}
