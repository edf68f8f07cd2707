// Package contacts turns stored contact records into the shapes the matcher
// searches: a grouped directory, a flat labeled list, and reverse lookups.
package contacts

import "strings"

// PhoneType mirrors the platform phone number types.
type PhoneType int

const (
	TypeCustom  PhoneType = 0
	TypeHome    PhoneType = 1
	TypeMobile  PhoneType = 2
	TypeWork    PhoneType = 3
	TypeFaxWork PhoneType = 4
	TypeFaxHome PhoneType = 5
	TypePager   PhoneType = 6
	TypeOther   PhoneType = 7
	TypeMain    PhoneType = 12
)

// TypeLabel returns the display label for t. Custom types use custom, or
// "Custom" when it is empty. Unknown types have no label.
func TypeLabel(t PhoneType, custom string) string {
	switch t {
	case TypeMobile:
		return "Mobile"
	case TypeHome:
		return "Home"
	case TypeWork:
		return "Work"
	case TypeMain:
		return "Main"
	case TypeFaxWork:
		return "Work Fax"
	case TypeFaxHome:
		return "Home Fax"
	case TypePager:
		return "Pager"
	case TypeOther:
		return "Other"
	case TypeCustom:
		if custom == "" {
			return "Custom"
		}
		return custom
	}
	return ""
}

var typeNames = map[string]PhoneType{
	"mobile":   TypeMobile,
	"cell":     TypeMobile,
	"cellular": TypeMobile,
	"iphone":   TypeMobile,
	"home":     TypeHome,
	"work":     TypeWork,
	"office":   TypeWork,
	"business": TypeWork,
	"main":     TypeMain,
	"work fax": TypeFaxWork,
	"fax work": TypeFaxWork,
	"fax":      TypeFaxWork,
	"home fax": TypeFaxHome,
	"fax home": TypeFaxHome,
	"pager":    TypePager,
	"other":    TypeOther,
	"":         TypeMobile,
}

// ParsePhoneType maps a label from an import file to a PhoneType. A blank
// label means mobile. Unknown labels become TypeCustom with the trimmed label
// returned as the custom text.
func ParsePhoneType(s string) (PhoneType, string) {
	label := strings.TrimSpace(s)
	key := strings.Join(strings.Fields(strings.ToLower(label)), " ")
	if t, ok := typeNames[key]; ok {
		return t, ""
	}
	return TypeCustom, label
}

// NormalizeNumber strips formatting, keeping only '+' and digits.
func NormalizeNumber(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == '+' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, raw)
}

// FormatNumber renders 10-digit numbers, and 11-digit numbers with a leading
// 1, as "(555) 123-4567". Anything else is returned unchanged.
func FormatNumber(number string) string {
	digits := strings.ReplaceAll(NormalizeNumber(number), "+", "")
	switch {
	case len(digits) == 10:
	case len(digits) == 11 && digits[0] == '1':
		digits = digits[1:]
	default:
		return number
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}

// nationalDigits drops '+' and a leading NANP country code so "+15551234567"
// and "5551234567" compare equal.
func nationalDigits(number string) string {
	d := strings.TrimPrefix(NormalizeNumber(number), "+")
	if len(d) == 11 && d[0] == '1' {
		return d[1:]
	}
	return d
}
