package contacts

import "github.com/hyperjump/dialname/internal/models"

func recordNumber(r *models.ContactRecord) string {
	if r.NormalizedNumber != "" {
		return r.NormalizedNumber
	}
	return NormalizeNumber(r.Number)
}

func usable(r *models.ContactRecord) bool {
	return r != nil && r.DisplayName != "" && recordNumber(r) != ""
}

func dedupeKey(name, number string) string {
	return name + "|" + number
}

// BuildDirectory groups records by display name. Names keep the order they
// were first seen in, which is the tie-break order for equal match scores.
// Records without a name or number are skipped and repeated name/number
// pairs are kept once.
func BuildDirectory(records []*models.ContactRecord) models.Directory {
	dir := models.Directory{}
	index := make(map[string]int)
	seen := make(map[string]struct{})
	for _, r := range records {
		if !usable(r) {
			continue
		}
		number := recordNumber(r)
		key := dedupeKey(r.DisplayName, number)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		phone := models.PhoneNumber{Number: number, Label: TypeLabel(PhoneType(r.Type), r.Label)}
		i, ok := index[r.DisplayName]
		if !ok {
			index[r.DisplayName] = len(dir)
			dir = append(dir, models.DirectoryEntry{Name: r.DisplayName})
			i = len(dir) - 1
		}
		dir[i].PhoneNumbers = append(dir[i].PhoneNumbers, phone)
	}
	return dir
}

// LabeledEntries flattens records into (name, number) pairs for FindMatches.
// When a contact has more than one distinct number, each entry's name gets
// the number's type label, e.g. "Jane Doe (Work)".
func LabeledEntries(records []*models.ContactRecord) []models.NamedNumber {
	distinct := make(map[string]map[string]struct{})
	for _, r := range records {
		if !usable(r) {
			continue
		}
		nums, ok := distinct[r.DisplayName]
		if !ok {
			nums = make(map[string]struct{})
			distinct[r.DisplayName] = nums
		}
		nums[recordNumber(r)] = struct{}{}
	}

	entries := make([]models.NamedNumber, 0, len(records))
	seen := make(map[string]struct{})
	for _, r := range records {
		if !usable(r) {
			continue
		}
		number := recordNumber(r)
		key := dedupeKey(r.DisplayName, number)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		name := r.DisplayName
		if len(distinct[name]) > 1 {
			if label := TypeLabel(PhoneType(r.Type), r.Label); label != "" {
				name += " (" + label + ")"
			}
		}
		entries = append(entries, models.NamedNumber{Name: name, Number: number})
	}
	return entries
}

// LookupName finds the display name for number. An exact normalized match wins;
// otherwise numbers are compared without '+' and a leading US country code.
func LookupName(records []*models.ContactRecord, number string) (string, bool) {
	want := NormalizeNumber(number)
	if want == "" {
		return "", false
	}
	for _, r := range records {
		if usable(r) && recordNumber(r) == want {
			return r.DisplayName, true
		}
	}
	national := nationalDigits(want)
	if national == "" {
		return "", false
	}
	for _, r := range records {
		if usable(r) && nationalDigits(recordNumber(r)) == national {
			return r.DisplayName, true
		}
	}
	return "", false
}
