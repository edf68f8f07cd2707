package matcher

// nicknameTable lists known given-name variations. Lookups are symmetric: a
// pair matches when either side lists the other.
var nicknameTable = map[string][]string{
	"john":        {"jon", "johnny"},
	"jon":         {"john", "jonathan"},
	"jonathan":    {"jon", "john"},
	"robert":      {"rob", "bob", "bobby"},
	"rob":         {"robert", "bob"},
	"bob":         {"robert", "rob"},
	"william":     {"will", "bill", "billy"},
	"will":        {"william", "bill"},
	"bill":        {"william", "will"},
	"richard":     {"rick", "dick", "rich"},
	"rick":        {"richard", "rich"},
	"michael":     {"mike", "mick"},
	"mike":        {"michael"},
	"james":       {"jim", "jimmy"},
	"jim":         {"james", "jimmy"},
	"joseph":      {"joe", "joey"},
	"joe":         {"joseph", "joey"},
	"thomas":      {"tom", "tommy"},
	"tom":         {"thomas", "tommy"},
	"charles":     {"charlie", "chuck"},
	"charlie":     {"charles", "chuck"},
	"christopher": {"chris"},
	"chris":       {"christopher"},
	"daniel":      {"dan", "danny"},
	"dan":         {"daniel", "danny"},
	"matthew":     {"matt"},
	"matt":        {"matthew"},
	"anthony":     {"tony"},
	"tony":        {"anthony"},
	"nicholas":    {"nick"},
	"nick":        {"nicholas"},
	"elizabeth":   {"liz", "beth", "betty"},
	"liz":         {"elizabeth"},
	"beth":        {"elizabeth"},
	"jennifer":    {"jen", "jenny"},
	"jen":         {"jennifer", "jenny"},
	"katherine":   {"kate", "kathy", "kat"},
	"kate":        {"katherine", "katie"},
	"katie":       {"katherine", "kate"},
	"rebecca":     {"becca", "becky"},
	"becca":       {"rebecca"},
	"becky":       {"rebecca"},
}

// variations is the symmetric closure of nicknameTable, built once at init and
// never written afterwards.
var variations = buildVariations(nicknameTable)

func buildVariations(table map[string][]string) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(table)*2)
	link := func(a, b string) {
		set, ok := out[a]
		if !ok {
			set = make(map[string]struct{})
			out[a] = set
		}
		set[b] = struct{}{}
	}
	for name, alts := range table {
		for _, alt := range alts {
			link(name, alt)
			link(alt, name)
		}
	}
	return out
}

// AreNameVariations reports whether a and b are known variations of the same
// given name, e.g. "Mike" and "michael". Comparison is case-insensitive.
func AreNameVariations(a, b string) bool {
	return areVariations(normalize(a), normalize(b))
}

func areVariations(a, b string) bool {
	_, ok := variations[a][b]
	return ok
}

// Variations returns the known variations of name in no particular order.
func Variations(name string) []string {
	set := variations[normalize(name)]
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out
}
