package matcher

import (
	"fmt"
	"testing"

	"github.com/hyperjump/dialname/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzyScore_Ladder(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		contact string
		want    float64
	}{
		{"exact", "John Smith", "john smith", ScoreExact},
		{"exact ignoring type label", "jane doe", "Jane Doe (Work)", ScoreExact},
		{"name prefix", "jon", "Jonathan Park", ScoreNamePrefix},
		{"name prefix with label", "john", "John Smith (Mobile)", ScoreNamePrefix},
		{"hyphenated prefix", "mary-ann", "Mary-Ann Lee", ScoreNamePrefix},
		{"later word prefix", "smith", "John Smith", ScoreWordPrefix},
		{"later word partial prefix", "par", "Jonathan Park", ScoreWordPrefix},
		{"hyphen split word prefix", "ann", "Mary-Ann Lee", ScoreWordPrefix},
		{"label stripped before word split", "Smith", "Jane Smith (Work)", ScoreWordPrefix},
		{"pair prefix first words", "john smiht", "John Smith", ScorePairPrefixFirst},
		{"pair prefix period split", "dr who", "Dr. Who", ScorePairPrefixFirst},
		{"pair prefix later words", "smit jon", "John Smith", ScorePairPrefix},
		{"nickname first words", "mike", "Michael Johnson", ScorePairNicknameFirst},
		{"nickname jon for john", "jon", "John Smith", ScorePairNicknameFirst},
		{"nickname reverse direction", "robert", "Bob Jones", ScorePairNicknameFirst},
		{"nickname two words", "tony stark", "Anthony Stark", ScorePairNicknameFirst},
		{"typo first words", "jonathon", "Jonathan Park", ScorePairTypoFirst},
		{"typo inside first word", "ohn", "John Smith", ScorePairTypoFirst},
		{"typo later word", "smyth", "John Smith", ScorePairTypo},
		{"typo later word short", "ark", "Jonathan Park", ScorePairTypo},
		{"all words within two edits", "rupert", "Robert Zimmer", ScoreAllWords},
		{"transposed letters", "jhon", "John Smith", ScoreAllWords},
		{"contains", "han", "Jonathan Park", ScoreContains},
		{"contains short", "ee", "Amy Lee", ScoreContains},
		{"whole soundex", "pheeleep", "Philip", ScoreSoundex},
		{"word soundex", "x twn", "Mark Twain", ScoreWordSoundex},
		{"word soundex typo", "rayn", "Rhian Lee", ScoreWordSoundex},
		{"no match", "xyz123", "John Smith", ScoreNone},
		{"no match letters", "zzzz", "Amy Lee", ScoreNone},
		{"empty input", "", "Anything", ScoreNone},
		{"blank input", "   ", "Anything", ScoreNone},
		{"empty contact", "jon", "", ScoreNone},
		{"label only contact", "mobile", "(Mobile)", ScoreNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FuzzyScore(tt.input, tt.contact),
				"FuzzyScore(%q, %q)", tt.input, tt.contact)
		})
	}
}

func TestFuzzyScore_LevenshteinSimilarity(t *testing.T) {
	// "jonsmith" vs "john smith": distance 2 over 10 runes -> 0.8 similarity, scaled by 0.9.
	assert.InDelta(t, 0.72, FuzzyScore("jonsmith", "John Smith"), 1e-9)
}

func TestFuzzyScore_UnreachableRulesFallThrough(t *testing.T) {
	// A substring of a single name word is always a substring of the whole
	// name, so the contains rule answers before the word-substring rule.
	assert.Equal(t, ScoreContains, FuzzyScore("obe", "Robert"))
	// A prefix of the first word is always a prefix of the whole name.
	assert.Equal(t, ScoreNamePrefix, FuzzyScore("rob", "Robert Smith"))
}

func TestFuzzyScore_Identity(t *testing.T) {
	names := []string{"a", "John", "John Smith", "Mary-Ann O'Neil", "Dr. Who", "Zoë Saldaña", "李小龍", "  Padded  "}
	for _, n := range names {
		assert.Equal(t, ScoreExact, FuzzyScore(n, n), "FuzzyScore(%q, %q)", n, n)
	}
}

func TestFuzzyScore_CaseAndCompositionInsensitive(t *testing.T) {
	assert.Equal(t, ScoreExact, FuzzyScore("ZOË", "Zoe\u0308"))
	assert.Equal(t, ScoreExact, FuzzyScore("ÉMILE", "émile"))
}

func TestFuzzyScore_Range(t *testing.T) {
	inputs := []string{"", "j", "jon", "J O N", "smyth", "xyz123", "mike", "pheeleep", "a-b.c d", "()"}
	contacts := []string{"", "John Smith", "Jonathan Park", "Amy Lee", "Michael Johnson", "Philip (Home)", "(Work)", "Dr. Who"}
	for _, in := range inputs {
		for _, c := range contacts {
			s := FuzzyScore(in, c)
			assert.GreaterOrEqual(t, s, 0.0, "FuzzyScore(%q, %q)", in, c)
			assert.LessOrEqual(t, s, 1.0, "FuzzyScore(%q, %q)", in, c)
		}
	}
}

func TestStripTypeLabel(t *testing.T) {
	assert.Equal(t, "Jane Doe", StripTypeLabel("Jane Doe (Work Fax)"))
	assert.Equal(t, "Jane Doe", StripTypeLabel("Jane Doe(Mobile)  "))
	assert.Equal(t, "Jane (JD) Doe", StripTypeLabel("Jane (JD) Doe"))
	assert.Equal(t, "", StripTypeLabel("(Home)"))
}

var sampleContacts = []models.NamedNumber{
	{Name: "John Smith", Number: "555"},
	{Name: "Jonathan Park", Number: "555"},
	{Name: "Amy Lee", Number: "555"},
}

func TestFindMatches(t *testing.T) {
	got := FindMatches("jon", sampleContacts, WithThreshold(0.4), WithMaxResults(3))
	require.Len(t, got, 2)
	assert.Equal(t, "Jonathan Park", got[0].Name)
	assert.Equal(t, ScoreNamePrefix, got[0].Score)
	assert.Equal(t, "John Smith", got[1].Name)
	assert.Equal(t, ScorePairNicknameFirst, got[1].Score)
	assert.Equal(t, "555", got[1].PrimaryNumber())
}

func TestFindMatches_BlankInput(t *testing.T) {
	assert.Empty(t, FindMatches("", sampleContacts))
	assert.Empty(t, FindMatches("  \t ", sampleContacts))
	assert.Empty(t, FindMatches("", nil))
}

func TestFindMatches_Defaults(t *testing.T) {
	contacts := []models.NamedNumber{
		{Name: "Jon Snow", Number: "1"},
		{Name: "Jonah Hill", Number: "2"},
		{Name: "Jonas Brother", Number: "3"},
		{Name: "Jonathan Park", Number: "4"},
		{Name: "Amy Lee", Number: "5"},
	}
	got := FindMatches("jon", contacts)
	require.Len(t, got, DefaultMaxResults)
	// Equal scores keep input order.
	assert.Equal(t, "Jon Snow", got[0].Name)
	assert.Equal(t, "Jonah Hill", got[1].Name)
	assert.Equal(t, "Jonas Brother", got[2].Name)
}

func TestFindMatches_ThresholdFilters(t *testing.T) {
	got := FindMatches("jon", sampleContacts, WithThreshold(0.9))
	require.Len(t, got, 1)
	assert.Equal(t, "Jonathan Park", got[0].Name)

	// Out-of-range options are ignored.
	got = FindMatches("jon", sampleContacts, WithThreshold(7), WithMaxResults(-1))
	assert.Len(t, got, 2)
}

func TestFindMatches_Invariants(t *testing.T) {
	var contacts []models.NamedNumber
	for i, n := range []string{"John Smith", "Jon Snow", "Joan Jett", "Johnny Cash", "Jonathan Park",
		"Amy Lee", "Bob Jones", "Robert Zimmer", "Mike Ross", "Michael Johnson", "Jane Smith (Work)"} {
		contacts = append(contacts, models.NamedNumber{Name: n, Number: fmt.Sprint(i)})
	}
	queries := []string{"jon", "j", "smith", "bob", "mike", "zzz", "jo hn", "robert z", "jane"}
	for _, q := range queries {
		for k := 1; k <= 5; k++ {
			got := FindMatches(q, contacts, WithMaxResults(k))
			assert.LessOrEqual(t, len(got), k, "query %q", q)
			for i, r := range got {
				assert.GreaterOrEqual(t, r.Score, DefaultThreshold, "query %q result %q", q, r.Name)
				if i > 0 {
					assert.GreaterOrEqual(t, got[i-1].Score, r.Score, "query %q not sorted", q)
				}
			}
		}
	}
}

var sampleDirectory = models.Directory{
	{Name: "Amy Lee", PhoneNumbers: []models.PhoneNumber{{Number: "+15550001", Label: "Mobile"}}},
	{Name: "John Smith", PhoneNumbers: []models.PhoneNumber{
		{Number: "+15550002", Label: "Mobile"},
		{Number: "+15550003", Label: "Work"},
	}},
	{Name: "Jon Snow", PhoneNumbers: []models.PhoneNumber{{Number: "+15550004", Label: "Home"}}},
	{Name: "Jonathan Park", PhoneNumbers: []models.PhoneNumber{{Number: "+15550005"}}},
	{Name: "Mike Ross", PhoneNumbers: []models.PhoneNumber{{Number: "+15550006"}}},
}

func TestFindGroupedMatches(t *testing.T) {
	got := FindGroupedMatches("jon", sampleDirectory)
	require.Len(t, got, 3)
	assert.Equal(t, "Jon Snow", got[0].Name)
	assert.Equal(t, "Jonathan Park", got[1].Name)
	assert.Equal(t, "John Smith", got[2].Name)
	assert.Equal(t, ScorePairNicknameFirst, got[2].Score)
	require.Len(t, got[2].PhoneNumbers, 2)
	assert.Equal(t, "Work", got[2].PhoneNumbers[1].Label)
}

func TestFindGroupedMatches_SpelledOutName(t *testing.T) {
	got := FindGroupedMatches("J O N", sampleDirectory)
	require.Len(t, got, 3)
	// "JON" scores 0.95 against these, beating "J O N"'s 0.88 by more than 5%.
	assert.Equal(t, "Jon Snow", got[0].Name)
	assert.Equal(t, ScoreNamePrefix, got[0].Score)
	assert.Equal(t, "Jonathan Park", got[1].Name)
	assert.Equal(t, ScoreNamePrefix, got[1].Score)
	// For John Smith the stripped query scores lower, so the original stands.
	assert.Equal(t, "John Smith", got[2].Name)
	assert.Equal(t, ScorePairPrefixFirst, got[2].Score)
}

func TestFindGroupedMatches_AlternateNeedsFivePercent(t *testing.T) {
	dir := models.Directory{{Name: "John Smith", PhoneNumbers: []models.PhoneNumber{{Number: "1"}}}}
	// "sm ith" scores 0.82; "smith" scores 0.85, which is not more than 0.82 * 1.05.
	got := FindGroupedMatches("sm ith", dir)
	require.Len(t, got, 1)
	assert.Equal(t, ScorePairPrefix, got[0].Score)

	dir = models.Directory{{Name: "Tom Hanks", PhoneNumbers: []models.PhoneNumber{{Number: "2"}}}}
	got = FindGroupedMatches("t o m", dir)
	require.Len(t, got, 1)
	assert.Equal(t, ScoreNamePrefix, got[0].Score)
}

func TestFindGroupedMatches_CopiesNumbers(t *testing.T) {
	got := FindGroupedMatches("mike", sampleDirectory)
	require.Len(t, got, 1)
	got[0].PhoneNumbers[0].Number = "changed"
	assert.Equal(t, "+15550006", sampleDirectory[4].PhoneNumbers[0].Number)
}

func TestFindGroupedMatches_BlankAndNoMatch(t *testing.T) {
	assert.Empty(t, FindGroupedMatches("", sampleDirectory))
	assert.Empty(t, FindGroupedMatches("zzz", sampleDirectory))
	assert.Empty(t, FindGroupedMatches("jon", nil))
}

func TestAlternateQuery(t *testing.T) {
	tests := []struct {
		query   string
		want    string
		wantUse bool
	}{
		{"J O N", "JON", true},
		{"jon", "jon", false},
		{"a ", "a", false},
		{"a b", "ab", true},
		{"   ", "", false},
	}
	for _, tt := range tests {
		got, use := AlternateQuery(tt.query)
		assert.Equal(t, tt.want, got, "AlternateQuery(%q)", tt.query)
		assert.Equal(t, tt.wantUse, use, "AlternateQuery(%q)", tt.query)
	}
}

func BenchmarkFindGroupedMatches(b *testing.B) {
	dir := make(models.Directory, 0, 1000)
	for i := 0; i < 1000; i++ {
		dir = append(dir, models.DirectoryEntry{
			Name:         fmt.Sprintf("Contact %d Person", i),
			PhoneNumbers: []models.PhoneNumber{{Number: fmt.Sprint(i)}},
		})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FindGroupedMatches("persn", dir)
	}
}
