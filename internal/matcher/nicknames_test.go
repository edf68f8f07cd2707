package matcher

import (
	"sort"
	"testing"
)

func TestAreNameVariations(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"john", "jon", true},
		{"jon", "john", true},
		{"johnny", "john", true},
		{"Mike", "MICHAEL", true},
		{"bobby", "robert", true},
		{"bill", "william", true},
		{"kat", "katherine", true},
		{"becky", "rebecca", true},
		// not listed on either side
		{"johnny", "jonathan", false},
		{"bobby", "bob", false},
		{"john", "john", false},
		{"alice", "alicia", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := AreNameVariations(tt.a, tt.b); got != tt.want {
				t.Errorf("AreNameVariations(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestAreNameVariations_Symmetric(t *testing.T) {
	for name, alts := range nicknameTable {
		for _, alt := range alts {
			if !AreNameVariations(name, alt) || !AreNameVariations(alt, name) {
				t.Errorf("%q and %q should match in both directions", name, alt)
			}
		}
	}
}

func TestVariations(t *testing.T) {
	got := Variations("Michael")
	sort.Strings(got)
	if len(got) != 2 || got[0] != "mick" || got[1] != "mike" {
		t.Errorf("Variations(Michael) = %v, want [mick mike]", got)
	}
	if got := Variations("zebedee"); len(got) != 0 {
		t.Errorf("Variations(zebedee) = %v, want empty", got)
	}

	// Callers get a copy; mutating it must not affect later lookups.
	v := Variations("tom")
	for i := range v {
		v[i] = "x"
	}
	if !AreNameVariations("tom", "thomas") {
		t.Error("lookup table changed after mutating Variations result")
	}
}
