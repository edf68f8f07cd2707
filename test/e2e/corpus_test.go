package e2e

import (
	"testing"
)

func TestBuildCorpus_ContactsPerName(t *testing.T) {
	c := BuildCorpus()
	if c.TotalNames != len(corpusNames) {
		t.Errorf("expected %d names, got %d", len(corpusNames), c.TotalNames)
	}
	// Every third name has a second number.
	want := len(corpusNames) + (len(corpusNames)+2)/3
	if len(c.Contacts) != want {
		t.Errorf("expected %d contacts, got %d", want, len(c.Contacts))
	}
	seen := make(map[string]bool)
	for _, ct := range c.Contacts {
		if seen[ct.Number] {
			t.Errorf("duplicate number %s", ct.Number)
		}
		seen[ct.Number] = true
	}
}

func TestBuildCorpus_QueryTestCasesExist(t *testing.T) {
	c := BuildCorpus()
	if c.TotalQueries == 0 {
		t.Fatal("expected at least one query test case")
	}
	for i, tc := range c.TestCases {
		if tc.Query == "" {
			t.Errorf("test case %d: empty query", i)
		}
		if len(tc.ExpectedNames) == 0 {
			t.Errorf("test case %d: no expected names", i)
		}
		for _, name := range tc.ExpectedNames {
			if !c.hasName(name) {
				t.Errorf("test case %d: expected name %q not in corpus", i, name)
			}
		}
	}
}

func TestCorpus_ToContactInputs(t *testing.T) {
	c := BuildCorpus()
	inputs := c.ToContactInputs()
	if len(inputs) != len(c.Contacts) {
		t.Errorf("expected %d inputs, got %d", len(c.Contacts), len(inputs))
	}
	for i := range inputs {
		if inputs[i].DisplayName != c.Contacts[i].Name {
			t.Errorf("input[%d].DisplayName = %q, want %q", i, inputs[i].DisplayName, c.Contacts[i].Name)
		}
		if inputs[i].Number != c.Contacts[i].Number || inputs[i].Type != c.Contacts[i].Type {
			t.Errorf("input[%d] = %+v, want %+v", i, inputs[i], c.Contacts[i])
		}
	}
}
