// Package e2e provides end-to-end tests with a contact corpus and spoken-name queries.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/dialname/internal/models"
)

// E2EContact is a contact entry in the E2E corpus.
type E2EContact struct {
	Name   string
	Number string
	Type   string
}

// QueryTestCase defines a spoken query and the contact name(s) that must appear in the matches.
type QueryTestCase struct {
	Query         string
	ExpectedNames []string
	Description   string
}

// Corpus holds contacts and query test cases for E2E tests.
type Corpus struct {
	Contacts     []E2EContact
	TestCases    []QueryTestCase
	TotalNames   int
	TotalQueries int
}

var corpusNames = []string{
	// Names with nickname, typo or sound-alike queries below.
	"Robert Brown", "John Smith", "Katherine Lee", "Rebecca Ortiz", "Michael Chen",
	"Margaret Thompson", "Anthony Russo", "Elizabeth Warren", "Daniel Kim", "Charles Dupont",
	"Jennifer Walsh", "Nicholas Grant", "William Hart", "Richard Moore",
	// Filler.
	"Olivia Bennett", "Priya Raman", "Hiroshi Tanaka", "Fatima Haddad", "Lars Nilsson",
	"Sofia Marquez", "Kwame Mensah", "Ingrid Berg", "Mateo Rossi", "Aiko Sato",
	"Yusuf Demir", "Chloe Martin", "Ravi Patel", "Nora Quinn", "Oscar Lindqvist",
	"Grace Okafor", "Ethan Brooks", "Zara Ahmed", "Leo Fischer", "Maya Cohen",
}

var phoneTypes = []string{"mobile", "home", "work"}

// BuildCorpus returns a corpus of contacts, some with several numbers, and query test cases
// covering exact names, nicknames, typos, sound-alikes, partial words and spelled-out letters.
func BuildCorpus() *Corpus {
	contacts := buildContacts()
	cases := buildQueryTestCases()
	return &Corpus{
		Contacts:     contacts,
		TestCases:    cases,
		TotalNames:   len(corpusNames),
		TotalQueries: len(cases),
	}
}

func buildContacts() []E2EContact {
	out := make([]E2EContact, 0, len(corpusNames)+len(corpusNames)/3)
	for i, name := range corpusNames {
		out = append(out, E2EContact{
			Name:   name,
			Number: fmt.Sprintf("555-01%02d", i),
			Type:   phoneTypes[i%len(phoneTypes)],
		})
		// Every third contact gets a second number.
		if i%3 == 0 {
			out = append(out, E2EContact{
				Name:   name,
				Number: fmt.Sprintf("555-02%02d", i),
				Type:   "work",
			})
		}
	}
	return out
}

func buildQueryTestCases() []QueryTestCase {
	return []QueryTestCase{
		{"robert brown", []string{"Robert Brown"}, "exact full name"},
		{"margaret", []string{"Margaret Thompson"}, "first name only"},
		{"thompson", []string{"Margaret Thompson"}, "last name only"},
		{"bob", []string{"Robert Brown"}, "nickname bob"},
		{"jon", []string{"John Smith"}, "nickname jon"},
		{"katie", []string{"Katherine Lee"}, "nickname katie"},
		{"becky", []string{"Rebecca Ortiz"}, "nickname becky"},
		{"mike chen", []string{"Michael Chen"}, "nickname with last name"},
		{"tony", []string{"Anthony Russo"}, "nickname tony"},
		{"liz", []string{"Elizabeth Warren"}, "nickname liz"},
		{"chuck", []string{"Charles Dupont"}, "nickname chuck"},
		{"rick", []string{"Richard Moore"}, "nickname rick"},
		{"dan", []string{"Daniel Kim"}, "first name prefix"},
		{"jen", []string{"Jennifer Walsh"}, "short first name prefix"},
		{"michal chen", []string{"Michael Chen"}, "one-letter typo"},
		{"smyth", []string{"John Smith"}, "sound-alike last name"},
		{"J O N", []string{"John Smith"}, "spelled out letters"},
		{"hiroshi tanaka", []string{"Hiroshi Tanaka"}, "filler exact"},
		{"lindqvist", []string{"Oscar Lindqvist"}, "filler last name"},
	}
}

// ToContactInputs returns ContactInput slices for indexing each corpus entry.
func (c *Corpus) ToContactInputs() []*models.ContactInput {
	out := make([]*models.ContactInput, len(c.Contacts))
	for i := range c.Contacts {
		out[i] = &models.ContactInput{
			DisplayName: c.Contacts[i].Name,
			Number:      c.Contacts[i].Number,
			Type:        c.Contacts[i].Type,
		}
	}
	return out
}

// hasName reports whether name is one of the corpus contacts.
func (c *Corpus) hasName(name string) bool {
	for _, ct := range c.Contacts {
		if strings.EqualFold(ct.Name, name) {
			return true
		}
	}
	return false
}
