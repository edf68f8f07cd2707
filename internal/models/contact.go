// Package models defines core data structures for contacts, queries, and match results.
package models

import "time"

// PhoneNumber is one number belonging to a contact, with an optional type label
// such as "Mobile" or "Work".
type PhoneNumber struct {
	Number string `json:"number"`
	Label  string `json:"label,omitempty"`
}

// MatchResult is one scored contact. Score is always in [0, 1].
type MatchResult struct {
	Name         string        `json:"name"`
	PhoneNumbers []PhoneNumber `json:"phone_numbers"`
	Score        float64       `json:"score"`
}

// NewMatchResult builds a result for a contact with a single unlabeled number.
func NewMatchResult(name, number string, score float64) MatchResult {
	return MatchResult{
		Name:         name,
		PhoneNumbers: []PhoneNumber{{Number: number}},
		Score:        score,
	}
}

// PrimaryNumber returns the first phone number, or "" when there is none.
func (m MatchResult) PrimaryNumber() string {
	if len(m.PhoneNumbers) == 0 {
		return ""
	}
	return m.PhoneNumbers[0].Number
}

// NamedNumber is a flat (display name, number) pair.
type NamedNumber struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// DirectoryEntry groups every number known for one display name.
type DirectoryEntry struct {
	Name         string        `json:"name"`
	PhoneNumbers []PhoneNumber `json:"phone_numbers"`
}

// Directory is an ordered name -> numbers mapping. Order is significant: it is
// the tie-break order for equal match scores.
type Directory []DirectoryEntry

// ContactRecord is one stored (display name, number) row.
type ContactRecord struct {
	ID               string    `json:"id" db:"id"`
	DisplayName      string    `json:"display_name" db:"display_name"`
	Number           string    `json:"number" db:"number"`
	NormalizedNumber string    `json:"normalized_number" db:"normalized_number"`
	Type             int       `json:"type" db:"type"`
	Label            string    `json:"label,omitempty" db:"label"`
	Source           string    `json:"source,omitempty" db:"source"`
	SourceMtime      int64     `json:"-" db:"source_mtime"`
	SourceSize       int64     `json:"-" db:"source_size"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// ContactInput is the input for creating a contact record. Type is a phone
// type name such as "mobile" or "work fax"; unknown names become custom labels.
type ContactInput struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty" validate:"omitempty,max=64"`
	DisplayName string `json:"name" yaml:"name" validate:"required,max=256"`
	Number      string `json:"number" yaml:"number" validate:"required,max=64,containsany=0123456789"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty" validate:"max=32"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty" validate:"max=64"`
}
