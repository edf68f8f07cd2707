package models

import (
	"fmt"
	"strings"
)

// ContactQuery is a contact search request.
type ContactQuery struct {
	Query     string   `json:"query"`
	Limit     int      `json:"limit,omitempty"`
	// Threshold is the minimum match score. Nil means the service default;
	// an explicit 0 accepts every contact.
	Threshold *float64 `json:"threshold,omitempty"`
}

// Threshold returns a pointer to t for use in a ContactQuery.
func Threshold(t float64) *float64 {
	return &t
}

// Validate rejects blank queries and normalizes limit and threshold.
// defaultLimit and maxLimit bound Limit; defaultThreshold replaces a nil Threshold.
func (q *ContactQuery) Validate(defaultLimit, maxLimit int, defaultThreshold float64) error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Threshold != nil && (*q.Threshold < 0 || *q.Threshold > 1) {
		return fmt.Errorf("threshold must be between 0 and 1, got %v", *q.Threshold)
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Threshold == nil {
		q.Threshold = Threshold(defaultThreshold)
	}
	return nil
}
