package models

// SearchResponse is the response for a contact search request.
type SearchResponse struct {
	Matches   []MatchResult `json:"matches"`
	Total     int           `json:"total"`
	QueryTime int64         `json:"query_time_ms"`
	Query     string        `json:"query"`
	// AlternateQuery is the space-stripped query tried for spelled-out names ("J O N").
	AlternateQuery string `json:"alternate_query,omitempty"`
	// Suggestions holds "did you mean" name terms when nothing matched.
	Suggestions []string `json:"suggestions,omitempty"`
}

// LookupResponse is the result of a reverse number -> name lookup.
type LookupResponse struct {
	Number      string `json:"number"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name"`
	Found       bool   `json:"found"`
}
