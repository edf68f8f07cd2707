package models

import (
	"testing"
)

func TestContactQuery_Validate(t *testing.T) {
	tests := []struct {
		name          string
		query         *ContactQuery
		wantErr       bool
		wantLimit     int
		wantThreshold float64
	}{
		{"empty query", &ContactQuery{Query: ""}, true, 0, 0},
		{"blank query", &ContactQuery{Query: "   "}, true, 0, 0},
		{"valid query", &ContactQuery{Query: "jon"}, false, 3, 0.3},
		{"keeps explicit limit", &ContactQuery{Query: "jon", Limit: 5}, false, 5, 0.3},
		{"caps limit", &ContactQuery{Query: "jon", Limit: 500}, false, 20, 0.3},
		{"keeps explicit threshold", &ContactQuery{Query: "jon", Threshold: Threshold(0.6)}, false, 3, 0.6},
		{"keeps zero threshold", &ContactQuery{Query: "jon", Threshold: Threshold(0)}, false, 3, 0},
		{"negative threshold", &ContactQuery{Query: "jon", Threshold: Threshold(-0.1)}, true, 0, 0},
		{"threshold above one", &ContactQuery{Query: "jon", Threshold: Threshold(1.5)}, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate(3, 20, 0.3)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.query.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.query.Limit, tt.wantLimit)
			}
			if tt.query.Threshold == nil || *tt.query.Threshold != tt.wantThreshold {
				t.Errorf("Threshold = %v, want %v", tt.query.Threshold, tt.wantThreshold)
			}
		})
	}
}

func TestMatchResult_PrimaryNumber(t *testing.T) {
	r := NewMatchResult("John Smith", "5551234", 0.9)
	if got := r.PrimaryNumber(); got != "5551234" {
		t.Errorf("PrimaryNumber() = %q, want 5551234", got)
	}
	if len(r.PhoneNumbers) != 1 || r.PhoneNumbers[0].Label != "" {
		t.Errorf("PhoneNumbers = %+v", r.PhoneNumbers)
	}
	empty := MatchResult{Name: "Nobody"}
	if got := empty.PrimaryNumber(); got != "" {
		t.Errorf("PrimaryNumber() on empty = %q", got)
	}
}
