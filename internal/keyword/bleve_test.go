package keyword

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/hyperjump/dialname/internal/models"
)

func newMemIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func seedContacts(t *testing.T, idx *BleveIndex) {
	t.Helper()
	records := []*models.ContactRecord{
		{ID: "c1", DisplayName: "John Smith", Number: "+1 555 000 0001", Type: 2},
		{ID: "c2", DisplayName: "Jane Smith", Number: "555-000-0002", Type: 3},
		{ID: "c3", DisplayName: "Amy Lee", Number: "555 000 0003", Type: 1},
	}
	if err := idx.IndexBatch(context.Background(), records); err != nil {
		t.Fatalf("IndexBatch: %v", err)
	}
}

func resultIDs(results []*KeywordResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	sort.Strings(ids)
	return ids
}

func TestBleveIndex_Search(t *testing.T) {
	idx := newMemIndex(t)
	seedContacts(t, idx)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		opts  *SearchOptions
		want  []string
	}{
		{"surname", "smith", nil, []string{"c1", "c2"}},
		{"case insensitive", "AMY", nil, []string{"c3"}},
		{"label", "work", nil, []string{"c2"}},
		{"number fragment", "000-0003", nil, []string{"c3"}},
		{"number with country code", "+15550000001", nil, []string{"c1"}},
		{"exact misses typo", "jon", nil, []string{}},
		{"fuzzy catches typo", "jon", &SearchOptions{FuzzyEnabled: true}, []string{"c1"}},
		{"fuzzy two edits", "smiht", &SearchOptions{FuzzyEnabled: true, Fuzziness: 2}, []string{"c1", "c2"}},
		{"short digits ignored", "55", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := idx.Search(ctx, tt.query, 10, tt.opts)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			got := resultIDs(results)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestBleveIndex_SearchNameBoost(t *testing.T) {
	idx := newMemIndex(t)
	ctx := context.Background()
	_ = idx.Index(ctx, &models.ContactRecord{ID: "name", DisplayName: "Pat Home", Number: "1", Type: 2})
	_ = idx.Index(ctx, &models.ContactRecord{ID: "label", DisplayName: "Pat Jones", Number: "2", Type: 1})

	results, err := idx.Search(ctx, "home", 10, &SearchOptions{NameBoost: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].ID != "name" {
		t.Errorf("name match should rank first: %+v", results)
	}
}

func TestBleveIndex_DeleteAndIDs(t *testing.T) {
	idx := newMemIndex(t)
	seedContacts(t, idx)
	ctx := context.Background()

	if err := idx.Delete(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	if err := idx.DeleteBatch(ctx, []string{"c3", "missing"}); err != nil {
		t.Fatal(err)
	}
	ids, err := idx.IDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "c2" {
		t.Errorf("IDs = %v", ids)
	}
	n, _ := idx.DocCount()
	if n != 1 {
		t.Errorf("DocCount = %d", n)
	}
}

func TestBleveIndex_TermDictionary(t *testing.T) {
	idx := newMemIndex(t)
	seedContacts(t, idx)

	terms, err := idx.GetAllTerms()
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(terms)
	want := []string{"amy", "jane", "john", "lee", "smith"}
	if len(terms) != len(want) {
		t.Fatalf("terms = %v, want %v", terms, want)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("terms = %v, want %v", terms, want)
		}
	}

	freq, err := idx.GetTermFrequency("Smith")
	if err != nil {
		t.Fatal(err)
	}
	if freq != 2 {
		t.Errorf("frequency of smith = %d, want 2", freq)
	}
	if ok, _ := idx.ContainsTerm("zed"); ok {
		t.Error("zed should not be a term")
	}

	sc := NewSpellChecker(idx)
	if got := sc.GetTopSuggestions("jhon smiht", 1); len(got) != 1 || got[0] != "john smith" {
		t.Errorf("suggested query = %v", got)
	}
}

func TestBleveIndex_ReopenKeepsContacts(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "sub", "bleve")
	ctx := context.Background()

	idx1, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	if err := idx1.Index(ctx, &models.ContactRecord{ID: "c9", DisplayName: "Ziggy Stardust", Number: "9"}); err != nil {
		t.Fatal(err)
	}
	if err := idx1.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(indexPath); err != nil {
		t.Fatalf("index path should exist: %v", err)
	}

	idx2, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex (open existing): %v", err)
	}
	defer func() { _ = idx2.Close() }()

	results, err := idx2.Search(ctx, "ziggy", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "c9" {
		t.Errorf("results after reopen = %+v", results)
	}
}
