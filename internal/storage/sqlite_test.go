package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/dialname/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "contacts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := &models.ContactRecord{DisplayName: "Jane Doe", Number: "+1 (555) 000-0001", Type: 2}
	if err := store.CreateContact(ctx, c); err != nil {
		t.Fatal(err)
	}
	if c.ID == "" {
		t.Fatal("ID should be assigned")
	}
	if c.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if c.NormalizedNumber != "+15550000001" {
		t.Errorf("NormalizedNumber = %q", c.NormalizedNumber)
	}

	got, err := store.GetContact(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DisplayName != "Jane Doe" || got.Number != "+1 (555) 000-0001" || got.Type != 2 {
		t.Errorf("got %+v", got)
	}

	c.DisplayName = "Jane Smith"
	c.Number = "555-000-0009"
	c.Label = "Boat"
	if err := store.UpdateContact(ctx, c); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetContact(ctx, c.ID)
	if got.DisplayName != "Jane Smith" || got.NormalizedNumber != "5550000009" || got.Label != "Boat" {
		t.Errorf("after update got %+v", got)
	}

	if err := store.DeleteContact(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	_, err = store.GetContact(ctx, c.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetContact(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetContact: %v", err)
	}
	if err := store.UpdateContact(ctx, &models.ContactRecord{ID: "missing", DisplayName: "x", Number: "1"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateContact: %v", err)
	}
	if err := store.DeleteContact(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteContact: %v", err)
	}
	if _, err := store.SourceInfo(ctx, "file:nothing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SourceInfo: %v", err)
	}
}

func TestSQLiteStorage_ListOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, c := range []*models.ContactRecord{
		{DisplayName: "mike Ross", Number: "3"},
		{DisplayName: "Amy Lee", Number: "1"},
		{DisplayName: "John Smith", Number: "2a"},
		{DisplayName: "John Smith", Number: "2b"},
	} {
		if err := store.CreateContact(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	all, err := store.AllContacts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1", "2a", "2b", "3"}
	if len(all) != len(want) {
		t.Fatalf("expected %d contacts, got %d", len(want), len(all))
	}
	for i, w := range want {
		if all[i].Number != w {
			t.Errorf("position %d: got %q (%s), want %q", i, all[i].Number, all[i].DisplayName, w)
		}
	}

	page, err := store.ListContacts(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].Number != "2a" || page[1].Number != "2b" {
		t.Errorf("page = %+v", page)
	}

	names, _ := store.CountContacts(ctx)
	numbers, _ := store.CountNumbers(ctx)
	if names != 3 || numbers != 4 {
		t.Errorf("counts: %d names, %d numbers", names, numbers)
	}
}

func TestSQLiteStorage_FindByNumber(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.CreateContact(ctx, &models.ContactRecord{DisplayName: "Amy Lee", Number: "(555) 000-0002"})
	_ = store.CreateContact(ctx, &models.ContactRecord{DisplayName: "Bob", Number: "555 000 0003"})

	got, err := store.FindByNumber(ctx, "555.000.0002")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].DisplayName != "Amy Lee" {
		t.Errorf("got %+v", got)
	}
	got, _ = store.FindByNumber(ctx, "999")
	if len(got) != 0 {
		t.Errorf("expected no match, got %+v", got)
	}
}

func TestSQLiteStorage_Sources(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	const src = "file:abc"

	manual := &models.ContactRecord{DisplayName: "Manual", Number: "1"}
	if err := store.CreateContact(ctx, manual); err != nil {
		t.Fatal(err)
	}

	first := []*models.ContactRecord{
		{DisplayName: "A", Number: "10", SourceMtime: 100, SourceSize: 42},
		{DisplayName: "B", Number: "11", SourceMtime: 100, SourceSize: 42},
	}
	if err := store.ReplaceSource(ctx, src, first); err != nil {
		t.Fatal(err)
	}
	st, err := store.SourceInfo(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mtime != 100 || st.Size != 42 || st.Count != 2 {
		t.Errorf("source state = %+v", st)
	}

	second := []*models.ContactRecord{{DisplayName: "C", Number: "12", SourceMtime: 200, SourceSize: 7}}
	if err := store.ReplaceSource(ctx, src, second); err != nil {
		t.Fatal(err)
	}
	bySource, err := store.ContactsBySource(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(bySource) != 1 || bySource[0].DisplayName != "C" || bySource[0].Source != src {
		t.Errorf("ContactsBySource = %+v", bySource)
	}
	n, _ := store.CountNumbers(ctx)
	if n != 2 {
		t.Errorf("expected manual + 1 imported contact, got %d", n)
	}

	removed, err := store.DeleteBySource(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed %d, want 1", removed)
	}
	if _, err := store.GetContact(ctx, manual.ID); err != nil {
		t.Errorf("manual contact should survive: %v", err)
	}

	if _, err := store.DeleteBySource(ctx, ""); err == nil {
		t.Error("empty source should be rejected")
	}
	if err := store.ReplaceSource(ctx, "", nil); err == nil {
		t.Error("empty source should be rejected")
	}
}
