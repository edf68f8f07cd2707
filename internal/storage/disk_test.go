package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	f1 := filepath.Join(dir, "contacts.db")
	if err := os.WriteFile(f1, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	idx := filepath.Join(dir, "index")
	if err := os.MkdirAll(filepath.Join(idx, "store"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(idx, "index_meta.json"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(idx, "store", "root.bolt"), []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"single file", []string{f1}, 5},
		{"nested directory", []string{idx}, 3},
		{"file and directory", []string{f1, idx}, 8},
		{"missing path skipped", []string{f1, filepath.Join(dir, "nope"), idx}, 8},
		{"empty path skipped", []string{"", f1}, 5},
		{"wal companions missing", DatabaseFiles(f1), 5},
		{"nothing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d bytes, want %d", got, tt.want)
			}
		})
	}
}

func TestDatabaseFiles(t *testing.T) {
	got := DatabaseFiles("/data/contacts.db")
	want := []string{"/data/contacts.db", "/data/contacts.db-wal", "/data/contacts.db-shm"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
