package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/dialname/internal/config"
	"github.com/hyperjump/dialname/internal/models"
	"go.uber.org/zap"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"bob smith", "-limit", "1"},
			expected: []string{"-limit", "1", "bob smith"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-limit", "1", "bob smith"},
			expected: []string{"-limit", "1", "bob smith"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"bob smith"},
			expected: []string{"bob smith"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "spelled out letters then flags",
			args:     []string{"J", "O", "N", "-threshold", "0.5"},
			expected: []string{"-threshold", "0.5", "J", "O", "N"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"jon"}, "jon"},
		{"multiple words", []string{"bob", "smith"}, "bob smith"},
		{"single quoted phrase", []string{"bob smith"}, "bob smith"},
		{"spelled out", []string{"J", "A", "N", "E"}, "J A N E"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_cwdTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
[search]
default_threshold = 0.6
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, _, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.DefaultThreshold != 0.6 {
		t.Errorf("DefaultThreshold = %v, want 0.6", cfg.Search.DefaultThreshold)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoadConfig_missingExplicitPath(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = filepath.Join(dir, "contacts.db")
	cfg.Storage.BleveIndexPath = filepath.Join(dir, "bleve")
	return cfg
}

func TestInitializeComponents(t *testing.T) {
	cfg := testConfig(t)
	c, err := initializeComponents(cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("initializeComponents: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Indexer.AddContact(ctx, &models.ContactInput{DisplayName: "Robert Brown", Number: "555-000-0004"}); err != nil {
		t.Fatalf("AddContact: %v", err)
	}
	// The indexer invalidates the engine cache, so the new contact is searchable at once.
	resp, err := c.Engine.Search(ctx, &models.ContactQuery{Query: "bob"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Matches) == 0 || resp.Matches[0].Name != "Robert Brown" {
		t.Errorf("matches = %+v", resp.Matches)
	}

	status, err := localStatus(ctx, cfg, c)
	if err != nil {
		t.Fatalf("localStatus: %v", err)
	}
	if status.Contacts != 1 || status.Numbers != 1 || status.KeywordIndexSize != 1 {
		t.Errorf("status = %+v", status)
	}
	if status.DiskUsageBytes == nil || *status.DiskUsageBytes == 0 {
		t.Error("expected disk usage")
	}

	var buf bytes.Buffer
	writeStatusText(&buf, status)
	if !strings.Contains(buf.String(), "contacts:            1") {
		t.Errorf("status text:\n%s", buf.String())
	}
}

func TestPostAndGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/search":
			var q models.ContactQuery
			_ = json.NewDecoder(r.Body).Decode(&q)
			_ = json.NewEncoder(w).Encode(models.SearchResponse{Query: q.Query, Matches: []models.MatchResult{}})
		case "/api/v1/status":
			_, _ = w.Write([]byte(`{"contacts":4,"numbers":6,"keyword_index_size":6,"watch":{"directories":["/c"],"stats":{"imported":2,"removed":0,"failed":1}}}`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	var resp models.SearchResponse
	if err := postJSON(srv.URL+"/api/v1/search", &models.ContactQuery{Query: "jon"}, http.StatusOK, &resp); err != nil {
		t.Fatalf("postJSON: %v", err)
	}
	if resp.Query != "jon" {
		t.Errorf("Query = %q", resp.Query)
	}

	var status statusResponse
	if err := getJSON(srv.URL+"/api/v1/status", &status); err != nil {
		t.Fatalf("getJSON: %v", err)
	}
	if status.Contacts != 4 || status.Watch == nil || status.Watch.Stats == nil || status.Watch.Stats.Failed != 1 {
		t.Errorf("status = %+v", status)
	}

	err := getJSON(srv.URL+"/missing", &status)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 error, got %v", err)
	}
}
