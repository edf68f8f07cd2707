// Package main is the dialname CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/dialname/internal/cli"
	"github.com/hyperjump/dialname/internal/config"
	"github.com/hyperjump/dialname/internal/importer"
	"github.com/hyperjump/dialname/internal/indexer"
	"github.com/hyperjump/dialname/internal/keyword"
	"github.com/hyperjump/dialname/internal/models"
	"github.com/hyperjump/dialname/internal/search"
	"github.com/hyperjump/dialname/internal/server"
	"github.com/hyperjump/dialname/internal/storage"
	"github.com/hyperjump/dialname/internal/watcher"
	"github.com/hyperjump/dialname/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/dialname/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// localConfigNames are checked in the current directory when the default
// config path is requested, so running from a project dir picks up its config.
var localConfigNames = []string{"config.yaml", "config.yml", "config.toml"}

// loadConfig loads config from path. When path is the default, a config file in
// the current directory wins; when neither exists, built-in defaults (plus
// DIALNAME_* environment overrides) are used and the returned path is empty.
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			for _, name := range localConfigNames {
				fallback := filepath.Join(cwd, name)
				if _, statErr := os.Stat(fallback); statErr == nil {
					cfg, loadErr := config.Load(fallback)
					if loadErr != nil {
						return nil, "", loadErr
					}
					return cfg, fallback, nil
				}
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg, err := config.Default()
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "lookup":
		runLookup()
	case "import":
		runImport()
	case "contacts":
		runContacts()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "reindex":
		runReindex()
	case "watch":
		runWatch()
	case "speak":
		runSpeak()
	case "version", "--version", "-v":
		fmt.Printf("dialname version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config and creates a logger and components for direct-access commands.
func setup(configPath string, debugFlag bool, idxOpts ...indexer.IndexerOption) (*config.Config, string, *zap.Logger, *Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger, debugMode, idxOpts...)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, resolved, logger, components
}

func parseFormatOrExit(s string) cli.OutputFormat {
	format, err := cli.ParseFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (directory changes, file imports, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug || *debug),
	)

	watchSvc := watcher.NewWatcher(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		components.Indexer,
		watcher.WithLogger(logger),
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExistingFiles()

	srv := server.NewServer(
		components.Engine,
		components.Indexer,
		components.Storage,
		components.KeywordIndex,
		&cfg.Server,
		logger,
		watchSvc,
		resolvedConfigPath,
		cfg,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchSvc.Stop()
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search subcommand usage and examples.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: dialname search [flags] <name>\n\n")
	fmt.Fprintf(fs.Output(), "The name is all remaining arguments joined by spaces, as a speech recognizer would hear it.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Matching tolerates nicknames (bob -> robert), sound-alikes (jon -> john),
typos, partial names and spelled-out letters ("J O N").
  • --threshold drops weaker matches (0 uses the configured default).
  • --limit caps how many contacts are returned.

Examples:
  dialname search jon
  dialname search "bob smith"
  dialname search --threshold 0.7 --limit 1 jane
  dialname search --output json J A N E
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word names
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "dialname search jon -limit 1"
// would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage when server is not running)")
	limit := fs.Int("limit", 0, "maximum number of contacts (0 = configured default)")
	threshold := fs.Float64("threshold", 0, "minimum match score in [0,1] (default: configured threshold)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format := parseFormatOrExit(*outputFormat)
	query := &models.ContactQuery{Query: queryStr, Limit: *limit}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "threshold" {
			query.Threshold = models.Threshold(*threshold)
		}
	})

	var response *models.SearchResponse
	if *serverURL != "" {
		// Use HTTP API when server is running (avoids Bleve/SQLite lock conflict).
		response = &models.SearchResponse{}
		if err := postJSON(*serverURL+"/api/v1/search", query, http.StatusOK, response); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		_, _, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		var err error
		response, err = components.Engine.Search(context.Background(), query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runLookup() {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	number := buildSearchQuery(fs.Args())
	if number == "" {
		fmt.Println("Usage: dialname lookup [flags] <number>")
		os.Exit(1)
	}
	format := parseFormatOrExit(*outputFormat)

	var response *models.LookupResponse
	if *serverURL != "" {
		response = &models.LookupResponse{}
		if err := getJSON(*serverURL+"/api/v1/lookup?number="+url.QueryEscape(number), response); err != nil {
			fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		_, _, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		var err error
		response, err = components.Engine.Lookup(context.Background(), number)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteLookup(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Printf("Usage: dialname import [flags] <file-or-directory>\n\nSupported formats: %s\n",
			strings.Join(importer.SupportedExtensions(), " "))
		os.Exit(1)
	}
	path := fs.Arg(0)
	format := parseFormatOrExit(*outputFormat)

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stat path: %v\n", err)
		os.Exit(1)
	}

	progress := cli.NewProgress(os.Stderr)
	cfg, _, logger, components := setup(*configPath, false, indexer.WithProgress(progress.Report))
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	var results []indexer.ImportResult
	if info.IsDir() {
		results, err = components.Indexer.ImportDirectory(ctx, path, cfg.Watch.Extensions)
		progress.Done()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Some files failed to import:\n%v\n", err)
		}
	} else {
		// Single file: no extension filter
		res, importErr := components.Indexer.ImportFile(ctx, path, nil)
		if importErr != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", importErr)
			os.Exit(1)
		}
		results = []indexer.ImportResult{*res}
	}
	if err := cli.WriteImportResults(os.Stdout, results, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		os.Exit(1)
	}
}

func runReindex() {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debugFlag := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	_, _, logger, components := setup(*configPath, *debugFlag)
	defer logger.Sync()
	defer components.Close()

	n, err := components.Indexer.Reindex(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reindex failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Reindexed %d contacts\n", n)
}

func runContacts() {
	if len(os.Args) >= 3 && os.Args[2] == "add" {
		runContactsAdd()
		return
	}
	args := os.Args[2:]
	if len(args) > 0 && args[0] == "list" {
		args = args[1:]
	}
	fs := flag.NewFlagSet("contacts", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	offset := fs.Int("offset", 0, "number of contacts to skip")
	limit := fs.Int("limit", 50, "maximum number of contacts")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(searchArgsReorder(args))
	format := parseFormatOrExit(*outputFormat)

	_, _, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	var (
		list  []*models.ContactRecord
		total int64
		err   error
	)
	if q := buildSearchQuery(fs.Args()); q != "" {
		list, err = components.Engine.FindContacts(ctx, q, *limit)
		total = int64(len(list))
	} else {
		list, err = components.Storage.ListContacts(ctx, *offset, *limit)
		if err == nil {
			total, err = components.Storage.CountNumbers(ctx)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Listing contacts failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteContacts(os.Stdout, list, total, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runContactsAdd() {
	fs := flag.NewFlagSet("contacts add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	name := fs.String("name", "", "display name (required)")
	number := fs.String("number", "", "phone number (required)")
	phoneType := fs.String("type", "", "phone type: mobile, home, work, ... (default mobile)")
	_ = fs.Parse(os.Args[3:])

	_, _, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	rec, err := components.Indexer.AddContact(context.Background(), &models.ContactInput{
		DisplayName: *name,
		Number:      *number,
		Type:        *phoneType,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Add failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Contact added: %s\n", rec.ID)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	source := fs.Bool("source", false, "argument is an imported file; delete every contact it provided")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: dialname delete [flags] <contact-id | --source file>")
		os.Exit(1)
	}
	target := fs.Arg(0)

	_, _, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	if *source {
		abs, _ := filepath.Abs(target)
		n, err := components.Indexer.DeleteSource(ctx, abs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Deletion failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted %d contacts from %s\n", n, abs)
		return
	}
	if err := components.Indexer.DeleteContact(ctx, target); err != nil {
		fmt.Fprintf(os.Stderr, "Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Contact deleted: %s\n", target)
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	DatabasePath     string  `json:"database_path,omitempty"`
	BleveIndexPath   string  `json:"bleve_index_path,omitempty"`
	DefaultThreshold float64 `json:"default_threshold,omitempty"`
	DefaultLimit     int     `json:"default_limit,omitempty"`
	MaxLimit         int     `json:"max_limit,omitempty"`
}

// statusWatchResponse holds watched directories and watcher counters.
type statusWatchResponse struct {
	Directories []string       `json:"directories"`
	Stats       *watcher.Stats `json:"stats,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Contacts         int64                 `json:"contacts"`
	Numbers          int64                 `json:"numbers"`
	KeywordIndexSize uint64                `json:"keyword_index_size"`
	DiskUsageBytes   *int64                `json:"disk_usage_bytes,omitempty"`
	Config           *statusConfigResponse `json:"config,omitempty"`
	Watch            *statusWatchResponse  `json:"watch,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status *statusResponse
	if *serverURL != "" {
		status = &statusResponse{}
		if err := getJSON(*serverURL+"/api/v1/status", status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		var err error
		status, err = localStatus(context.Background(), cfg, components)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		writeStatusText(os.Stdout, status)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func localStatus(ctx context.Context, cfg *config.Config, c *Components) (*statusResponse, error) {
	contactCount, err := c.Storage.CountContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}
	numberCount, err := c.Storage.CountNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count numbers: %w", err)
	}
	status := &statusResponse{
		Contacts: contactCount,
		Numbers:  numberCount,
		Config: &statusConfigResponse{
			DatabasePath:     cfg.Storage.DatabasePath,
			BleveIndexPath:   cfg.Storage.BleveIndexPath,
			DefaultThreshold: cfg.Search.DefaultThreshold,
			DefaultLimit:     cfg.Search.DefaultLimit,
			MaxLimit:         cfg.Search.MaxLimit,
		},
		Watch: &statusWatchResponse{Directories: cfg.Watch.Directories},
	}
	if n, err := c.KeywordIndex.DocCount(); err == nil {
		status.KeywordIndexSize = n
	}
	paths := append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Storage.BleveIndexPath)
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	return status, nil
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "contacts:            %d   # distinct display names\n", status.Contacts)
	fmt.Fprintf(w, "numbers:             %d   # stored phone numbers\n", status.Numbers)
	fmt.Fprintf(w, "keyword_index_size:  %d   # records in name index\n", status.KeywordIndexSize)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:    %d   # storage + indices on disk\n", *status.DiskUsageBytes)
	}
	if status.Config != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		if status.Config.DatabasePath != "" {
			fmt.Fprintf(w, "database_path:       %s\n", status.Config.DatabasePath)
		}
		if status.Config.BleveIndexPath != "" {
			fmt.Fprintf(w, "bleve_index_path:    %s\n", status.Config.BleveIndexPath)
		}
		fmt.Fprintf(w, "default_threshold:   %.2f\n", status.Config.DefaultThreshold)
		fmt.Fprintf(w, "default_limit:       %d\n", status.Config.DefaultLimit)
		fmt.Fprintf(w, "max_limit:           %d\n", status.Config.MaxLimit)
	}
	if status.Watch != nil && len(status.Watch.Directories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# watched directories")
		for _, d := range status.Watch.Directories {
			fmt.Fprintln(w, d)
		}
		if s := status.Watch.Stats; s != nil {
			fmt.Fprintf(w, "imported: %d  removed: %d  failed: %d\n", s.Imported, s.Removed, s.Failed)
		}
	}
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: dialname watch <add|remove|list> [path]")
		fmt.Println("  dialname watch add <path>     Add directory to watch")
		fmt.Println("  dialname watch remove <path>  Remove directory from watch")
		fmt.Println("  dialname watch list           List watched directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: dialname watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body := map[string]interface{}{"path": path, "sync": true}
		if err := postJSON(*serverURL+"/api/v1/watch/directories", body, http.StatusCreated, nil); err != nil {
			fmt.Printf("Add failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: dialname watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := getJSON(*serverURL+"/api/v1/watch/directories", &out); err != nil {
			fmt.Printf("List failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runSpeak() {
	text := buildSearchQuery(os.Args[2:])
	if text == "" {
		fmt.Println("Usage: dialname speak <text>")
		os.Exit(1)
	}
	fmt.Println(utils.NormalizeForSpeech(text))
}

// postJSON posts body as JSON and decodes the response into out when out is non-nil.
func postJSON(target string, body interface{}, wantStatus int, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(target, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, wantStatus, out)
}

func getJSON(target string, out interface{}) error {
	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, http.StatusOK, out)
}

func decodeResponse(resp *http.Response, wantStatus int, out interface{}) error {
	if resp.StatusCode != wantStatus {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	KeywordIndex keyword.KeywordIndex
	Engine       *search.Engine
	Indexer      *indexer.Indexer
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool, idxOpts ...indexer.IndexerOption) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	engine := search.NewEngine(store, keywordIndex, &cfg.Search,
		search.WithSpellChecker(search.NewSpellChecker(keywordIndex, &cfg.Search)),
		search.WithLogger(logger),
	)

	idxOpts = append(idxOpts, indexer.WithOnChange(engine.Invalidate))
	if debug && logger != nil {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
	}
	idx := indexer.NewIndexer(store, keywordIndex, importer.NewImporter(), idxOpts...)

	return &Components{
		Storage:      store,
		KeywordIndex: keywordIndex,
		Engine:       engine,
		Indexer:      idx,
	}, nil
}

func printUsage() {
	fmt.Println(`dialname - Fuzzy contact name matching for voice dialing

Usage:
  dialname server [flags]             Start the HTTP server
  dialname search [flags] <name>      Find contacts matching a spoken name
  dialname lookup [flags] <number>    Find the contact name for a phone number
  dialname import [flags] <path>      Import contacts from a file or directory
  dialname contacts [flags] [query]   List stored contacts
  dialname contacts add [flags]       Add a contact by hand
  dialname delete [flags] <id>        Delete a contact (or --source <file>)
  dialname status [flags]             Show storage/index status
  dialname reindex [flags]            Rebuild the keyword index from storage
  dialname watch <add|remove|list>    Manage watched directories
  dialname speak <text>               Rewrite URLs and emails for text-to-speech
  dialname version                    Show version
  dialname help                       Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/dialname/config.yaml)
  --output string    Output format: text, compact or json (default: text)

Server Flags:
  --debug            Enable debug logging

Search/Lookup/Status Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --limit int        Maximum contacts returned (search)
  --threshold float  Minimum match score in [0,1] (search)

Environment:
  DIALNAME_HOST, DIALNAME_PORT, DIALNAME_DB_PATH, DIALNAME_INDEX_PATH, DIALNAME_DEBUG
  override the config file; a .env file in the current directory is loaded first.

Examples:
  dialname server
  dialname import ~/contacts.vcf
  dialname search jon
  dialname search --output json "bob smith"
  dialname lookup "+1 (555) 123-4567"
  dialname contacts add --name "Jane Doe" --number 555-0100 --type work
  dialname status --output json
  dialname watch add ~/Contacts
  dialname speak "visit www.example.com"`)
}
