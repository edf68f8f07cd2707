// Package indexer writes contacts into storage and the keyword index, from
// single API calls or whole contact files.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/dialname/internal/contacts"
	"github.com/hyperjump/dialname/internal/fileid"
	"github.com/hyperjump/dialname/internal/importer"
	"github.com/hyperjump/dialname/internal/keyword"
	"github.com/hyperjump/dialname/internal/models"
	"github.com/hyperjump/dialname/internal/storage"
)

// defaultParseWorkers bounds how many files ImportDirectory parses at once.
const defaultParseWorkers = 4

// Indexer indexes contacts into storage and the keyword index.
type Indexer struct {
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	importer     *importer.Importer
	workers      int
	onChange     func()
	progress     func(done, total int, path string, err error)
	logger       *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (file imported, contact deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithOnChange registers fn to be called after every successful write, e.g.
// to drop cached search directories.
func WithOnChange(fn func()) IndexerOption {
	return func(idx *Indexer) { idx.onChange = fn }
}

// WithProgress registers fn to be called as each file of ImportDirectory
// finishes, successfully or not.
func WithProgress(fn func(done, total int, path string, err error)) IndexerOption {
	return func(idx *Indexer) { idx.progress = fn }
}

// WithParseWorkers sets how many files ImportDirectory parses concurrently.
func WithParseWorkers(n int) IndexerOption {
	return func(idx *Indexer) {
		if n > 0 {
			idx.workers = n
		}
	}
}

// NewIndexer creates an indexer with the given dependencies. imp may be nil,
// in which case a default importer is used.
func NewIndexer(store storage.Storage, keywordIndex keyword.KeywordIndex, imp *importer.Importer, opts ...IndexerOption) *Indexer {
	if imp == nil {
		imp = importer.NewImporter()
	}
	idx := &Indexer{
		storage:      store,
		keywordIndex: keywordIndex,
		importer:     imp,
		workers:      defaultParseWorkers,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

func (idx *Indexer) debug(msg string, fields ...zap.Field) {
	if idx.logger != nil {
		idx.logger.Debug(msg, fields...)
	}
}

func (idx *Indexer) changed() {
	if idx.onChange != nil {
		idx.onChange()
	}
}

// toRecord converts a validated input into a record.
func toRecord(in *models.ContactInput) *models.ContactRecord {
	t, custom := contacts.ParsePhoneType(in.Type)
	label := in.Label
	if t == contacts.TypeCustom && label == "" {
		label = custom
	}
	return &models.ContactRecord{
		ID:          in.ID,
		DisplayName: in.DisplayName,
		Number:      in.Number,
		Type:        int(t),
		Label:       label,
	}
}

// AddContact validates, stores and indexes a single contact.
func (idx *Indexer) AddContact(ctx context.Context, in *models.ContactInput) (*models.ContactRecord, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	rec := toRecord(in)
	if err := idx.storage.CreateContact(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store contact: %w", err)
	}
	if err := idx.keywordIndex.Index(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to index contact: %w", err)
	}
	idx.debug("indexer contact added", zap.String("id", rec.ID), zap.String("name", rec.DisplayName))
	idx.changed()
	return rec, nil
}

// UpdateContact replaces name, number, type and label of contact id.
func (idx *Indexer) UpdateContact(ctx context.Context, id string, in *models.ContactInput) (*models.ContactRecord, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	rec, err := idx.storage.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	next := toRecord(in)
	rec.DisplayName, rec.Number, rec.Type, rec.Label = next.DisplayName, next.Number, next.Type, next.Label
	if err := idx.storage.UpdateContact(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	if err := idx.keywordIndex.Index(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to index contact: %w", err)
	}
	idx.changed()
	return rec, nil
}

// DeleteContact removes a contact from the keyword index and storage.
func (idx *Indexer) DeleteContact(ctx context.Context, id string) error {
	idx.debug("indexer deleting contact", zap.String("id", id))
	if err := idx.keywordIndex.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from keyword index: %w", err)
	}
	if err := idx.storage.DeleteContact(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	idx.changed()
	return nil
}

// ImportResult describes one imported file.
type ImportResult struct {
	Path     string `json:"path"`
	Source   string `json:"source"`
	Contacts int    `json:"contacts"`
	Invalid  int    `json:"invalid"`
	Skipped  bool   `json:"skipped"`
}

// parsedFile is a file read and validated but not yet written.
type parsedFile struct {
	result  ImportResult
	records []*models.ContactRecord
}

// parseFile stats and reads path. Files whose mtime and size match the last
// import are marked skipped and not read.
func (idx *Indexer) parseFile(ctx context.Context, path string, allowedExts []string) (*parsedFile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return nil, fmt.Errorf("extension %q not in allowed list", ext)
	}
	if !importer.Supported(absPath) {
		return nil, fmt.Errorf("unsupported contact file type %q", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}

	source := fileid.SourceID(absPath)
	pf := &parsedFile{result: ImportResult{Path: absPath, Source: source}}
	mtime, size := info.ModTime().UnixNano(), info.Size()

	st, err := idx.storage.SourceInfo(ctx, source)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("source info: %w", err)
	}
	if err == nil && st.Mtime == mtime && st.Size == size {
		pf.result.Skipped = true
		pf.result.Contacts = st.Count
		return pf, nil
	}

	inputs, err := idx.importer.Import(absPath)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", absPath, err)
	}
	for _, in := range inputs {
		if err := ValidateInput(in); err != nil {
			pf.result.Invalid++
			idx.debug("indexer skipping invalid contact", zap.String("path", absPath), zap.Error(err))
			continue
		}
		in.ID = ""
		rec := toRecord(in)
		rec.SourceMtime, rec.SourceSize = mtime, size
		pf.records = append(pf.records, rec)
	}
	pf.result.Contacts = len(pf.records)
	return pf, nil
}

// commit replaces the file's previous contacts in storage and the keyword index.
func (idx *Indexer) commit(ctx context.Context, pf *parsedFile) error {
	if pf.result.Skipped {
		idx.debug("indexer skipping unchanged file", zap.String("path", pf.result.Path))
		return nil
	}
	old, err := idx.storage.ContactsBySource(ctx, pf.result.Source)
	if err != nil {
		return fmt.Errorf("load previous contacts: %w", err)
	}
	if err := idx.storage.ReplaceSource(ctx, pf.result.Source, pf.records); err != nil {
		return fmt.Errorf("failed to store contacts: %w", err)
	}
	if len(old) > 0 {
		ids := make([]string, len(old))
		for i, c := range old {
			ids[i] = c.ID
		}
		if err := idx.keywordIndex.DeleteBatch(ctx, ids); err != nil {
			return fmt.Errorf("failed to delete from keyword index: %w", err)
		}
	}
	if err := idx.keywordIndex.IndexBatch(ctx, pf.records); err != nil {
		return fmt.Errorf("failed to index contacts: %w", err)
	}
	idx.debug("indexer file imported",
		zap.String("path", pf.result.Path),
		zap.Int("contacts", pf.result.Contacts),
		zap.Int("invalid", pf.result.Invalid))
	idx.changed()
	return nil
}

// ImportFile imports the contacts of one file, replacing whatever the file
// contributed before. If allowedExts is non-empty, the file's extension must
// be in it (case-insensitive). Unchanged files (same mtime and size) are skipped.
func (idx *Indexer) ImportFile(ctx context.Context, path string, allowedExts []string) (*ImportResult, error) {
	idx.debug("indexer importing file", zap.String("path", path))
	pf, err := idx.parseFile(ctx, path, allowedExts)
	if err != nil {
		return nil, err
	}
	if err := idx.commit(ctx, pf); err != nil {
		return nil, err
	}
	return &pf.result, nil
}

// ImportDirectory walks dir recursively and imports every contact file whose
// extension is in allowedExts (or any supported file when allowedExts is
// empty). Files are parsed concurrently and written in path order. A file
// that fails does not stop the others; all failures are returned joined.
func (idx *Indexer) ImportDirectory(ctx context.Context, dir string, allowedExts []string) ([]ImportResult, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absDir)
	}

	var paths []string
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != absDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		if !importer.Supported(path) {
			return nil
		}
		// Resolve symlinks so we only import regular files
		if finfo, statErr := os.Stat(path); statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	parsed := make([]*parsedFile, len(paths))
	errs := make([]error, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			parsed[i], errs[i] = idx.parseFile(gctx, p, allowedExts)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]ImportResult, 0, len(paths))
	for i, pf := range parsed {
		if errs[i] == nil {
			errs[i] = idx.commit(ctx, pf)
		}
		if idx.progress != nil {
			idx.progress(i+1, len(paths), paths[i], errs[i])
		}
		if errs[i] != nil {
			if idx.logger != nil {
				idx.logger.Warn("indexer import failed", zap.String("path", paths[i]), zap.Error(errs[i]))
			}
			continue
		}
		results = append(results, pf.result)
	}
	return results, errors.Join(errs...)
}

// DeleteSource removes every contact imported from path. It returns how many
// contacts were removed.
func (idx *Indexer) DeleteSource(ctx context.Context, path string) (int, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	source := fileid.SourceID(absPath)
	old, err := idx.storage.ContactsBySource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("load contacts: %w", err)
	}
	if len(old) == 0 {
		return 0, nil
	}
	ids := make([]string, len(old))
	for i, c := range old {
		ids[i] = c.ID
	}
	if err := idx.keywordIndex.DeleteBatch(ctx, ids); err != nil {
		return 0, fmt.Errorf("failed to delete from keyword index: %w", err)
	}
	n, err := idx.storage.DeleteBySource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete contacts: %w", err)
	}
	idx.debug("indexer source deleted", zap.String("path", absPath), zap.Int64("contacts", n))
	idx.changed()
	return int(n), nil
}

// Reindex rebuilds the keyword index from storage: stale entries are removed
// and every stored contact is indexed again. It returns the number indexed.
func (idx *Indexer) Reindex(ctx context.Context) (int, error) {
	all, err := idx.storage.AllContacts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load contacts: %w", err)
	}
	indexed, err := idx.keywordIndex.IDs(ctx)
	if err != nil {
		return 0, err
	}
	live := make(map[string]struct{}, len(all))
	for _, c := range all {
		live[c.ID] = struct{}{}
	}
	var stale []string
	for _, id := range indexed {
		if _, ok := live[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := idx.keywordIndex.DeleteBatch(ctx, stale); err != nil {
			return 0, fmt.Errorf("failed to delete stale entries: %w", err)
		}
	}
	if err := idx.keywordIndex.IndexBatch(ctx, all); err != nil {
		return 0, fmt.Errorf("failed to index contacts: %w", err)
	}
	idx.debug("indexer reindexed", zap.Int("contacts", len(all)), zap.Int("stale", len(stale)))
	idx.changed()
	return len(all), nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
