// Package watcher keeps the contact store in sync with contact files on disk,
// using fsnotify with debouncing and runtime add/remove of roots.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/dialname/internal/indexer"
)

const defaultDebounce = 400 * time.Millisecond

// Handler imports and forgets contact files. *indexer.Indexer implements it.
type Handler interface {
	ImportFile(ctx context.Context, path string, allowedExts []string) (*indexer.ImportResult, error)
	DeleteSource(ctx context.Context, path string) (int, error)
}

// Stats counts what the watcher has done since it started.
type Stats struct {
	Imported int `json:"imported"`
	Removed  int `json:"removed"`
	Failed   int `json:"failed"`
}

// Watcher watches directories of contact files and re-imports changed files.
type Watcher struct {
	roots       []string
	extensions  []string
	recursive   bool
	handler     Handler
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	ctx         context.Context
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	rootPaths   map[string][]string // root -> watched directories under it
	stats       Stats
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger // optional; when set, logs debug events
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output (directory changes, file events, etc.).
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a file must be quiet before it is imported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher over roots. extensions filter which files are
// imported (empty = every file the importer supports).
func NewWatcher(roots []string, extensions []string, recursive bool, handler Handler, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		roots:       append([]string(nil), roots...),
		extensions:  extensions,
		recursive:   recursive,
		handler:     handler,
		debounce:    defaultDebounce,
		ctx:         context.Background(),
		debounceMap: make(map[string]*time.Timer),
		rootPaths:   make(map[string][]string),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.ctx = ctx
	w.started = true
	w.debug("watcher starting", zap.Strings("roots", w.roots), zap.Strings("extensions", w.extensions), zap.Bool("recursive", w.recursive))
	for i, root := range w.roots {
		abs, err := filepath.Abs(root)
		if err == nil {
			err = w.addRootLocked(abs)
		}
		if err != nil {
			_ = w.watcher.Close()
			w.watcher = nil
			w.started = false
			w.mu.Unlock()
			return err
		}
		w.roots[i] = abs
	}
	events, errs := watcher.Events, watcher.Errors
	w.mu.Unlock()
	go w.run(ctx, events, errs)
	return nil
}

func (w *Watcher) debug(msg string, fields ...zap.Field) {
	if w.logger != nil {
		w.logger.Debug(msg, fields...)
	}
}

func (w *Watcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-errs:
			if !ok {
				return
			}
			if err != nil {
				w.debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if !w.underRoot(path) || hidden(filepath.Base(path)) {
		return
	}
	w.debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// Renamed files arrive again as Create under their new name.
		w.cancelDebounce(path)
		if w.matchExtension(path) {
			w.remove(path)
		}
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
		if w.matchExtension(path) {
			w.debounceImport(path)
		}
	}
}

// handleNewDirectory watches a newly created directory and imports the
// contact files already inside it.
func (w *Watcher) handleNewDirectory(dirPath string) {
	w.debug("watcher handling new directory", zap.String("path", dirPath))

	w.mu.Lock()
	recursive := w.recursive
	watcher := w.watcher
	w.mu.Unlock()
	if watcher == nil {
		return
	}

	var added []string
	if recursive {
		_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != dirPath && hidden(d.Name()) {
				return filepath.SkipDir
			}
			if err := watcher.Add(path); err != nil {
				w.debug("watcher failed to add directory", zap.String("path", path), zap.Error(err))
				return nil
			}
			added = append(added, path)
			return nil
		})
	} else if err := watcher.Add(dirPath); err != nil {
		w.debug("watcher failed to add directory", zap.String("path", dirPath), zap.Error(err))
	} else {
		added = append(added, dirPath)
	}
	w.trackPaths(dirPath, added)

	w.syncDirectory(dirPath)
}

// trackPaths records watched directories under the root that owns dirPath so
// RemoveDirectory can drop them. Without an owning root the watches are removed.
func (w *Watcher) trackPaths(dirPath string, paths []string) {
	if len(paths) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return
	}
	clean := filepath.Clean(dirPath)
	owner := ""
	for _, root := range w.roots {
		r := filepath.Clean(root)
		if (r == clean || inDir(r, clean)) && len(r) > len(owner) {
			owner = r
		}
	}
	if owner == "" {
		for _, p := range paths {
			_ = w.watcher.Remove(p)
		}
		return
	}
	known := make(map[string]struct{}, len(w.rootPaths[owner]))
	for _, p := range w.rootPaths[owner] {
		known[p] = struct{}{}
	}
	for _, p := range paths {
		if _, ok := known[p]; !ok {
			w.rootPaths[owner] = append(w.rootPaths[owner], p)
		}
	}
}

func (w *Watcher) underRoot(path string) bool {
	w.mu.Lock()
	roots := append([]string(nil), w.roots...)
	w.mu.Unlock()
	clean := filepath.Clean(path)
	for _, root := range roots {
		rootClean := filepath.Clean(root)
		if rootClean == clean || inDir(rootClean, clean) {
			return true
		}
	}
	return false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// hidden reports dotfiles and editor leftovers such as "contacts.csv~".
func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}

func (w *Watcher) matchExtension(path string) bool {
	return matchExtension(path, w.extensions)
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	extNorm := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == extNorm {
			return true
		}
	}
	return false
}

func (w *Watcher) debounceImport(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.importFile(path)
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

func (w *Watcher) importFile(path string) {
	if w.handler == nil {
		return
	}
	w.mu.Lock()
	ctx, exts := w.ctx, w.extensions
	w.mu.Unlock()

	res, err := w.handler.ImportFile(ctx, path, exts)
	w.mu.Lock()
	if err != nil {
		w.stats.Failed++
	} else if !res.Skipped {
		w.stats.Imported++
	}
	w.mu.Unlock()
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("watcher import failed", zap.String("path", path), zap.Error(err))
		}
		return
	}
	w.debug("watcher imported file", zap.String("path", path), zap.Int("contacts", res.Contacts), zap.Bool("skipped", res.Skipped))
}

func (w *Watcher) remove(path string) {
	if w.handler == nil {
		return
	}
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()

	n, err := w.handler.DeleteSource(ctx, path)
	w.mu.Lock()
	if err != nil {
		w.stats.Failed++
	} else if n > 0 {
		w.stats.Removed++
	}
	w.mu.Unlock()
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("watcher remove failed", zap.String("path", path), zap.Error(err))
		}
		return
	}
	w.debug("watcher removed file", zap.String("path", path), zap.Int("contacts", n))
}

// AddDirectory adds a root directory to watch and optionally imports its
// existing files in the background.
func (w *Watcher) AddDirectory(root string, syncExisting bool) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	for _, r := range w.roots {
		if filepath.Clean(r) == abs {
			return nil
		}
	}
	if err := w.addRootLocked(abs); err != nil {
		return err
	}
	w.roots = append(w.roots, abs)
	w.debug("watcher directory added", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if syncExisting {
		go w.syncDirectory(abs)
	}
	return nil
}

func (w *Watcher) addRootLocked(root string) error {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(root, 0755); err != nil {
			return err
		}
	}
	var paths []string
	if w.recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && hidden(d.Name()) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				return err
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return err
		}
	} else {
		if err := w.watcher.Add(root); err != nil {
			return err
		}
		paths = append(paths, root)
	}
	w.rootPaths[root] = paths
	return nil
}

// syncDirectory imports every matching contact file under root.
func (w *Watcher) syncDirectory(root string) {
	w.mu.Lock()
	exts := append([]string(nil), w.extensions...)
	recursive := w.recursive
	w.mu.Unlock()
	w.debug("watcher syncing directory", zap.String("root", root))

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (!recursive || hidden(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if !hidden(d.Name()) && matchExtension(path, exts) {
			w.importFile(path)
		}
		return nil
	})
}

// RemoveDirectory stops watching the given root. Contacts already imported
// from it are kept.
func (w *Watcher) RemoveDirectory(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	idx := -1
	for i, r := range w.roots {
		if filepath.Clean(r) == abs {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	for _, p := range w.rootPaths[abs] {
		_ = w.watcher.Remove(p)
	}
	delete(w.rootPaths, abs)
	w.roots = append(w.roots[:idx], w.roots[idx+1:]...)
	w.debug("watcher directory removed", zap.String("path", abs))
	return nil
}

// Directories returns a copy of the current watched root directories.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// Stats returns a snapshot of the watcher's counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// SyncExistingFiles imports the existing files of every watched root.
// Call it after Start to pick up files that were present before.
func (w *Watcher) SyncExistingFiles() {
	for _, root := range w.Directories() {
		w.syncDirectory(root)
	}
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
