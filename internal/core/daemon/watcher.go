package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/neilberkman/tabrider/internal/core/importer"
	"github.com/neilberkman/tabrider/internal/logx"
)

// FileImporter imports one export file
type FileImporter interface {
	ImportFile(ctx context.Context, path string) (importer.FileResult, error)
}

// Watcher imports session exports as they appear in a directory
type Watcher struct {
	importer  FileImporter
	watcher   *fsnotify.Watcher
	watchPath string
	settle    time.Duration

	mu    sync.Mutex
	stats Stats
}

// Stats tracks watcher activity
type Stats struct {
	StartTime        time.Time
	FilesImported    int
	SessionsImported int
	LastImport       time.Time
	Errors           int
}

// NewWatcher creates a watcher on watchPath, which must be a directory
func NewWatcher(imp FileImporter, watchPath string) (*Watcher, error) {
	info, err := os.Stat(watchPath)
	if err != nil {
		return nil, fmt.Errorf("watch path does not exist: %s", watchPath)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path is not a directory: %s", watchPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		importer:  imp,
		watcher:   watcher,
		watchPath: watchPath,
		settle:    200 * time.Millisecond,
		stats:     Stats{StartTime: time.Now()},
	}, nil
}

// Start imports what is already in the directory, then every export file
// written afterwards, until ctx is cancelled
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close()
	log := logx.Ctx(ctx).With("dir", w.watchPath)

	if err := w.watcher.Add(w.watchPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.watchPath, err)
	}
	log.Info("watching for session exports")

	files, err := importer.FindExportFiles(w.watchPath)
	if err != nil {
		log.Warn("initial scan failed", "err", err)
	}
	for _, f := range files {
		w.importFile(ctx, f)
	}

	// Editors and browsers write in several steps; import once writes settle
	pending := make(map[string]*time.Timer)
	ready := make(chan string)
	done := make(chan struct{})
	defer func() {
		close(done)
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("watcher shutting down")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if !shouldProcessEvent(event) {
				continue
			}
			log.Debug("file event", "op", event.Op.String(), "file", event.Name)
			if t, ok := pending[event.Name]; ok {
				t.Reset(w.settle)
				continue
			}
			name := event.Name
			pending[name] = time.AfterFunc(w.settle, func() {
				select {
				case ready <- name:
				case <-done:
				}
			})

		case name := <-ready:
			delete(pending, name)
			w.importFile(ctx, name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			log.Warn("watcher error", "err", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) importFile(ctx context.Context, path string) {
	log := logx.Ctx(ctx).With("file", filepath.Base(path))

	res, err := w.importer.ImportFile(ctx, path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		log.Warn("import failed", "err", err)
		w.stats.Errors++
		return
	}
	if res.Skipped {
		log.Debug("already imported")
		return
	}
	w.stats.FilesImported++
	w.stats.SessionsImported += res.Imported
	w.stats.LastImport = time.Now()
	log.Info("imported export", "sessions", res.Imported, "parsed", res.Parsed)
}

// shouldProcessEvent keeps creates and writes of export files
func shouldProcessEvent(event fsnotify.Event) bool {
	ext := strings.ToLower(filepath.Ext(event.Name))
	if ext != ".json" && ext != ".txt" {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// GetStats returns a snapshot of watcher statistics
func (w *Watcher) GetStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
