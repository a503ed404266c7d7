package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/neilberkman/tabrider/internal/core/importer"
)

// fakeImporter records every path it is asked to import. Like the real
// importer it skips files it has seen before.
type fakeImporter struct {
	mu       sync.Mutex
	paths    []string
	seen     map[string]bool
	imported chan string
	fail     map[string]bool
}

func newFakeImporter() *fakeImporter {
	return &fakeImporter{imported: make(chan string, 16), fail: map[string]bool{}, seen: map[string]bool{}}
}

func (f *fakeImporter) ImportFile(ctx context.Context, path string) (importer.FileResult, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	fail := f.fail[filepath.Base(path)]
	seen := f.seen[path]
	f.seen[path] = true
	f.mu.Unlock()

	f.imported <- filepath.Base(path)
	if fail {
		return importer.FileResult{Path: path}, errors.New("parse failed")
	}
	if seen {
		return importer.FileResult{Path: path, Skipped: true}, nil
	}
	return importer.FileResult{Path: path, Parsed: 2, Imported: 2}, nil
}

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for import of %s", want)
		}
	}
}

func TestWatcherImportsExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	imp := newFakeImporter()
	w, err := NewWatcher(imp, dir)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.settle = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Start(ctx) }()

	waitFor(t, imp.imported, "existing.json")

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("https://go.dev/\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, imp.imported, "new.txt")

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}

	stats := w.GetStats()
	if stats.FilesImported != 2 || stats.SessionsImported != 4 {
		t.Errorf("stats = %+v, want 2 files and 4 sessions", stats)
	}

	imp.mu.Lock()
	defer imp.mu.Unlock()
	for _, p := range imp.paths {
		if filepath.Base(p) == "notes.md" {
			t.Error("non-export file was imported")
		}
	}
}

func TestWatcherCountsFailures(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	imp := newFakeImporter()
	imp.fail["broken.json"] = true
	w, err := NewWatcher(imp, dir)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Start(ctx) }()

	waitFor(t, imp.imported, "broken.json")
	cancel()
	<-errc

	if stats := w.GetStats(); stats.Errors != 1 || stats.FilesImported != 0 {
		t.Errorf("stats = %+v, want 1 error and no imports", stats)
	}
}

func TestNewWatcherRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(file, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewWatcher(newFakeImporter(), file); err == nil {
		t.Error("expected error for a file path")
	}
	if _, err := NewWatcher(newFakeImporter(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestShouldProcessEvent(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"a.json", fsnotify.Create, true},
		{"a.TXT", fsnotify.Write, true},
		{"a.json", fsnotify.Remove, false},
		{"a.json.tmp", fsnotify.Create, false},
		{"a.md", fsnotify.Write, false},
	}
	for _, tt := range tests {
		if got := shouldProcessEvent(fsnotify.Event{Name: tt.name, Op: tt.op}); got != tt.want {
			t.Errorf("shouldProcessEvent(%s, %v) = %v, want %v", tt.name, tt.op, got, tt.want)
		}
	}
}
