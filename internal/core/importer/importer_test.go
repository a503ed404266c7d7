package importer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neilberkman/tabrider/internal/core/db"
	"github.com/neilberkman/tabrider/internal/core/session"
)

func setup(t *testing.T) (*Importer, *session.Store) {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })
	_ = tmpfile.Close()

	database, err := db.New(tmpfile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = database.Close() })

	store := session.NewStore(database)
	return New(database, store), store
}

func TestImportFile(t *testing.T) {
	imp, store := setup(t)
	ctx := context.Background()

	res, err := imp.ImportFile(ctx, "../../../pkg/gssessions/testdata/sessions.json")
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if res.Parsed != 2 || res.Imported != 2 || res.Skipped {
		t.Errorf("result = %+v, want 2 parsed and imported", res)
	}

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	if sessions[1].Name != "Work" || !sessions[1].IsSaved() {
		t.Errorf("second session = %+v, want saved session Work", sessions[1])
	}
	if sessions[0].Windows[0].Tabs[1].Favicon == "" {
		t.Error("favicon was not imported")
	}

	// Same file again is skipped by hash
	res, err = imp.ImportFile(ctx, "../../../pkg/gssessions/testdata/sessions.json")
	if err != nil {
		t.Fatalf("second ImportFile() error = %v", err)
	}
	if !res.Skipped {
		t.Errorf("second import was not skipped: %+v", res)
	}
}

func TestImportFile_TextExport(t *testing.T) {
	imp, store := setup(t)
	ctx := context.Background()

	res, err := imp.ImportFile(ctx, "../../../pkg/gssessions/testdata/session.txt")
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("Imported = %d, want 1", res.Imported)
	}

	s, err := store.GetSessionByID(ctx, "session")
	if err != nil {
		t.Fatalf("GetSessionByID() error = %v", err)
	}
	if s.IsSaved() || len(s.Windows) != 1 || len(s.Windows[0].Tabs) != 3 {
		t.Errorf("imported session = %+v", s)
	}
}

func TestImportFiles_Progress(t *testing.T) {
	imp, store := setup(t)
	ctx := context.Background()

	dir := t.TempDir()
	good := filepath.Join(dir, "a.txt")
	bad := filepath.Join(dir, "b.json")
	if err := os.WriteFile(good, []byte("https://a.example\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("[{"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := FindExportFiles(dir)
	if err != nil {
		t.Fatalf("FindExportFiles() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("FindExportFiles() = %v, want 2 files", files)
	}

	var out bytes.Buffer
	progress := NewProgressReporter(&out, len(files))
	results, err := imp.ImportFiles(ctx, files, progress)
	if err != nil {
		t.Fatalf("ImportFiles() error = %v", err)
	}

	// The malformed file is skipped
	if len(results) != 1 || results[0].Path != good {
		t.Errorf("results = %+v", results)
	}
	if !strings.Contains(out.String(), "Completed") {
		t.Errorf("progress output = %q", out.String())
	}

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Errorf("Expected 1 session, got %d", len(sessions))
	}
}

func TestFindExportFiles_SingleFile(t *testing.T) {
	files, err := FindExportFiles("../../../pkg/gssessions/testdata/session.txt")
	if err != nil {
		t.Fatalf("FindExportFiles() error = %v", err)
	}
	if len(files) != 1 {
		t.Errorf("FindExportFiles() = %v", files)
	}
}
