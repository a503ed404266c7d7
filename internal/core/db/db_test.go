package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neilberkman/tabrider/internal/core/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })
	_ = tmpfile.Close()

	database, err := New(tmpfile.Name())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestNew(t *testing.T) {
	database := newTestDB(t)

	// Verify schema initialized
	var count int
	err := database.conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}

	// Should have: sessions, windows, tabs, previews, tabs_fts (+ fts shadow tables)
	if count < 5 {
		t.Errorf("Expected at least 5 tables, got %d", count)
	}
}

func TestNew_WALMode(t *testing.T) {
	database := newTestDB(t)

	var journalMode string
	if err := database.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected WAL mode, got %s", journalMode)
	}
}

func TestNew_ForeignKeys(t *testing.T) {
	database := newTestDB(t)

	var fkEnabled int
	if err := database.conn.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Fatalf("Failed to query foreign keys: %v", err)
	}
	if fkEnabled != 1 {
		t.Errorf("Expected foreign keys enabled, got %d", fkEnabled)
	}
}

func TestMigrations(t *testing.T) {
	database := newTestDB(t)

	has, err := database.hasColumn("tabs", "favicon")
	if err != nil {
		t.Fatalf("hasColumn() error = %v", err)
	}
	if !has {
		t.Error("Expected favicon column after migrations")
	}

	// Running migrations again must be a no-op
	if err := database.runMigrations(); err != nil {
		t.Errorf("second runMigrations() error = %v", err)
	}
}

func TestForeignKeyConstraint(t *testing.T) {
	database := newTestDB(t)

	_, err := database.conn.Exec(`
		INSERT INTO windows (session_id, position) VALUES (?, ?)
	`, "missing-session", 0)
	if err == nil {
		t.Error("Expected foreign key constraint error, got nil")
	}
}

func sampleSessions() []models.Session {
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.Session{
		{
			ID:   "s1",
			Date: day,
			Windows: []models.Window{
				{ID: models.Int64(10), Tabs: []models.Tab{
					{ID: models.Int64(100), URL: "https://a.example", Title: "Alpha", Pinned: true},
					{URL: "https://b.example", Title: "Beta docs", Favicon: "https://b.example/favicon.ico"},
				}},
				{Tabs: []models.Tab{
					{URL: "https://c.example", Title: "Gamma"},
				}},
			},
		},
		{
			ID:   "s2",
			Name: "work",
			Date: day.Add(-24 * time.Hour),
			Windows: []models.Window{
				{Tabs: []models.Tab{{URL: "https://d.example", Title: "Delta"}}},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	want := sampleSessions()
	if err := database.SaveSessions(ctx, want); err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}

	got, err := database.LoadSessions(ctx)
	if err != nil {
		t.Fatalf("LoadSessions() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("LoadSessions() returned %d sessions, want %d", len(got), len(want))
	}

	for i := range want {
		if got[i].ID != want[i].ID || got[i].Name != want[i].Name {
			t.Errorf("session %d = %s/%q, want %s/%q", i, got[i].ID, got[i].Name, want[i].ID, want[i].Name)
		}
		if !got[i].Date.Equal(want[i].Date) {
			t.Errorf("session %d date = %v, want %v", i, got[i].Date, want[i].Date)
		}
		if len(got[i].Windows) != len(want[i].Windows) {
			t.Fatalf("session %d has %d windows, want %d", i, len(got[i].Windows), len(want[i].Windows))
		}
		for j := range want[i].Windows {
			gw, ww := got[i].Windows[j], want[i].Windows[j]
			if (gw.ID == nil) != (ww.ID == nil) || (gw.ID != nil && *gw.ID != *ww.ID) {
				t.Errorf("session %d window %d id mismatch", i, j)
			}
			if len(gw.Tabs) != len(ww.Tabs) {
				t.Fatalf("session %d window %d has %d tabs, want %d", i, j, len(gw.Tabs), len(ww.Tabs))
			}
			for k := range ww.Tabs {
				gt, wt := gw.Tabs[k], ww.Tabs[k]
				if gt.URL != wt.URL || gt.Title != wt.Title || gt.Pinned != wt.Pinned || gt.Favicon != wt.Favicon {
					t.Errorf("tab %d/%d/%d = %+v, want %+v", i, j, k, gt, wt)
				}
				if (gt.ID == nil) != (wt.ID == nil) {
					t.Errorf("tab %d/%d/%d id presence mismatch", i, j, k)
				}
			}
		}
	}
}

func TestSaveSessions_Overwrites(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	if err := database.SaveSessions(ctx, sampleSessions()); err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}

	only := sampleSessions()[1:]
	if err := database.SaveSessions(ctx, only); err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}

	got, err := database.LoadSessions(ctx)
	if err != nil {
		t.Fatalf("LoadSessions() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "s2" {
		t.Fatalf("LoadSessions() = %+v, want only s2", got)
	}

	var ftsCount int
	if err := database.conn.QueryRow("SELECT COUNT(*) FROM tabs_fts").Scan(&ftsCount); err != nil {
		t.Fatalf("Failed to count FTS rows: %v", err)
	}
	if ftsCount != 1 {
		t.Errorf("Expected 1 FTS row after overwrite, got %d", ftsCount)
	}
}

func TestSaveSessions_RejectsInvalid(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	if err := database.SaveSessions(ctx, sampleSessions()); err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}

	tests := []struct {
		name     string
		sessions []models.Session
	}{
		{"duplicate id", append(sampleSessions(), sampleSessions()[0])},
		{"empty window", []models.Session{{ID: "x", Date: time.Now(), Windows: []models.Window{{}}}}},
		{"missing id", []models.Session{{Date: time.Now()}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := database.SaveSessions(ctx, tt.sessions); err == nil {
				t.Error("SaveSessions() expected error, got nil")
			}
		})
	}

	// Previous collection must be untouched
	got, err := database.LoadSessions(ctx)
	if err != nil {
		t.Fatalf("LoadSessions() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 sessions after rejected writes, got %d", len(got))
	}
}

func TestLoadSessions_Empty(t *testing.T) {
	database := newTestDB(t)

	got, err := database.LoadSessions(context.Background())
	if err != nil {
		t.Fatalf("LoadSessions() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("LoadSessions() = %v, want empty non-nil slice", got)
	}
}

func TestPreviewCache(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	if err := database.SavePreview(ctx, "https://a.example", []byte{1, 2, 3}); err != nil {
		t.Fatalf("SavePreview() error = %v", err)
	}
	if err := database.SavePreview(ctx, "https://a.example", []byte{4}); err != nil {
		t.Fatalf("SavePreview() upsert error = %v", err)
	}

	stats, err := database.GetStats("")
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.CachedPreviews != 1 {
		t.Errorf("CachedPreviews = %d, want 1", stats.CachedPreviews)
	}

	if err := database.ClearPreviewCache(ctx); err != nil {
		t.Fatalf("ClearPreviewCache() error = %v", err)
	}

	stats, err = database.GetStats("")
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.CachedPreviews != 0 {
		t.Errorf("CachedPreviews after clear = %d, want 0", stats.CachedPreviews)
	}
}

func TestGetStats(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	sessions := sampleSessions()
	page := "chrome-extension://abc/suspended.html"
	sessions[1].Windows[0].Tabs = append(sessions[1].Windows[0].Tabs, models.Tab{
		URL: page + "#uri=https%3A%2F%2Fe.example",
	})
	if err := database.SaveSessions(ctx, sessions); err != nil {
		t.Fatalf("SaveSessions() error = %v", err)
	}

	stats, err := database.GetStats(page)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	if stats.TotalSessions != 2 || stats.SavedSessions != 1 || stats.HistorySessions != 1 {
		t.Errorf("session counts = %d/%d/%d, want 2/1/1", stats.TotalSessions, stats.SavedSessions, stats.HistorySessions)
	}
	if stats.TotalWindows != 3 {
		t.Errorf("TotalWindows = %d, want 3", stats.TotalWindows)
	}
	if stats.TotalTabs != 5 {
		t.Errorf("TotalTabs = %d, want 5", stats.TotalTabs)
	}
	if stats.PinnedTabs != 1 {
		t.Errorf("PinnedTabs = %d, want 1", stats.PinnedTabs)
	}
	if stats.SuspendedTabs != 1 {
		t.Errorf("SuspendedTabs = %d, want 1", stats.SuspendedTabs)
	}
	if !stats.OldestSession.Equal(sessions[1].Date) || !stats.NewestSession.Equal(sessions[0].Date) {
		t.Errorf("date range = %v..%v", stats.OldestSession, stats.NewestSession)
	}
}

func TestImportLog(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seen, err := database.HasImport(ctx, "abc")
	if err != nil {
		t.Fatalf("HasImport() error = %v", err)
	}
	if seen {
		t.Fatal("HasImport() = true before any import")
	}

	if err := database.RecordImport(ctx, "/tmp/a.json", "abc", 3); err != nil {
		t.Fatalf("RecordImport() error = %v", err)
	}
	if err := database.RecordImport(ctx, "/tmp/b.json", "abc", 3); err != nil {
		t.Fatalf("RecordImport() repeat error = %v", err)
	}

	seen, err = database.HasImport(ctx, "abc")
	if err != nil {
		t.Fatalf("HasImport() error = %v", err)
	}
	if !seen {
		t.Error("HasImport() = false after RecordImport")
	}
}
