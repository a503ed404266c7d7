package gssessions

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFile_JSON(t *testing.T) {
	parsed, err := ParseFile("testdata/sessions.json")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if parsed.Format != FormatJSON {
		t.Errorf("Format = %v, want json", parsed.Format)
	}
	if len(parsed.Sessions) != 2 {
		t.Fatalf("Session count = %v, want 2", len(parsed.Sessions))
	}

	first := parsed.Sessions[0]
	if first.ID != "_1700000000000" {
		t.Errorf("ID = %v, want _1700000000000", first.ID)
	}
	if !first.Date.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("Date = %v", first.Date)
	}
	// The empty window is dropped
	if len(first.Windows) != 1 {
		t.Fatalf("Window count = %v, want 1", len(first.Windows))
	}
	w := first.Windows[0]
	if w.ID == nil || *w.ID != 11 {
		t.Errorf("Window ID = %v, want 11", w.ID)
	}
	if len(w.Tabs) != 2 || !w.Tabs[0].Pinned || *w.Tabs[0].ID != 101 {
		t.Errorf("Tabs = %+v", w.Tabs)
	}
	if w.Tabs[1].FavIconURL != "https://sqlite.org/favicon.ico" {
		t.Errorf("FavIconURL = %v", w.Tabs[1].FavIconURL)
	}

	second := parsed.Sessions[1]
	if second.Name != "Work" {
		t.Errorf("Name = %q, want Work", second.Name)
	}
	if second.Date.Format(time.RFC3339) != "2023-11-01T09:30:00Z" {
		t.Errorf("Date = %v", second.Date)
	}
	// Tabs without a URL are dropped
	if len(second.Windows[0].Tabs) != 1 {
		t.Errorf("Tabs = %+v, want 1", second.Windows[0].Tabs)
	}
}

func TestParseFile_Text(t *testing.T) {
	parsed, err := ParseFile("testdata/session.txt")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if parsed.Format != FormatText {
		t.Errorf("Format = %v, want text", parsed.Format)
	}
	if len(parsed.Sessions) != 1 {
		t.Fatalf("Session count = %v, want 1", len(parsed.Sessions))
	}
	s := parsed.Sessions[0]
	if s.ID != "session" {
		t.Errorf("ID = %q, want derived from file name", s.ID)
	}
	if len(s.Windows) != 1 || len(s.Windows[0].Tabs) != 3 {
		t.Fatalf("Windows = %+v", s.Windows)
	}
	if s.Windows[0].Tabs[2].URL != "https://example.com/board" {
		t.Errorf("last URL = %v", s.Windows[0].Tabs[2].URL)
	}
	if !s.Date.Equal(parsed.FileMtime) {
		t.Errorf("Date = %v, want file mtime %v", s.Date, parsed.FileMtime)
	}
}

func TestParseFile_SingleObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.json")
	data := `{"id": 42, "date": "1700000000000", "windows": [{"tabs": [{"url": "https://a.example"}]}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(parsed.Sessions) != 1 || parsed.Sessions[0].ID != "42" {
		t.Errorf("Sessions = %+v", parsed.Sessions)
	}
}

func TestParseFile_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"bad json", `[{"windows": `},
		{"bad date", `[{"date": "yesterday-ish", "windows": []}]`},
		{"empty text", "\n\n# nothing\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := ParseFile(path); err == nil {
				t.Error("ParseFile() should return error")
			}
		})
	}
}

func TestParseFile_InvalidPath(t *testing.T) {
	_, err := ParseFile("nonexistent.json")
	if err == nil {
		t.Error("ParseFile() should return error for invalid path")
	}
}
