package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/neilberkman/tabrider/internal/core/db"
	"github.com/neilberkman/tabrider/internal/core/models"
	"github.com/neilberkman/tabrider/internal/core/session"
)

var now = time.Date(2024, 11, 15, 12, 0, 0, 0, time.UTC)

func newTestHandlers(t *testing.T) handlers {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	store := session.NewStore(database)
	seed := []models.Session{
		{
			ID:   "s-old",
			Date: now.Add(-2 * time.Hour),
			Windows: []models.Window{{
				ID: models.Int64(1),
				Tabs: []models.Tab{
					{ID: models.Int64(10), URL: "https://golang.org/", Title: "The Go Programming Language"},
					{ID: models.Int64(11), URL: "https://example.com/", Title: "Example Domain"},
				},
			}},
		},
		{
			ID:   "s-new",
			Date: now,
			Windows: []models.Window{{
				ID:   models.Int64(3),
				Tabs: []models.Tab{{ID: models.Int64(30), URL: "https://news.ycombinator.com/", Title: "Hacker News"}},
			}},
		},
		{
			ID:   "s-saved",
			Name: "Work",
			Date: now.Add(-time.Hour),
			Windows: []models.Window{{
				ID:   models.Int64(2),
				Tabs: []models.Tab{{ID: models.Int64(20), URL: "https://go.dev/doc/", Title: "Documentation"}},
			}},
		},
	}
	if _, err := store.ImportSessions(context.Background(), seed); err != nil {
		t.Fatalf("ImportSessions() error = %v", err)
	}

	return handlers{deps: Deps{
		Store:  store,
		DB:     database,
		Titler: session.Titler{Now: func() time.Time { return now }},
	}}
}

func call(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	result, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("handler returned no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text, result.IsError
}

func TestListSessions(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.listSessions, map[string]any{})
	if isErr {
		t.Fatalf("list_sessions error: %s", text)
	}

	var got struct {
		Sessions []SessionSummary `json:"sessions"`
	}
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	want := []struct{ id, group string }{
		{"s-new", "current"},
		{"s-saved", "saved"},
		{"s-old", "recent"},
	}
	if len(got.Sessions) != len(want) {
		t.Fatalf("got %d sessions, want %d", len(got.Sessions), len(want))
	}
	for i, w := range want {
		if got.Sessions[i].SessionID != w.id || got.Sessions[i].Group != w.group {
			t.Errorf("sessions[%d] = %s/%s, want %s/%s", i, got.Sessions[i].SessionID, got.Sessions[i].Group, w.id, w.group)
		}
	}
	if got.Sessions[2].Tabs != 2 {
		t.Errorf("s-old tabs = %d, want 2", got.Sessions[2].Tabs)
	}
}

func TestListSessions_SavedOnly(t *testing.T) {
	h := newTestHandlers(t)

	text, _ := call(t, h.listSessions, map[string]any{"saved_only": true, "limit": 5})
	var got struct {
		Sessions []SessionSummary `json:"sessions"`
	}
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].Name != "Work" {
		t.Errorf("saved_only returned %+v, want only Work", got.Sessions)
	}
}

func TestGetSession(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.getSession, map[string]any{"session_id": "s-old"})
	if isErr {
		t.Fatalf("get_session error: %s", text)
	}
	var s models.Session
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if s.ID != "s-old" || s.TabCount() != 2 {
		t.Errorf("got session %s with %d tabs", s.ID, s.TabCount())
	}

	if _, isErr := call(t, h.getSession, map[string]any{"session_id": "missing"}); !isErr {
		t.Error("expected error result for missing session")
	}
}

func TestSearchSessions(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.searchSessions, map[string]any{"query": "Documentation"})
	if isErr {
		t.Fatalf("search_sessions error: %s", text)
	}
	var got struct {
		Tabs []TabMatch `json:"tabs"`
	}
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got.Tabs) != 1 || got.Tabs[0].SessionID != "s-saved" {
		t.Fatalf("search returned %+v, want the s-saved tab", got.Tabs)
	}

	if _, isErr := call(t, h.searchSessions, map[string]any{"query": "  "}); !isErr {
		t.Error("expected error result for empty query")
	}
}

func TestSaveSession(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.saveSession, map[string]any{"session_id": "s-old", "name": "Reading"})
	if isErr {
		t.Fatalf("save_session error: %s", text)
	}

	s, err := h.deps.Store.GetSessionByID(context.Background(), "s-old")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "Reading" {
		t.Errorf("name = %q, want Reading", s.Name)
	}

	if _, isErr := call(t, h.saveSession, map[string]any{"session_id": "s-old", "name": ""}); !isErr {
		t.Error("expected error result for empty name")
	}
}

func TestRemoveTab(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := call(t, h.removeTab, map[string]any{"session_id": "s-old", "window_id": 1, "tab": "10"})
	if isErr {
		t.Fatalf("remove_tab error: %s", text)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["remaining_tabs"] != float64(1) {
		t.Errorf("remaining_tabs = %v, want 1", got["remaining_tabs"])
	}

	// Removing the only tab of s-new deletes it
	if _, isErr := call(t, h.removeTab, map[string]any{"session_id": "s-new", "window_id": 3, "tab": "30"}); isErr {
		t.Fatal("remove_tab on s-new failed")
	}
	if _, err := h.deps.Store.GetSessionByID(context.Background(), "s-new"); err == nil {
		t.Error("s-new should be deleted after its last tab is removed")
	}

	if _, isErr := call(t, h.removeTab, map[string]any{"session_id": "s-old", "window_id": 9, "tab": "11"}); !isErr {
		t.Error("expected error result for unknown window")
	}
}
