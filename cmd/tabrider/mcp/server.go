package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/neilberkman/tabrider/internal/core/db"
	"github.com/neilberkman/tabrider/internal/core/history"
	"github.com/neilberkman/tabrider/internal/core/models"
	"github.com/neilberkman/tabrider/internal/core/search"
	"github.com/neilberkman/tabrider/internal/core/session"
	"github.com/neilberkman/tabrider/internal/logx"
)

// ListSessionsArgs defines arguments for the list_sessions tool
type ListSessionsArgs struct {
	Limit      int    `json:"limit,omitempty"`
	SavedOnly  bool   `json:"saved_only,omitempty"`
	AfterDate  string `json:"after_date,omitempty"`
	BeforeDate string `json:"before_date,omitempty"`
}

// GetSessionArgs defines arguments for the get_session tool
type GetSessionArgs struct {
	SessionID string `json:"session_id"`
}

// SearchSessionsArgs defines arguments for the search_sessions tool
type SearchSessionsArgs struct {
	Query      string `json:"query"`
	Limit      int    `json:"limit,omitempty"`
	AfterDate  string `json:"after_date,omitempty"`
	BeforeDate string `json:"before_date,omitempty"`
}

// SaveSessionArgs defines arguments for the save_session tool
type SaveSessionArgs struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

// RemoveTabArgs defines arguments for the remove_tab tool
type RemoveTabArgs struct {
	SessionID string `json:"session_id"`
	WindowID  int64  `json:"window_id"`
	Tab       string `json:"tab"`
}

// SessionSummary represents a session in the list view
type SessionSummary struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name,omitempty"`
	Title     string `json:"title"`
	Group     string `json:"group"`
	Date      string `json:"date"`
	Windows   int    `json:"windows"`
	Tabs      int    `json:"tabs"`
}

// TabMatch represents a tab search result
type TabMatch struct {
	SessionID   string `json:"session_id"`
	SessionName string `json:"session_name,omitempty"`
	SessionDate string `json:"session_date"`
	WindowIndex int    `json:"window_index"`
	WindowID    *int64 `json:"window_id,omitempty"`
	TabID       *int64 `json:"tab_id,omitempty"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
}

// Deps is what the tool handlers work against
type Deps struct {
	Store  *session.Store
	DB     *db.DB
	Titler session.Titler
}

// Default result sizes
const (
	defaultListLimit   = 20
	defaultSearchLimit = 20
)

// NewServer builds the MCP server with every tool registered
func NewServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer("TabRider", version)
	h := handlers{deps: deps}

	listTool := mcp.NewTool("list_sessions",
		mcp.WithDescription("List stored browser sessions, newest first. Each session is grouped as current (the latest unnamed snapshot), recent (older unnamed snapshots) or saved (named by the user)."),
		mcp.WithNumber("limit",
			mcp.Description("Max sessions to return (default: 20)")),
		mcp.WithBoolean("saved_only",
			mcp.Description("Only return saved (named) sessions")),
		mcp.WithString("after_date",
			mcp.Description("Only sessions captured after this date (e.g. '2025-01-01' or 'yesterday')")),
		mcp.WithString("before_date",
			mcp.Description("Only sessions captured before this date")),
	)
	s.AddTool(listTool, h.listSessions)

	getTool := mcp.NewTool("get_session",
		mcp.WithDescription("Retrieve one session with all of its windows and tabs"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id")),
	)
	s.AddTool(getTool, h.getSession)

	searchTool := mcp.NewTool("search_sessions",
		mcp.WithDescription("Search tab titles and URLs across every stored session. Suspended tabs match on their original URL."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Words to match in tab titles, or a URL fragment")),
		mcp.WithNumber("limit",
			mcp.Description("Max tabs to return (default: 20)")),
		mcp.WithString("after_date",
			mcp.Description("Only tabs from sessions captured after this date")),
		mcp.WithString("before_date",
			mcp.Description("Only tabs from sessions captured before this date")),
	)
	s.AddTool(searchTool, h.searchSessions)

	saveTool := mcp.NewTool("save_session",
		mcp.WithDescription("Name a session, which marks it saved so history cleanup keeps it"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id")),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name to save the session under")),
	)
	s.AddTool(saveTool, h.saveSession)

	removeTool := mcp.NewTool("remove_tab",
		mcp.WithDescription("Remove one tab from a stored session. A window left empty is dropped, and a session left without windows is deleted."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id")),
		mcp.WithNumber("window_id",
			mcp.Required(),
			mcp.Description("Browser id of the window holding the tab")),
		mcp.WithString("tab",
			mcp.Required(),
			mcp.Description("Tab id, or the tab URL for tabs stored without an id")),
	)
	s.AddTool(removeTool, h.removeTab)

	return s
}

// StartServer serves the tools over stdio until the client disconnects
func StartServer(ctx context.Context, deps Deps, version string) error {
	logx.Ctx(ctx).Info("starting mcp server", "version", version)
	return server.ServeStdio(NewServer(deps, version))
}

type handlers struct {
	deps Deps
}

func decodeArgs(request mcp.CallToolRequest, v any) error {
	argsBytes, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(argsBytes, v)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

// dateRange reads optional date bounds; an empty bound is open
func dateRange(after, before string) (time.Time, time.Time, error) {
	now := time.Now()
	a, err := history.ParseDate(after, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	b, err := history.ParseDate(before, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return a, b, nil
}

func (h handlers) listSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ListSessionsArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	after, before, err := dateRange(args.AfterDate, args.BeforeDate)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessions, err := h.deps.Store.ListSessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}

	// Group on the full history so "current" means the latest snapshot,
	// not the latest one inside the date range
	groups := history.Partition(history.Sort(sessions))
	groupOf := make(map[string]string, len(sessions))
	if groups.Current != nil {
		groupOf[groups.Current.ID] = "current"
	}
	for _, s := range groups.Recent {
		groupOf[s.ID] = "recent"
	}
	for _, s := range groups.Saved {
		groupOf[s.ID] = "saved"
	}

	results := []SessionSummary{}
	for _, s := range history.Filter(history.Sort(sessions), after, before) {
		if args.SavedOnly && !s.IsSaved() {
			continue
		}
		results = append(results, SessionSummary{
			SessionID: s.ID,
			Name:      s.Name,
			Title:     h.deps.Titler.Title(s),
			Group:     groupOf[s.ID],
			Date:      s.Date.Format(time.RFC3339),
			Windows:   len(s.Windows),
			Tabs:      s.TabCount(),
		})
		if len(results) >= limit {
			break
		}
	}

	return jsonResult(map[string]any{"sessions": results})
}

func (h handlers) getSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args GetSessionArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	s, err := h.deps.Store.GetSessionByID(ctx, args.SessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session not found: %v", err)), nil
	}
	return jsonResult(s)
}

func (h handlers) searchSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args SearchSessionsArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.Query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	after, before, err := dateRange(args.AfterDate, args.BeforeDate)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Date bounds are applied after the search, so fetch the default cap
	found, err := search.SearchTabs(h.deps.DB, args.Query, search.DefaultLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	results := []TabMatch{}
	for _, r := range found {
		if !after.IsZero() && r.SessionDate.Before(after) {
			continue
		}
		if !before.IsZero() && !r.SessionDate.Before(before) {
			continue
		}
		results = append(results, TabMatch{
			SessionID:   r.SessionID,
			SessionName: r.SessionName,
			SessionDate: r.SessionDate.Format(time.RFC3339),
			WindowIndex: r.WindowIndex,
			WindowID:    r.WindowID,
			TabID:       r.TabID,
			URL:         r.URL,
			Title:       r.Title,
			Snippet:     r.Snippet,
		})
		if len(results) >= limit {
			break
		}
	}

	return jsonResult(map[string]any{"tabs": results})
}

func (h handlers) saveSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args SaveSessionArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	s, err := h.deps.Store.GetSessionByID(ctx, args.SessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session not found: %v", err)), nil
	}
	saved, err := h.deps.Store.SaveSession(ctx, args.Name, s)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save session: %v", err)), nil
	}
	return jsonResult(SessionSummary{
		SessionID: saved.ID,
		Name:      saved.Name,
		Title:     h.deps.Titler.Title(saved),
		Group:     "saved",
		Date:      saved.Date.Format(time.RFC3339),
		Windows:   len(saved.Windows),
		Tabs:      saved.TabCount(),
	})
}

func (h handlers) removeTab(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args RemoveTabArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Tab == "" {
		return mcp.NewToolResultError("tab is required"), nil
	}

	updated, err := h.deps.Store.RemoveTabFromSessionHistory(ctx, args.SessionID, args.WindowID, models.ParseTabKey(args.Tab))
	if errors.Is(err, session.ErrNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove tab: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"session_id":        args.SessionID,
		"remaining_windows": len(updated.Windows),
		"remaining_tabs":    updated.TabCount(),
	})
}
