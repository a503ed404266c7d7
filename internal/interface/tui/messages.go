package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/tabrider/internal/core/db"
	"github.com/neilberkman/tabrider/internal/core/history"
	"github.com/neilberkman/tabrider/internal/core/models"
	"github.com/neilberkman/tabrider/internal/core/search"
	"github.com/neilberkman/tabrider/internal/core/session"
)

type errMsg struct {
	err error
}

type statusMsg string

type sessionsLoadedMsg struct {
	sessions []models.Session
}

// sessionUpdatedMsg carries a session after a mutation. A session with no
// windows means it was emptied and removed.
type sessionUpdatedMsg struct {
	session models.Session
	status  string
}

type sessionDeletedMsg struct {
	id     string
	status string
}

type searchResultsMsg struct {
	query   string
	results []search.TabResult
}

// Searches return at most this many tabs
const searchLimit = 100

func loadSessions(store *session.Store) tea.Cmd {
	return func() tea.Msg {
		sessions, err := store.ListSessions(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return sessionsLoadedMsg{sessions: history.Sort(sessions)}
	}
}

func performSearch(database *db.DB, query string) tea.Cmd {
	return func() tea.Msg {
		filters := ParseSearchQuery(query)

		// Minimum 2 characters to search (avoid useless single-char results)
		if len(filters.Query) < 2 {
			return searchResultsMsg{query: query}
		}

		results, err := search.SearchTabs(database, filters.Query, searchLimit)
		if err != nil {
			return errMsg{err}
		}

		matches := make([]search.TabResult, 0, len(results))
		for _, r := range results {
			if filters.HasAfter && r.SessionDate.Before(filters.AfterDate) {
				continue
			}
			if filters.HasBefore && !r.SessionDate.Before(filters.BeforeDate) {
				continue
			}
			if filters.SavedOnly && r.SessionName == "" {
				continue
			}
			matches = append(matches, r)
		}
		return searchResultsMsg{query: query, results: matches}
	}
}

func saveSession(store *session.Store, s models.Session, name string) tea.Cmd {
	return func() tea.Msg {
		saved, err := store.SaveSession(context.Background(), name, s)
		if errors.Is(err, session.ErrEmptyName) {
			return statusMsg("Name cannot be empty")
		}
		if err != nil {
			return errMsg{err}
		}
		return sessionUpdatedMsg{session: saved, status: fmt.Sprintf("Saved as %q", saved.Name)}
	}
}

func deleteSession(store *session.Store, id string) tea.Cmd {
	return func() tea.Msg {
		if err := store.DeleteSession(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return sessionDeletedMsg{id: id, status: "Session deleted"}
	}
}

func removeTab(store *session.Store, sessionID string, windowID int64, key models.TabKey) tea.Cmd {
	return func() tea.Msg {
		updated, err := store.RemoveTabFromSessionHistory(context.Background(), sessionID, windowID, key)
		if errors.Is(err, session.ErrNotFound) {
			return statusMsg("Tab no longer in session")
		}
		if err != nil {
			return errMsg{err}
		}
		if len(updated.Windows) == 0 {
			return sessionUpdatedMsg{status: "Removed last tab"}
		}
		return sessionUpdatedMsg{session: updated, status: "Tab removed"}
	}
}

func copyURLs(urls []string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(strings.Join(urls, "\n")); err != nil {
			return statusMsg("Copy failed: " + err.Error())
		}
		if len(urls) == 1 {
			return statusMsg("Copied " + urls[0])
		}
		return statusMsg(fmt.Sprintf("Copied %d URLs", len(urls)))
	}
}
