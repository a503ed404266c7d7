package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/neilberkman/tabrider/internal/core/models"
)

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		m.mode = listView
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchResults = nil
		m.searchSelectedIdx = 0
		m.searchViewOffset = 0
		return m, nil

	case "enter":
		// Open the session holding the selected tab, cursor on that tab
		if len(m.searchResults) > 0 && m.searchSelectedIdx < len(m.searchResults) {
			r := m.searchResults[m.searchSelectedIdx]
			for _, s := range m.sessions {
				if s.ID != r.SessionID {
					continue
				}
				m.searchInput.Blur()
				m = m.openSession(s)
				m.cursor = m.flatIndex(s, r.WindowIndex, r.URL)
				keepCursorVisible(&m)
				return m, nil
			}
			m.status = "Session no longer exists"
		}
		return m, nil

	// Navigation: Use Ctrl+j or arrow keys (allow j/k to be typed in search)
	case "ctrl+j", "down":
		if len(m.searchResults) > 0 {
			m.searchSelectedIdx++
			if m.searchSelectedIdx >= len(m.searchResults) {
				m.searchSelectedIdx = len(m.searchResults) - 1
			}
			return adjustSearchViewport(m), nil
		}
		return m, nil

	case "up":
		if len(m.searchResults) > 0 {
			m.searchSelectedIdx--
			if m.searchSelectedIdx < 0 {
				m.searchSelectedIdx = 0
			}
			return adjustSearchViewport(m), nil
		}
		return m, nil
	}

	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live search on every keystroke
	query := m.searchInput.Value()
	m.searchSelectedIdx = 0
	m.searchViewOffset = 0
	return m, tea.Batch(cmd, performSearch(m.db, query))
}

// flatIndex finds the cursor position of the first tab with url in the
// given window, or 0
func (m Model) flatIndex(s models.Session, windowIndex int, url string) int {
	flat := 0
	for wi, w := range s.Windows {
		if wi != windowIndex {
			flat += len(w.Tabs)
			continue
		}
		for ti, t := range w.Tabs {
			if t.URL == url || m.codec.Resume(t.URL) == url {
				return flat + ti
			}
		}
		return flat
	}
	return 0
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(searchHeaderStyle.Render("Search: "))
	b.WriteString(m.searchInput.View())
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 80))
	b.WriteString("\n\n")

	switch {
	case m.searchResults == nil:
		b.WriteString(searchMetaStyle.Render("Type to search (minimum 2 characters)"))
	case len(m.searchResults) == 0:
		b.WriteString(searchMetaStyle.Render("No results found"))
	default:
		b.WriteString(searchMetaStyle.Render(fmt.Sprintf("Found %d %s:", len(m.searchResults), pluralize(len(m.searchResults), "tab"))))
		b.WriteString("\n\n")

		maxVisibleResults := visibleSearchResults(m.height)
		startIdx := m.searchViewOffset
		endIdx := startIdx + maxVisibleResults
		if endIdx > len(m.searchResults) {
			endIdx = len(m.searchResults)
		}

		query := ParseSearchQuery(m.searchInput.Value()).Query
		width := m.width
		if width < 40 {
			width = 80
		}

		for i := startIdx; i < endIdx; i++ {
			r := m.searchResults[i]

			title := r.Title
			if title == "" {
				title = r.URL
			}
			title = truncate.StringWithTail(title, uint(width-4), "…")

			prefix := "  "
			if i == m.searchSelectedIdx {
				prefix = "► "
				title = searchSelectedStyle.Render(title)
			} else {
				title = highlightQuery(title, query)
			}

			where := shortID(r.SessionID)
			if r.SessionName != "" {
				where = r.SessionName
			}
			b.WriteString(prefix + title + "\n")
			b.WriteString("    " + highlightQuery(truncate.StringWithTail(r.URL, uint(width-6), "…"), query) + "\n")
			b.WriteString("    " + searchMetaStyle.Render(fmt.Sprintf("%s | window %d | %s", where, r.WindowIndex+1, humanize.Time(r.SessionDate))))
			b.WriteString("\n\n")
		}

		if startIdx > 0 {
			b.WriteString(searchMetaStyle.Render(fmt.Sprintf("... %d results above\n", startIdx)))
		}
		if endIdx < len(m.searchResults) {
			b.WriteString(searchMetaStyle.Render(fmt.Sprintf("... %d results below\n", len(m.searchResults)-endIdx)))
		}
	}

	b.WriteString("\n\n")
	if len(m.searchResults) > 0 {
		b.WriteString("Ctrl+j or ↑↓: navigate | Enter: open | esc: back")
	} else {
		b.WriteString("Type to search (min 2 chars) | esc: back")
	}
	b.WriteString("\n")
	b.WriteString(searchMetaStyle.Render("Filters: saved: | after:yesterday | after:3-days-ago | before:2024-11-01"))

	return b.String()
}

func highlightQuery(text, query string) string {
	if query == "" {
		return text
	}

	// Simple case-insensitive highlighting
	lower := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)

	idx := strings.Index(lower, lowerQuery)
	if idx == -1 {
		return text
	}

	before := text[:idx]
	match := text[idx : idx+len(query)]
	after := text[idx+len(query):]

	return before + searchMatchStyle.Render(match) + after
}
