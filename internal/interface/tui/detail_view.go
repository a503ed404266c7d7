package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/neilberkman/tabrider/internal/core/models"
)

// Lines below the viewport: status and key help
const detailFooterLines = 3

func createViewport(m Model, width, height int) viewport.Model {
	vp := viewport.New(width, height-detailFooterLines)
	content, _ := renderSession(m, width)
	vp.SetContent(content)
	return vp
}

// renderSession draws the open session and returns the line the cursor tab
// starts on
func renderSession(m Model, width int) (string, int) {
	if m.current == nil {
		return "", 0
	}
	s := *m.current
	if width < 40 {
		width = 40
	}

	var b strings.Builder
	lines := 0
	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
		lines++
	}

	writeLine(titleStyle.Render(m.titler.Title(s)))
	writeLine(fmt.Sprintf("Date: %s (%s)", s.Date.Local().Format("Jan 2, 2006 3:04 PM"), humanize.Time(s.Date)))
	writeLine(fmt.Sprintf("ID:   %s", s.ID))
	writeLine(strings.Repeat("─", width))

	cursorLine := 0
	flat := 0
	for wi, w := range s.Windows {
		header := fmt.Sprintf("Window %d", wi+1)
		if w.ID != nil {
			header += fmt.Sprintf(" (id %d)", *w.ID)
		}
		header += fmt.Sprintf(" - %d %s", len(w.Tabs), pluralize(len(w.Tabs), "tab"))
		writeLine(windowStyle.Render(header))

		for _, t := range w.Tabs {
			if flat == m.cursor {
				cursorLine = lines
			}

			title := t.Title
			if title == "" {
				title = m.codec.Resume(t.URL)
			}
			var flags string
			if t.Pinned {
				flags += pinnedStyle.Render("📌 ")
			}
			suspended := m.codec.IsSuspended(t.URL)
			if suspended {
				flags += suspendedStyle.Render("💤 ")
			}
			title = truncate.StringWithTail(title, uint(width-8), "…")
			url := truncate.StringWithTail(m.codec.Resume(t.URL), uint(width-6), "…")

			if flat == m.cursor {
				writeLine(tabCursorStyle.Render("▸ ") + flags + tabCursorStyle.Render(title))
			} else if suspended {
				writeLine("  " + flags + suspendedStyle.Render(title))
			} else {
				writeLine("  " + flags + title)
			}
			writeLine("    " + urlStyle.Render(url))
			flat++
		}
		writeLine("")
	}

	return b.String(), cursorLine
}

// tabAt maps a flat cursor position to its window and tab
func tabAt(s models.Session, cursor int) (models.Window, models.Tab, bool) {
	for _, w := range s.Windows {
		if cursor < len(w.Tabs) {
			return w, w.Tabs[cursor], true
		}
		cursor -= len(w.Tabs)
	}
	return models.Window{}, models.Tab{}, false
}

// keepCursorVisible redraws the session and scrolls so the cursor tab and
// its URL line are on screen
func keepCursorVisible(m *Model) {
	content, line := renderSession(*m, m.width)
	m.viewport.SetContent(content)
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
	} else if line+1 >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line + 2 - m.viewport.Height)
	}
}

func (m Model) moveCursor(delta int) Model {
	n := m.current.TabCount()
	if n == 0 {
		return m
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	keepCursorVisible(&m)
	return m
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.current == nil {
		m.mode = listView
		return m, nil
	}
	s := *m.current
	window, tab, hasTab := tabAt(s, m.cursor)

	switch msg.String() {
	case "esc":
		m.mode = listView
		m.current = nil
		m.status = ""
		return m, nil

	case "j", "down":
		return m.moveCursor(1), nil
	case "k", "up":
		return m.moveCursor(-1), nil
	case "d", "ctrl+d", "pgdown":
		return m.moveCursor(m.viewport.Height / 4), nil
	case "u", "ctrl+u", "pgup":
		return m.moveCursor(-m.viewport.Height / 4), nil
	case "g", "home":
		return m.moveCursor(-m.cursor), nil
	case "G", "end":
		return m.moveCursor(s.TabCount()), nil

	case "x", "delete":
		if !hasTab {
			return m, nil
		}
		if window.ID == nil {
			m.status = "This window has no id; tabs cannot be removed from it"
			return m, nil
		}
		return m, removeTab(m.store, s.ID, *window.ID, tab.Key())

	case "y":
		if hasTab {
			return m, copyURLs([]string{m.codec.Resume(tab.URL)})
		}
		return m, nil
	case "Y":
		return m, copyURLs(m.store.ExportURLs(s))

	case "r", "R":
		return m.requestRestore(s, nil, msg.String() == "R")
	case "w", "W":
		if !hasTab {
			return m, nil
		}
		if window.ID == nil {
			m.status = "This window has no id; restore the whole session instead"
			return m, nil
		}
		id := *window.ID
		return m.requestRestore(s, &id, msg.String() == "W")

	case "s":
		return m.startNaming(s)
	case "D":
		return m, deleteSession(m.store, s.ID)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) viewDetail() string {
	if m.current == nil {
		return ""
	}

	var footer strings.Builder
	_, tab, ok := tabAt(*m.current, m.cursor)
	switch {
	case m.status != "":
		footer.WriteString(statusStyle.Render(m.status))
	case ok && m.codec.IsSuspended(tab.URL):
		footer.WriteString(suspendedStyle.Render("suspended: " + m.codec.Resume(tab.URL)))
	case ok:
		footer.WriteString(urlStyle.Render(tab.URL))
	}
	footer.WriteString("\n")
	footer.WriteString(helpStyle.Render("j/k move • x remove tab • y copy url • r restore • w restore window • s save • esc back • ? help"))

	return m.viewport.View() + "\n" + footer.String()
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
