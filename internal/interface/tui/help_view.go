package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = m.prevMode
	if m.mode == detailView && m.current == nil {
		m.mode = listView
	}
	return m, nil
}

func (m Model) viewHelp() string {
	help := `
tabrider - Help
═══════════════

SESSION LIST VIEW
─────────────────
  ↑/↓, j/k     Navigate sessions
  Enter        View session windows and tabs
  /            Search tabs
  r            Restore session (tabs load live)
  R            Restore session suspended
  s            Save (name) session
  D            Delete session
  y            Copy all URLs to clipboard
  ?            Show this help
  q            Quit

SESSION DETAIL VIEW
───────────────────
  j/k          Move between tabs
  d/u          Move half a page
  g/G          Jump to first/last tab
  x            Remove tab from session
  y / Y        Copy tab URL / all URLs
  r / R        Restore session live / suspended
  w / W        Restore this window live / suspended
  s            Save (name) session
  D            Delete session
  esc          Back to session list

SEARCH VIEW
───────────
  Type         Enter search query (live)
  Enter        Open session at the selected tab
  ↑/↓          Navigate results
  esc          Back to session list

  Filters: saved:  after:<date>  before:<date>  date:<date>

Press any key to go back
`

	return helpStyle.Render(help)
}
