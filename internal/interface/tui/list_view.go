package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/tabrider/internal/core/history"
	"github.com/neilberkman/tabrider/internal/core/models"
)

type sessionGroup int

const (
	groupCurrent sessionGroup = iota
	groupRecent
	groupSaved
)

func (g sessionGroup) String() string {
	switch g {
	case groupCurrent:
		return "current"
	case groupRecent:
		return "recent"
	default:
		return "saved"
	}
}

type sessionListItem struct {
	session models.Session
	group   sessionGroup
	title   string
}

func (i sessionListItem) FilterValue() string {
	return i.title
}

func (i sessionListItem) Title() string {
	return i.title
}

func (i sessionListItem) Description() string {
	return fmt.Sprintf("%-7s | %s | %s", i.group, humanize.Time(i.session.Date), shortID(i.session.ID))
}

// Custom delegate to mark the current and saved sessions
type sessionDelegate struct {
	list.DefaultDelegate
}

func (d sessionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	s, ok := item.(sessionListItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := s.Title()
	desc := s.Description()

	switch {
	case index == m.Index():
		title = selectedItemStyle.Render("▸ " + title)
		desc = selectedItemStyle.Faint(true).Render("  " + desc)
	case s.group == groupCurrent:
		title = currentItemStyle.Render(title)
		desc = itemStyle.Render(desc)
	case s.group == groupSaved:
		title = savedItemStyle.Render(title)
		desc = itemStyle.Render(desc)
	default:
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// listItems lays sessions out as current, then recent history, then saved
func listItems(m Model) []list.Item {
	groups := history.Partition(m.sessions)
	items := make([]list.Item, 0, groups.Len())
	add := func(s models.Session, g sessionGroup) {
		items = append(items, sessionListItem{session: s, group: g, title: m.titler.Title(s)})
	}
	if groups.Current != nil {
		add(*groups.Current, groupCurrent)
	}
	for _, s := range groups.Recent {
		add(s, groupRecent)
	}
	for _, s := range groups.Saved {
		add(s, groupSaved)
	}
	return items
}

func createSessionList(m Model, width, height int) list.Model {
	delegate := sessionDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	l := list.New(listItems(m), delegate, width, height-1) // Reserve 1 line for help text only
	l.Title = ""
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false) // Dedicated search with /

	return l
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected, ok := m.list.SelectedItem().(sessionListItem)

	switch msg.String() {
	case "enter":
		if ok {
			return m.openSession(selected.session), nil
		}
		return m, nil

	case "/":
		m.mode = searchView
		m.status = ""
		return m, m.searchInput.Focus()

	case "s":
		if ok {
			return m.startNaming(selected.session)
		}
		return m, nil

	case "D":
		if ok {
			return m, deleteSession(m.store, selected.session.ID)
		}
		return m, nil

	case "r", "R":
		if ok {
			return m.requestRestore(selected.session, nil, msg.String() == "R")
		}
		return m, nil

	case "y":
		if ok {
			return m, copyURLs(m.store.ExportURLs(selected.session))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) viewList() string {
	helpText := "↑/k up • ↓/j down • enter open • / search • r restore • s save • q quit • ? more"
	if m.status != "" {
		helpText = statusStyle.Render(m.status) + "  " + helpStyle.Render(helpText)
	}

	if len(m.sessions) == 0 {
		return "No sessions yet. Run 'tabrider capture' or 'tabrider import'.\n\n" + helpText
	}

	return m.list.View() + "\n" + helpText
}

// shortID abbreviates long session ids for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
