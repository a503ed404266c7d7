package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/tabrider/internal/core/db"
	"github.com/neilberkman/tabrider/internal/core/models"
	"github.com/neilberkman/tabrider/internal/core/search"
	"github.com/neilberkman/tabrider/internal/core/session"
	"github.com/neilberkman/tabrider/internal/core/suspend"
)

type viewMode int

const (
	listView viewMode = iota
	detailView
	searchView
	helpView
)

// Options wires the TUI to the core
type Options struct {
	Store  *session.Store
	DB     *db.DB
	Codec  *suspend.Codec
	Titler session.Titler
}

type Model struct {
	store  *session.Store
	db     *db.DB
	codec  *suspend.Codec
	titler session.Titler

	mode     viewMode
	prevMode viewMode
	list     list.Model
	viewport viewport.Model
	width    int
	height   int
	err      error
	status   string

	sessions []models.Session // Sorted newest first
	current  *models.Session
	cursor   int // Flat tab index within current

	// Naming a session before saving it
	naming    bool
	nameInput textinput.Model

	searchInput       textinput.Model
	searchResults     []search.TabResult
	searchSelectedIdx int
	searchViewOffset  int

	// Set when the user picks a session to reopen. The caller restores it
	// after the program exits, since restoring needs the terminal back.
	RestoreSessionID string
	RestoreWindowID  *int64
	RestoreSuspended bool
}

func New(opts Options) Model {
	query := textinput.New()
	query.Placeholder = "title, url, after:yesterday, saved:"
	query.CharLimit = 200
	query.Width = 60

	name := textinput.New()
	name.Placeholder = "session name"
	name.CharLimit = 100
	name.Width = 40

	codec := opts.Codec
	if codec == nil {
		codec = suspend.NewCodec("", nil)
	}

	return Model{
		store:       opts.Store,
		db:          opts.DB,
		codec:       codec,
		titler:      opts.Titler,
		mode:        listView,
		searchInput: query,
		nameInput:   name,
	}
}

func (m Model) Init() tea.Cmd {
	return loadSessions(m.store)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.sessions != nil {
			m.list.SetSize(msg.Width, msg.Height-1)
		}
		if m.current != nil {
			m.viewport = createViewport(m, msg.Width, msg.Height)
		}
		return m, nil

	case tea.MouseMsg:
		if m.mode == searchView {
			switch msg.Button {
			case tea.MouseButtonWheelDown:
				return handleSearchMouseWheel(m, true), nil
			case tea.MouseButtonWheelUp:
				return handleSearchMouseWheel(m, false), nil
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.naming {
			return m.updateNaming(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.mode == searchView {
				break
			}
			if m.mode == listView {
				return m, tea.Quit
			}
			m.mode = listView
			return m, nil
		case "?":
			if m.mode != searchView && m.mode != helpView {
				m.prevMode = m.mode
				m.mode = helpView
				return m, nil
			}
		}

		switch m.mode {
		case listView:
			return m.updateList(msg)
		case detailView:
			return m.updateDetail(msg)
		case searchView:
			return m.updateSearch(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case sessionsLoadedMsg:
		index := 0
		if m.sessions != nil {
			index = m.list.Index()
		}
		m.sessions = msg.sessions
		m.list = createSessionList(m, m.width, m.height)
		if index >= len(m.list.Items()) {
			index = len(m.list.Items()) - 1
		}
		if index > 0 {
			m.list.Select(index)
		}
		return m, nil

	case sessionUpdatedMsg:
		m.status = msg.status
		switch {
		case m.current == nil:
		case msg.session.ID == "":
			// Last tab removed; the session is gone
			m.current = nil
			m.mode = listView
		case msg.session.ID == m.current.ID:
			s := msg.session
			m.current = &s
			if n := s.TabCount(); m.cursor >= n {
				m.cursor = n - 1
			}
			keepCursorVisible(&m)
		}
		return m, loadSessions(m.store)

	case sessionDeletedMsg:
		m.status = msg.status
		if m.current != nil && m.current.ID == msg.id {
			m.current = nil
			m.mode = listView
		}
		return m, loadSessions(m.store)

	case searchResultsMsg:
		if msg.query == m.searchInput.Value() {
			m.searchResults = msg.results
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit"
	}

	var view string
	switch m.mode {
	case listView:
		view = m.viewList()
	case detailView:
		view = m.viewDetail()
	case searchView:
		view = m.viewSearch()
	case helpView:
		view = m.viewHelp()
	}

	if m.naming {
		view += "\n" + searchHeaderStyle.Render("Save as: ") + m.nameInput.View()
	}
	return view
}

// openSession switches to the detail view for s
func (m Model) openSession(s models.Session) Model {
	m.current = &s
	m.cursor = 0
	m.status = ""
	m.mode = detailView
	m.viewport = createViewport(m, m.width, m.height)
	return m
}

// selectedSession returns the session the user is acting on in the current view
func (m Model) selectedSession() (models.Session, bool) {
	if m.mode == detailView && m.current != nil {
		return *m.current, true
	}
	if item, ok := m.list.SelectedItem().(sessionListItem); ok {
		return item.session, true
	}
	return models.Session{}, false
}

func (m Model) startNaming(s models.Session) (Model, tea.Cmd) {
	m.naming = true
	m.nameInput.SetValue(s.Name)
	m.nameInput.CursorEnd()
	return m, m.nameInput.Focus()
}

func (m Model) updateNaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.naming = false
		m.nameInput.Blur()
		return m, nil
	case "enter":
		m.naming = false
		m.nameInput.Blur()
		s, ok := m.selectedSession()
		if !ok {
			return m, nil
		}
		return m, saveSession(m.store, s, m.nameInput.Value())
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// requestRestore records what to reopen and quits the program
func (m Model) requestRestore(s models.Session, windowID *int64, suspended bool) (tea.Model, tea.Cmd) {
	m.RestoreSessionID = s.ID
	m.RestoreWindowID = windowID
	m.RestoreSuspended = suspended
	return m, tea.Quit
}
