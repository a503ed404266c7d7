package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/neilberkman/tabrider/internal/core/history"
	"github.com/neilberkman/tabrider/internal/core/models"
	"github.com/neilberkman/tabrider/internal/core/suspend"
	"github.com/neilberkman/tabrider/internal/logx"
)

var (
	// ErrNotFound is returned when a session, window or tab does not exist
	ErrNotFound = errors.New("not found")
	// ErrEmptyName is returned when saving a session under a blank name
	ErrEmptyName = errors.New("session name is empty")
	// ErrDuplicateSession is returned when adding a session whose id is taken
	ErrDuplicateSession = errors.New("session already exists")
)

// Persister is the durable owner of the session collection
type Persister interface {
	LoadSessions(ctx context.Context) ([]models.Session, error)
	SaveSessions(ctx context.Context, sessions []models.Session) error
	ClearPreviewCache(ctx context.Context) error
}

// EmptySessionPolicy decides what happens to a session whose last window was removed
type EmptySessionPolicy int

const (
	// CascadeDelete removes the session along with its last window
	CascadeDelete EmptySessionPolicy = iota
	// KeepEmpty leaves a session with no windows in the collection
	KeepEmpty
)

// Store runs read-modify-write operations over the persisted collection.
// It never caches: every call starts from a fresh load.
type Store struct {
	persist Persister
	codec   *suspend.Codec
	policy  EmptySessionPolicy
	mu      sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithEmptySessionPolicy overrides the default CascadeDelete policy
func WithEmptySessionPolicy(p EmptySessionPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// WithCodec sets the codec used to resolve suspended URLs on export
func WithCodec(c *suspend.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// NewStore creates a store backed by p
func NewStore(p Persister, opts ...Option) *Store {
	s := &Store{persist: p, policy: CascadeDelete}
	for _, opt := range opts {
		opt(s)
	}
	if s.codec == nil {
		s.codec = suspend.NewCodec("", nil)
	}
	return s
}

func (s *Store) load(ctx context.Context) ([]models.Session, error) {
	sessions, err := s.persist.LoadSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	return sessions, nil
}

func (s *Store) save(ctx context.Context, sessions []models.Session) error {
	if err := s.persist.SaveSessions(ctx, sessions); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	return nil
}

// ListSessions returns the stored collection in stored order
func (s *Store) ListSessions(ctx context.Context) ([]models.Session, error) {
	return s.load(ctx)
}

// GetSessionByID returns the session with the given id
func (s *Store) GetSessionByID(ctx context.Context, id string) (models.Session, error) {
	sessions, err := s.load(ctx)
	if err != nil {
		return models.Session{}, err
	}
	i := indexOf(sessions, id)
	if i < 0 {
		return models.Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sessions[i], nil
}

// GetWindowFromSession finds a window of session by its browser id
func GetWindowFromSession(windowID int64, session models.Session) (models.Window, bool) {
	if i := windowIndex(session, windowID); i >= 0 {
		return session.Windows[i], true
	}
	return models.Window{}, false
}

// RemoveTabFromSessionHistory removes the first tab matching key from the
// given window, drops the window if it is left empty, and persists the
// collection. The returned session reflects the change; under CascadeDelete
// a session left without windows is deleted and returned with no windows.
func (s *Store) RemoveTabFromSessionHistory(ctx context.Context, sessionID string, windowID int64, key models.TabKey) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logx.WithSession(ctx, sessionID).With("window_id", windowID, "tab", key.String())

	sessions, err := s.load(ctx)
	if err != nil {
		return models.Session{}, err
	}

	si := indexOf(sessions, sessionID)
	if si < 0 {
		return models.Session{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	session := sessions[si].Clone()

	wi := windowIndex(session, windowID)
	if wi < 0 {
		return models.Session{}, fmt.Errorf("window %d in session %s: %w", windowID, sessionID, ErrNotFound)
	}
	window := &session.Windows[wi]

	ti := -1
	for i, t := range window.Tabs {
		if key.Matches(t) {
			ti = i
			break
		}
	}
	if ti < 0 {
		return models.Session{}, fmt.Errorf("tab %s in window %d: %w", key, windowID, ErrNotFound)
	}

	window.Tabs = append(window.Tabs[:ti], window.Tabs[ti+1:]...)
	if len(window.Tabs) == 0 {
		session.Windows = append(session.Windows[:wi], session.Windows[wi+1:]...)
		log.Debug("removed emptied window")
	}

	if len(session.Windows) == 0 && s.policy == CascadeDelete {
		sessions = append(sessions[:si], sessions[si+1:]...)
		log.Debug("removed emptied session")
	} else {
		sessions[si] = session
	}

	if err := s.save(ctx, sessions); err != nil {
		return models.Session{}, err
	}
	log.Debug("removed tab")
	return session, nil
}

// SaveSession names the session, which marks it saved, and persists it.
// A session not yet in the store is appended.
func (s *Store) SaveSession(ctx context.Context, name string, session models.Session) (models.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Session{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return models.Session{}, err
	}

	session = session.Clone()
	session.Name = name
	if i := indexOf(sessions, session.ID); i >= 0 {
		sessions[i] = session
	} else {
		sessions = append(sessions, session)
	}

	if err := s.save(ctx, sessions); err != nil {
		return models.Session{}, err
	}
	logx.WithSession(ctx, session.ID).Debug("saved session", "name", name)
	return session, nil
}

// AddSession appends a newly captured session
func (s *Store) AddSession(ctx context.Context, session models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(sessions, session.ID) >= 0 {
		return fmt.Errorf("session %s: %w", session.ID, ErrDuplicateSession)
	}

	sessions = append(sessions, session.Clone())
	if err := s.save(ctx, sessions); err != nil {
		return err
	}
	logx.WithSession(ctx, session.ID).Debug("added session", "windows", len(session.Windows), "tabs", session.TabCount())
	return nil
}

// ImportSessions appends sessions whose ids are not yet stored, in one write.
// Sessions without windows are skipped. It returns the number added.
func (s *Store) ImportSessions(ctx context.Context, incoming []models.Session) (int, error) {
	for i := range incoming {
		if err := incoming[i].Validate(); err != nil {
			return 0, fmt.Errorf("invalid session at position %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(sessions)+len(incoming))
	for _, session := range sessions {
		seen[session.ID] = true
	}

	added := 0
	for _, session := range incoming {
		if seen[session.ID] || len(session.Windows) == 0 {
			continue
		}
		seen[session.ID] = true
		sessions = append(sessions, session.Clone())
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if err := s.save(ctx, sessions); err != nil {
		return 0, err
	}
	logx.Ctx(ctx).Debug("imported sessions", "added", added, "skipped", len(incoming)-added)
	return added, nil
}

// DeleteSession removes one session, saved or not
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(sessions, id)
	if i < 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}

	sessions = append(sessions[:i], sessions[i+1:]...)
	if err := s.save(ctx, sessions); err != nil {
		return err
	}
	logx.WithSession(ctx, id).Debug("deleted session")
	return nil
}

// ClearHistory deletes every unnamed session and drops the preview cache.
// Saved sessions are untouched. It returns the number of sessions removed.
func (s *Store) ClearHistory(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	kept := make([]models.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.IsSaved() {
			kept = append(kept, session)
		}
	}
	removed := len(sessions) - len(kept)

	if err := s.save(ctx, kept); err != nil {
		return 0, err
	}
	if err := s.persist.ClearPreviewCache(ctx); err != nil {
		return removed, fmt.Errorf("failed to clear preview cache: %w", err)
	}
	logx.Ctx(ctx).Info("cleared history", "removed", removed)
	return removed, nil
}

// PruneHistory keeps the most recent unnamed sessions, up to keep, and deletes the
// rest. Saved sessions are never pruned; keep <= 0 disables pruning.
func (s *Store) PruneHistory(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	var unnamed []models.Session
	for _, session := range sessions {
		if !session.IsSaved() {
			unnamed = append(unnamed, session)
		}
	}
	if len(unnamed) <= keep {
		return 0, nil
	}

	// Rank unnamed sessions by recency; the oldest beyond keep go.
	doomed := make(map[string]bool)
	for _, session := range history.Sort(unnamed)[keep:] {
		doomed[session.ID] = true
	}

	kept := make([]models.Session, 0, len(sessions)-len(doomed))
	for _, session := range sessions {
		if !doomed[session.ID] {
			kept = append(kept, session)
		}
	}

	if err := s.save(ctx, kept); err != nil {
		return 0, err
	}
	logx.Ctx(ctx).Info("pruned history", "removed", len(doomed), "kept", keep)
	return len(doomed), nil
}

// ExportURLs lists the session's tab URLs in order, resolving suspended
// URLs to the pages they stand for.
func (s *Store) ExportURLs(session models.Session) []string {
	var urls []string
	for _, w := range session.Windows {
		for _, t := range w.Tabs {
			urls = append(urls, s.codec.Resume(t.URL))
		}
	}
	return urls
}

func indexOf(sessions []models.Session, id string) int {
	for i, s := range sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func windowIndex(session models.Session, windowID int64) int {
	for i, w := range session.Windows {
		if w.ID != nil && *w.ID == windowID {
			return i
		}
	}
	return -1
}
