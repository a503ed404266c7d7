package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Session is one point-in-time capture of a set of browser windows
type Session struct {
	ID      string    `json:"id"`
	Name    string    `json:"name,omitempty"` // Non-empty marks the session as saved
	Date    time.Time `json:"date"`
	Windows []Window  `json:"windows"`
}

// Window is an ordered set of tabs captured together
type Window struct {
	ID   *int64 `json:"id,omitempty"`
	Tabs []Tab  `json:"tabs"`
}

// IsSaved reports whether the user has named (saved) the session
func (s *Session) IsSaved() bool {
	return s.Name != ""
}

// TabCount returns the number of tabs across all windows
func (s *Session) TabCount() int {
	n := 0
	for _, w := range s.Windows {
		n += len(w.Tabs)
	}
	return n
}

// Validate checks if the session has required fields
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	if s.Date.IsZero() {
		return errors.New("session date is required")
	}
	for i, w := range s.Windows {
		if len(w.Tabs) == 0 {
			return fmt.Errorf("window %d has no tabs", i)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate windows and tabs freely
func (s Session) Clone() Session {
	out := s
	out.Windows = make([]Window, len(s.Windows))
	for i, w := range s.Windows {
		cw := Window{Tabs: make([]Tab, len(w.Tabs))}
		if w.ID != nil {
			id := *w.ID
			cw.ID = &id
		}
		for j, t := range w.Tabs {
			cw.Tabs[j] = t.Clone()
		}
		out.Windows[i] = cw
	}
	return out
}

// UnmarshalJSON accepts the date either as RFC 3339 or as a millisecond epoch,
// which is how the extension stores it
func (s *Session) UnmarshalJSON(data []byte) error {
	type alias Session
	var raw struct {
		alias
		Date json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Session(raw.alias)

	date, err := parseDate(raw.Date)
	if err != nil {
		return fmt.Errorf("session %s: %w", s.ID, err)
	}
	s.Date = date
	return nil
}

func parseDate(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if ms, err := strconv.ParseInt(str, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		t, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", str, err)
		}
		return t, nil
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("invalid date %s", string(raw))
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}
