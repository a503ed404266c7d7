// Package gssessions reads session history exported from a tab-suspension
// extension: either the JSON dump of its session store or the plain text
// URL list written by its "export session" action.
package gssessions

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Format is the detected export format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParsedFile represents a fully parsed export file
type ParsedFile struct {
	Format    Format
	Sessions  []ParsedSession
	FilePath  string
	FileSize  int64
	FileMtime time.Time
}

// ParsedSession is one session as stored by the extension
type ParsedSession struct {
	ID      string
	Name    string
	Date    time.Time
	Windows []ParsedWindow
}

// ParsedWindow is one window of a parsed session
type ParsedWindow struct {
	ID   *int64
	Tabs []ParsedTab
}

// ParsedTab is one tab of a parsed window
type ParsedTab struct {
	ID         *int64
	URL        string
	Title      string
	Pinned     bool
	FavIconURL string
}

// rawSession mirrors the extension's stored record. Ids and dates have been
// written as both numbers and strings over time.
type rawSession struct {
	SessionID json.RawMessage `json:"sessionId,omitempty"`
	ID        json.RawMessage `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Date      json.RawMessage `json:"date,omitempty"`
	Windows   []rawWindow     `json:"windows"`
}

type rawWindow struct {
	ID   json.RawMessage `json:"id,omitempty"`
	Tabs []rawTab        `json:"tabs"`
}

type rawTab struct {
	ID         json.RawMessage `json:"id,omitempty"`
	URL        string          `json:"url"`
	Title      string          `json:"title,omitempty"`
	Pinned     bool            `json:"pinned,omitempty"`
	FavIconURL string          `json:"favIconUrl,omitempty"`
}

// ParseFile parses an export file, detecting its format from the content
func ParseFile(path string) (parsed *ParsedFile, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	parsed = &ParsedFile{
		FilePath:  path,
		FileSize:  info.Size(),
		FileMtime: info.ModTime(),
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		parsed.Format = FormatJSON
		parsed.Sessions, err = parseJSON(trimmed)
	} else {
		parsed.Format = FormatText
		var s *ParsedSession
		s, err = parseText(data, info.ModTime())
		if s != nil {
			// The text export carries no id; derive a stable one from the file name
			base := filepath.Base(path)
			s.ID = strings.TrimSuffix(base, filepath.Ext(base))
			parsed.Sessions = []ParsedSession{*s}
		}
	}
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func parseJSON(data []byte) ([]ParsedSession, error) {
	var raws []rawSession
	if data[0] == '{' {
		// Either a single session or {"sessions": [...]}
		var wrapper struct {
			Sessions []rawSession `json:"sessions"`
		}
		if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Sessions != nil {
			raws = wrapper.Sessions
		} else {
			var single rawSession
			if err := json.Unmarshal(data, &single); err != nil {
				return nil, fmt.Errorf("failed to parse JSON: %w", err)
			}
			raws = []rawSession{single}
		}
	} else if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	sessions := make([]ParsedSession, 0, len(raws))
	for i, raw := range raws {
		s, err := convertSession(raw)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func convertSession(raw rawSession) (ParsedSession, error) {
	id := rawString(raw.SessionID)
	if id == "" {
		id = rawString(raw.ID)
	}
	s := ParsedSession{ID: id, Name: strings.TrimSpace(raw.Name)}

	date, err := parseDate(raw.Date)
	if err != nil {
		return ParsedSession{}, err
	}
	s.Date = date

	for _, rw := range raw.Windows {
		w := ParsedWindow{ID: rawInt(rw.ID)}
		for _, rt := range rw.Tabs {
			if rt.URL == "" {
				continue
			}
			w.Tabs = append(w.Tabs, ParsedTab{
				ID:         rawInt(rt.ID),
				URL:        rt.URL,
				Title:      rt.Title,
				Pinned:     rt.Pinned,
				FavIconURL: rt.FavIconURL,
			})
		}
		// Windows left without tabs are dropped
		if len(w.Tabs) > 0 {
			s.Windows = append(s.Windows, w)
		}
	}
	return s, nil
}

// parseText reads one URL per line into a single-window session
func parseText(data []byte, mtime time.Time) (*ParsedSession, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var tabs []ParsedTab
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tabs = append(tabs, ParsedTab{URL: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if len(tabs) == 0 {
		return nil, fmt.Errorf("no URLs found")
	}
	return &ParsedSession{Date: mtime, Windows: []ParsedWindow{{Tabs: tabs}}}, nil
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func rawInt(raw json.RawMessage) *int64 {
	s := rawString(raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDate(raw json.RawMessage) (time.Time, error) {
	s := rawString(raw)
	if s == "" {
		return time.Time{}, nil
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return time.UnixMilli(int64(ms)).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC1123Z, time.UnixDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
