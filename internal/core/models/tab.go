package models

import (
	"fmt"
	"strconv"
)

// Tab is one captured browser tab
type Tab struct {
	ID      *int64 `json:"id,omitempty"` // Only set for tabs captured from an open window
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Pinned  bool   `json:"pinned,omitempty"`
	Favicon string `json:"favIconUrl,omitempty"`
}

// SpecialFunc reports whether the host environment forbids suspending a tab
type SpecialFunc func(tab Tab) bool

// Clone returns a copy that does not share the id pointer
func (t Tab) Clone() Tab {
	if t.ID != nil {
		id := *t.ID
		t.ID = &id
	}
	return t
}

// Key returns the identity used to address the tab for removal
func (t Tab) Key() TabKey {
	if t.ID != nil {
		return IDKey(*t.ID)
	}
	return URLKey(t.URL)
}

// TabKeyKind distinguishes the two ways a stored tab can be addressed
type TabKeyKind int

const (
	// TabKeyID addresses a tab by its numeric browser id
	TabKeyID TabKeyKind = iota
	// TabKeyURL addresses a tab that was stored without an id
	TabKeyURL
)

// TabKey identifies a tab inside a window: either Identified(id) or URLKeyed(url)
type TabKey struct {
	Kind TabKeyKind
	ID   int64
	URL  string
}

// IDKey builds an Identified key
func IDKey(id int64) TabKey {
	return TabKey{Kind: TabKeyID, ID: id}
}

// URLKey builds a URL-keyed key
func URLKey(url string) TabKey {
	return TabKey{Kind: TabKeyURL, URL: url}
}

// ParseTabKey turns an address string from a UI into a key.
// Integers become Identified keys, anything else is treated as a URL.
func ParseTabKey(s string) TabKey {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IDKey(id)
	}
	return URLKey(s)
}

// Matches reports whether tab is addressed by this key
func (k TabKey) Matches(tab Tab) bool {
	switch k.Kind {
	case TabKeyID:
		return tab.ID != nil && *tab.ID == k.ID
	case TabKeyURL:
		return tab.URL == k.URL
	default:
		return false
	}
}

func (k TabKey) String() string {
	if k.Kind == TabKeyID {
		return strconv.FormatInt(k.ID, 10)
	}
	return k.URL
}

// GoString is used by %#v in test failures
func (k TabKey) GoString() string {
	if k.Kind == TabKeyID {
		return fmt.Sprintf("IDKey(%d)", k.ID)
	}
	return fmt.Sprintf("URLKey(%q)", k.URL)
}

// Int64 is a helper for building optional ids in literals
func Int64(v int64) *int64 {
	return &v
}
