package search

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/neilberkman/tabrider/internal/core/db"
)

// TabResult is one stored tab matching a query
type TabResult struct {
	SessionID   string
	SessionName string
	SessionDate time.Time
	WindowIndex int
	WindowID    *int64
	TabID       *int64
	URL         string
	Title       string
	Snippet     string
}

// Default sort order for search results (most recent session first)
const defaultOrderBy = "s.date_ms DESC, w.position ASC, t.position ASC"

// DefaultLimit caps the number of results
const DefaultLimit = 200

// SearchTabs finds stored tabs whose title or URL matches query.
// Results are ordered by session date (most recent first), then tab order.
func SearchTabs(database *db.DB, query string, limit int) ([]TabResult, error) {
	// Validate query
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	// FTS5 treats these as syntax; URLs and hostnames are full of them.
	// Fall back to LIKE for exact substring matching.
	hasSpecialChars := strings.ContainsAny(query, "-_@#$%&:/.?=")

	var rows *sql.Rows
	var err error

	if hasSpecialChars {
		rows, err = database.Query(fmt.Sprintf(`
			SELECT
				s.id, s.name, s.date_ms, w.position, w.window_id,
				t.tab_id, t.url, t.title, f.title
			FROM tabs t
			JOIN tabs_fts f ON f.rowid = t.id
			JOIN windows w ON w.id = t.window_row
			JOIN sessions s ON s.id = w.session_id
			WHERE f.url LIKE '%%' || ? || '%%' OR f.title LIKE '%%' || ? || '%%'
			ORDER BY %s
			LIMIT ?
		`, defaultOrderBy), query, query, limit)
	} else {
		rows, err = database.Query(fmt.Sprintf(`
			SELECT
				s.id, s.name, s.date_ms, w.position, w.window_id,
				t.tab_id, t.url, t.title,
				snippet(tabs_fts, -1, '', '', '...', 16) as snippet
			FROM tabs_fts
			JOIN tabs t ON tabs_fts.rowid = t.id
			JOIN windows w ON w.id = t.window_row
			JOIN sessions s ON s.id = w.session_id
			WHERE tabs_fts MATCH ?
			ORDER BY %s
			LIMIT ?
		`, defaultOrderBy), query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []TabResult
	for rows.Next() {
		var r TabResult
		var dateMs int64
		var windowID, tabID sql.NullInt64
		if err := rows.Scan(
			&r.SessionID,
			&r.SessionName,
			&dateMs,
			&r.WindowIndex,
			&windowID,
			&tabID,
			&r.URL,
			&r.Title,
			&r.Snippet,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.SessionDate = time.UnixMilli(dateMs).UTC()
		if windowID.Valid {
			id := windowID.Int64
			r.WindowID = &id
		}
		if tabID.Valid {
			id := tabID.Int64
			r.TabID = &id
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return results, nil
}
