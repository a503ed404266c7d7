package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neilberkman/tabrider/internal/core/models"
)

// LoadSessions returns the full stored collection in its stored order
func (db *DB) LoadSessions(ctx context.Context) ([]models.Session, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, date_ms
		FROM sessions
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sessions := []models.Session{}
	index := make(map[string]int)
	for rows.Next() {
		var s models.Session
		var dateMs int64
		if err := rows.Scan(&s.ID, &s.Name, &dateMs); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Date = time.UnixMilli(dateMs).UTC()
		s.Windows = []models.Window{}
		index[s.ID] = len(sessions)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	_ = rows.Close()

	// window row id -> (session index, window index)
	type windowRef struct{ session, window int }
	windowRefs := make(map[int64]windowRef)

	wrows, err := db.conn.QueryContext(ctx, `
		SELECT w.id, w.session_id, w.window_id
		FROM windows w
		JOIN sessions s ON s.id = w.session_id
		ORDER BY s.position ASC, w.position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query windows: %w", err)
	}
	defer func() { _ = wrows.Close() }()

	for wrows.Next() {
		var rowID int64
		var sessionID string
		var windowID sql.NullInt64
		if err := wrows.Scan(&rowID, &sessionID, &windowID); err != nil {
			return nil, fmt.Errorf("failed to scan window: %w", err)
		}
		si, ok := index[sessionID]
		if !ok {
			continue
		}
		w := models.Window{Tabs: []models.Tab{}}
		if windowID.Valid {
			w.ID = models.Int64(windowID.Int64)
		}
		windowRefs[rowID] = windowRef{session: si, window: len(sessions[si].Windows)}
		sessions[si].Windows = append(sessions[si].Windows, w)
	}
	if err := wrows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating windows: %w", err)
	}
	_ = wrows.Close()

	trows, err := db.conn.QueryContext(ctx, `
		SELECT window_row, tab_id, url, title, pinned, favicon
		FROM tabs
		ORDER BY window_row ASC, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tabs: %w", err)
	}
	defer func() { _ = trows.Close() }()

	for trows.Next() {
		var windowRow int64
		var tabID sql.NullInt64
		var t models.Tab
		if err := trows.Scan(&windowRow, &tabID, &t.URL, &t.Title, &t.Pinned, &t.Favicon); err != nil {
			return nil, fmt.Errorf("failed to scan tab: %w", err)
		}
		ref, ok := windowRefs[windowRow]
		if !ok {
			continue
		}
		if tabID.Valid {
			t.ID = models.Int64(tabID.Int64)
		}
		w := &sessions[ref.session].Windows[ref.window]
		w.Tabs = append(w.Tabs, t)
	}

	return sessions, trows.Err()
}

// SaveSessions overwrites the stored collection with sessions, in order.
// The whole write happens in one transaction; on error nothing changes.
func (db *DB) SaveSessions(ctx context.Context, sessions []models.Session) error {
	seen := make(map[string]bool, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid session at position %d: %w", i, err)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate session id %s", s.ID)
		}
		seen[s.ID] = true
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM tabs_fts`,
		`DELETE FROM tabs`,
		`DELETE FROM windows`,
		`DELETE FROM sessions`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear collection: %w", err)
		}
	}

	for pos, s := range sessions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, position, name, date_ms)
			VALUES (?, ?, ?, ?)
		`, s.ID, pos, s.Name, s.Date.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert session %s: %w", s.ID, err)
		}

		for wpos, w := range s.Windows {
			var windowID sql.NullInt64
			if w.ID != nil {
				windowID = sql.NullInt64{Int64: *w.ID, Valid: true}
			}
			res, err := tx.ExecContext(ctx, `
				INSERT INTO windows (session_id, position, window_id)
				VALUES (?, ?, ?)
			`, s.ID, wpos, windowID)
			if err != nil {
				return fmt.Errorf("failed to insert window %d of session %s: %w", wpos, s.ID, err)
			}
			windowRow, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get window row: %w", err)
			}

			for tpos, t := range w.Tabs {
				var tabID sql.NullInt64
				if t.ID != nil {
					tabID = sql.NullInt64{Int64: *t.ID, Valid: true}
				}
				res, err := tx.ExecContext(ctx, `
					INSERT INTO tabs (window_row, position, tab_id, url, title, pinned, favicon)
					VALUES (?, ?, ?, ?, ?, ?, ?)
				`, windowRow, tpos, tabID, t.URL, t.Title, t.Pinned, t.Favicon)
				if err != nil {
					return fmt.Errorf("failed to insert tab %s: %w", t.URL, err)
				}
				tabRow, err := res.LastInsertId()
				if err != nil {
					return fmt.Errorf("failed to get tab row: %w", err)
				}
				indexed := t.URL
				if db.indexURL != nil {
					indexed = db.indexURL(t.URL)
				}
				_, err = tx.ExecContext(ctx, `
					INSERT INTO tabs_fts (rowid, title, url) VALUES (?, ?, ?)
				`, tabRow, t.Title, indexed)
				if err != nil {
					return fmt.Errorf("failed to index tab %s: %w", t.URL, err)
				}
			}
		}
	}

	return tx.Commit()
}

// SavePreview stores a page thumbnail for url. Thumbnails are produced by the
// extension's suspended page, which writes them through this call; tabrider
// itself only counts and clears them.
func (db *DB) SavePreview(ctx context.Context, url string, image []byte) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO previews (url, image, created_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(url) DO UPDATE SET
			image = excluded.image,
			created_at = CURRENT_TIMESTAMP
	`, url, image)
	return err
}

// ClearPreviewCache drops every stored page thumbnail
func (db *DB) ClearPreviewCache(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM previews`); err != nil {
		return fmt.Errorf("failed to clear previews: %w", err)
	}
	return nil
}
