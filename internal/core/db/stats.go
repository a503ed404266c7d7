package db

import (
	"database/sql"
	"time"
)

// Stats represents database statistics
type Stats struct {
	TotalSessions   int
	SavedSessions   int
	HistorySessions int
	TotalWindows    int
	TotalTabs       int
	PinnedTabs      int
	SuspendedTabs   int
	CachedPreviews  int
	OldestSession   time.Time
	NewestSession   time.Time
}

// GetStats returns collection statistics. Tabs whose URL starts with
// suspendedPage are counted as suspended.
func (db *DB) GetStats(suspendedPage string) (*Stats, error) {
	stats := &Stats{}

	err := db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN name != '' THEN 1 ELSE 0 END), 0)
		FROM sessions
	`).Scan(&stats.TotalSessions, &stats.SavedSessions)
	if err != nil {
		return nil, err
	}
	stats.HistorySessions = stats.TotalSessions - stats.SavedSessions

	err = db.QueryRow("SELECT COUNT(*) FROM windows").Scan(&stats.TotalWindows)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN pinned THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN suspendedPage != '' AND SUBSTR(url, 1, LENGTH(suspendedPage)) = suspendedPage THEN 1 ELSE 0 END), 0)
		FROM tabs, (SELECT ? AS suspendedPage)
	`, suspendedPage).Scan(&stats.TotalTabs, &stats.PinnedTabs, &stats.SuspendedTabs)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow("SELECT COUNT(*) FROM previews").Scan(&stats.CachedPreviews)
	if err != nil {
		return nil, err
	}

	// Date range (only if we have sessions)
	if stats.TotalSessions > 0 {
		var oldest, newest sql.NullInt64
		err = db.QueryRow("SELECT MIN(date_ms), MAX(date_ms) FROM sessions").Scan(&oldest, &newest)
		if err != nil {
			return nil, err
		}
		if oldest.Valid {
			stats.OldestSession = time.UnixMilli(oldest.Int64).UTC()
		}
		if newest.Valid {
			stats.NewestSession = time.UnixMilli(newest.Int64).UTC()
		}
	}

	return stats, nil
}
