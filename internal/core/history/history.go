// Package history orders the session collection for display.
package history

import (
	"sort"
	"time"

	"github.com/neilberkman/tabrider/internal/core/models"
)

// Groups is the display partition of a sorted collection
type Groups struct {
	Current *models.Session  // Most recent unnamed session, if any
	Recent  []models.Session // Remaining unnamed sessions, most recent first
	Saved   []models.Session // Named sessions, most recent first
}

// Sort returns a copy of sessions ordered by date, most recent first.
// Sessions with equal dates keep their stored order.
func Sort(sessions []models.Session) []models.Session {
	sorted := make([]models.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

// Partition splits a sorted collection in a single pass
func Partition(sorted []models.Session) Groups {
	var g Groups
	for i := range sorted {
		s := sorted[i]
		switch {
		case s.IsSaved():
			g.Saved = append(g.Saved, s)
		case g.Current == nil:
			g.Current = &s
		default:
			g.Recent = append(g.Recent, s)
		}
	}
	return g
}

// Filter keeps sessions dated within [after, before]. A zero bound is open.
func Filter(sessions []models.Session, after, before time.Time) []models.Session {
	var out []models.Session
	for _, s := range sessions {
		if !after.IsZero() && s.Date.Before(after) {
			continue
		}
		if !before.IsZero() && s.Date.After(before) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Len returns the number of sessions across all groups
func (g Groups) Len() int {
	n := len(g.Recent) + len(g.Saved)
	if g.Current != nil {
		n++
	}
	return n
}
