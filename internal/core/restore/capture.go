package restore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/neilberkman/tabrider/internal/core/models"
	"github.com/neilberkman/tabrider/internal/logx"
)

// Capture records the browser's current layout as a new unnamed session.
// Windows are ordered by window id and tabs by their index.
func (r *Restorer) Capture(ctx context.Context) (models.Session, error) {
	return capture(ctx, r.browser, time.Now, uuid.NewString)
}

func capture(ctx context.Context, browser Browser, now func() time.Time, newID func() string) (models.Session, error) {
	tabs, err := browser.QueryTabs(ctx, TabFilter{})
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query tabs: %w", err)
	}

	byWindow := make(map[int64][]TabInfo)
	var windowIDs []int64
	for _, t := range tabs {
		if _, ok := byWindow[t.WindowID]; !ok {
			windowIDs = append(windowIDs, t.WindowID)
		}
		byWindow[t.WindowID] = append(byWindow[t.WindowID], t)
	}
	sort.Slice(windowIDs, func(i, j int) bool { return windowIDs[i] < windowIDs[j] })

	session := models.Session{
		ID:      newID(),
		Date:    now().UTC().Truncate(time.Millisecond),
		Windows: make([]models.Window, 0, len(windowIDs)),
	}
	for _, wid := range windowIDs {
		infos := byWindow[wid]
		sort.SliceStable(infos, func(i, j int) bool { return infos[i].Index < infos[j].Index })

		w := models.Window{ID: models.Int64(wid), Tabs: make([]models.Tab, 0, len(infos))}
		for _, info := range infos {
			tab := models.Tab{URL: info.URL, Title: info.Title, Pinned: info.Pinned}
			if id, err := strconv.ParseInt(string(info.Handle), 10, 64); err == nil {
				tab.ID = models.Int64(id)
			}
			w.Tabs = append(w.Tabs, tab)
		}
		session.Windows = append(session.Windows, w)
	}

	logx.WithSession(ctx, session.ID).Info("captured session", "windows", len(session.Windows), "tabs", session.TabCount())
	return session, nil
}
