package session

import (
	"fmt"
	"time"

	"github.com/cbroglie/mustache"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/tabrider/internal/core/models"
)

// Titler renders the display title of a session
type Titler struct {
	SavedTemplate   string
	HistoryTemplate string
	Now             func() time.Time
}

// Title renders a saved session from SavedTemplate and a history session
// from HistoryTemplate. A broken template falls back to a plain title.
func (t Titler) Title(s models.Session) string {
	now := time.Now()
	if t.Now != nil {
		now = t.Now()
	}

	windows := len(s.Windows)
	tabs := s.TabCount()
	humanDate := humanize.RelTime(s.Date, now, "ago", "from now")

	templateData := map[string]interface{}{
		"name":         s.Name,
		"id":           s.ID,
		"windows":      windows,
		"window_label": plural(windows, "window"),
		"tabs":         tabs,
		"tab_label":    plural(tabs, "tab"),
		"human_date":   humanDate,
		"date":         s.Date.Local().Format("2006-01-02 15:04"),
	}

	tmpl := t.HistoryTemplate
	if s.IsSaved() {
		tmpl = t.SavedTemplate
	}

	title, err := mustache.Render(tmpl, templateData)
	if err != nil || tmpl == "" {
		// Fall back to a simple title if the template fails
		if s.IsSaved() {
			return fmt.Sprintf("%s (%d %s)", s.Name, tabs, plural(tabs, "tab"))
		}
		return fmt.Sprintf("%d %s: %s", tabs, plural(tabs, "tab"), humanDate)
	}
	return title
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
