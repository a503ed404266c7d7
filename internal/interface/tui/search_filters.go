package tui

import (
	"strings"
	"time"

	"github.com/neilberkman/tabrider/internal/core/history"
)

// SearchFilters represents parsed filters from a search query
type SearchFilters struct {
	Query      string    // The actual search text
	AfterDate  time.Time // Only sessions after this date
	BeforeDate time.Time // Only sessions before this date
	HasAfter   bool
	HasBefore  bool
	SavedOnly  bool // Only tabs in named sessions
}

// ParseSearchQuery extracts filters from a search query string
// Supports:
//   - saved: - only saved sessions
//   - date:yesterday, date:last-week, date:2024-11-01 - sessions after the date
//   - after:yesterday, before:2024-11-01 - explicit date ranges
func ParseSearchQuery(query string) SearchFilters {
	return parseSearchQuery(query, time.Now())
}

func parseSearchQuery(query string, now time.Time) SearchFilters {
	filters := SearchFilters{}
	var queryParts []string

	for _, token := range strings.Fields(query) {
		switch {
		case token == "saved:" || token == "saved:true":
			filters.SavedOnly = true
			continue

		case strings.HasPrefix(token, "date:"), strings.HasPrefix(token, "after:"):
			dateStr := token[strings.Index(token, ":")+1:]
			if t, err := history.ParseDate(dateStr, now); err == nil {
				filters.AfterDate = t
				filters.HasAfter = true
				continue
			}

		case strings.HasPrefix(token, "before:"):
			if t, err := history.ParseDate(strings.TrimPrefix(token, "before:"), now); err == nil {
				filters.BeforeDate = t
				filters.HasBefore = true
				continue
			}
		}

		// Not a filter (or a date we could not read), keep it as text
		queryParts = append(queryParts, token)
	}

	filters.Query = strings.Join(queryParts, " ")
	return filters
}
