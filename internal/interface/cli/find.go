package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tabrider/internal/core/search"
)

var findLimit int

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search tab titles and URLs across all sessions",
	Long: `Full-text search over every stored tab. Suspended tabs are matched on
their original URL.

Queries that look like URLs or paths (containing characters such as / . : ?)
fall back to substring matching.

Examples:
  tabrider find golang
  tabrider find github.com/neilberkman
  tabrider find "release notes" --limit 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().IntVarP(&findLimit, "limit", "n", search.DefaultLimit, "Maximum number of results")
}

func runFind(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")
	results, err := search.SearchTabs(a.db, query, findLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Printf("No tabs found matching: %s\n", query)
		return nil
	}

	fmt.Printf("Found %d %s matching %q:\n\n", len(results), pluralize(len(results), "tab"), query)
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.URL
		}
		session := shortID(r.SessionID)
		if r.SessionName != "" {
			session += " " + r.SessionName
		}
		fmt.Printf("%d. %s\n", i+1, truncate(title, 100))
		fmt.Printf("   %s\n", r.URL)
		window := fmt.Sprintf("window %d", r.WindowIndex+1)
		if r.WindowID != nil {
			window += fmt.Sprintf(" (id %d)", *r.WindowID)
		}
		fmt.Printf("   session %s, %s, %s\n", session, window, r.SessionDate.Format("2006-01-02 15:04"))
		if r.Snippet != "" && r.Snippet != r.Title {
			fmt.Printf("   %s\n", strings.ReplaceAll(r.Snippet, "\n", " "))
		}
		fmt.Println()
	}
	return nil
}
