package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long: `Display statistics about the tabrider database.

Shows session, window and tab counts, how many tabs are suspended or
pinned, the date range of stored sessions, and storage info.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.db.GetStats(a.codec.Page())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Println("Database Statistics")
	fmt.Println("===================")
	fmt.Println()

	fmt.Printf("Total Sessions:    %d\n", stats.TotalSessions)
	fmt.Printf("  Saved:           %d\n", stats.SavedSessions)
	fmt.Printf("  History:         %d\n", stats.HistorySessions)
	fmt.Printf("Total Windows:     %d\n", stats.TotalWindows)
	fmt.Printf("Total Tabs:        %d\n", stats.TotalTabs)
	fmt.Printf("  Suspended:       %d\n", stats.SuspendedTabs)
	fmt.Printf("  Pinned:          %d\n", stats.PinnedTabs)
	fmt.Printf("Cached Previews:   %d\n", stats.CachedPreviews)
	fmt.Println()

	if stats.TotalSessions > 0 {
		fmt.Printf("Oldest Session:    %s (%s)\n", stats.OldestSession.Format("Jan 2, 2006 3:04 PM"), humanize.Time(stats.OldestSession))
		fmt.Printf("Newest Session:    %s (%s)\n", stats.NewestSession.Format("Jan 2, 2006 3:04 PM"), humanize.Time(stats.NewestSession))
		fmt.Println()
	}

	fileInfo, err := os.Stat(dbPath)
	if err != nil {
		return fmt.Errorf("failed to stat database file: %w", err)
	}

	fmt.Printf("Database Location: %s\n", dbPath)
	fmt.Printf("Database Size:     %s\n", humanize.Bytes(uint64(fileInfo.Size())))

	return nil
}
