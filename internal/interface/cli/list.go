package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/tabrider/internal/core/history"
	"github.com/neilberkman/tabrider/internal/core/models"
)

var (
	listLimit  int
	listSince  string
	listBefore string
	listSaved  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Long: `List stored sessions, most recent first, grouped into the current
session, recent history, and saved sessions.

Examples:
  tabrider list
  tabrider list --saved
  tabrider list --since yesterday
  tabrider list --since 2024-11-01 --before "last week"`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of history sessions to display")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only sessions after this date (natural language allowed)")
	listCmd.Flags().StringVar(&listBefore, "before", "", "Only sessions before this date")
	listCmd.Flags().BoolVar(&listSaved, "saved", false, "Show saved sessions only")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	now := time.Now()
	after, err := history.ParseDate(listSince, now)
	if err != nil {
		return fmt.Errorf("invalid --since: %w", err)
	}
	before, err := history.ParseDate(listBefore, now)
	if err != nil {
		return fmt.Errorf("invalid --before: %w", err)
	}

	sessions, err := a.store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	groups := history.Partition(history.Sort(history.Filter(sessions, after, before)))

	if groups.Len() == 0 {
		fmt.Println("No sessions found. Run 'tabrider capture' or 'tabrider import' to add some.")
		return nil
	}

	if !listSaved {
		if groups.Current != nil {
			fmt.Println("Current session")
			printSessionLine(a, *groups.Current)
			fmt.Println()
		}

		if len(groups.Recent) > 0 {
			recent := groups.Recent
			fmt.Printf("Recent history (%d)\n", len(recent))
			if len(recent) > listLimit {
				recent = recent[:listLimit]
			}
			for _, s := range recent {
				printSessionLine(a, s)
			}
			if len(groups.Recent) > listLimit {
				fmt.Printf("  ... and %d more (use --limit to see more)\n", len(groups.Recent)-listLimit)
			}
			fmt.Println()
		}
	}

	if len(groups.Saved) > 0 {
		fmt.Printf("Saved sessions (%d)\n", len(groups.Saved))
		for _, s := range groups.Saved {
			printSessionLine(a, s)
		}
	}

	return nil
}

func printSessionLine(a *app, s models.Session) {
	fmt.Printf("  %s  %s  (%s)\n", shortID(s.ID), a.titler.Title(s), humanize.Time(s.Date))
}
