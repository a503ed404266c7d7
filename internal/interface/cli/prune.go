package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneKeep int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Trim history to the most recent sessions",
	Long: `Delete the oldest unsaved sessions so that at most --keep remain.
Defaults to max_history from the config. Saved sessions are never pruned.
--keep must be at least 1; use 'tabrider clear' to remove all history.

Examples:
  tabrider prune
  tabrider prune --keep 10`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", 0, "Number of history sessions to keep, at least 1 (default: max_history)")
}

func runPrune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	keep, err := pruneLimit(cmd.Flags().Changed("keep"), pruneKeep, a.cfg.MaxHistory)
	if err != nil {
		return err
	}
	if keep == 0 {
		fmt.Println("Pruning disabled (max_history is 0)")
		return nil
	}

	removed, err := a.store.PruneHistory(ctx, keep)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	fmt.Printf("Removed %d history %s, keeping the newest %d\n", removed, pluralize(removed, "session"), keep)
	return nil
}

// pruneLimit resolves how many history sessions prune keeps. An explicit
// --keep below 1 is rejected; a max_history of 0 disables pruning.
func pruneLimit(flagSet bool, flagValue, maxHistory int) (int, error) {
	if flagSet {
		if flagValue < 1 {
			return 0, fmt.Errorf("--keep must be at least 1 (got %d); use 'tabrider clear' to remove all history", flagValue)
		}
		return flagValue, nil
	}
	if maxHistory < 0 {
		return 0, nil
	}
	return maxHistory, nil
}
