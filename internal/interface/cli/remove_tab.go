package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tabrider/internal/core/models"
)

var removeTabCmd = &cobra.Command{
	Use:   "remove-tab <session-id> <window-id> <tab>",
	Short: "Remove one tab from a stored session",
	Long: `Remove a tab from a stored window. The tab is addressed by its numeric
id, or by its URL when it was stored without one (see 'tabrider show').

A window left without tabs is removed. A session left without windows is
deleted unless keep_empty_sessions is set in the config.

Examples:
  tabrider remove-tab 0ccfddc4 12 345
  tabrider remove-tab 0ccfddc4 12 https://example.com/`,
	Args: cobra.ExactArgs(3),
	RunE: runRemoveTab,
}

func init() {
	rootCmd.AddCommand(removeTabCmd)
}

func runRemoveTab(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	windowID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid window id %q: %w", args[1], err)
	}
	key := models.ParseTabKey(args[2])

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.resolveSession(ctx, args[0])
	if err != nil {
		return err
	}

	updated, err := a.store.RemoveTabFromSessionHistory(ctx, s.ID, windowID, key)
	if err != nil {
		return fmt.Errorf("failed to remove tab: %w", err)
	}

	if len(updated.Windows) == 0 {
		fmt.Printf("Removed the last tab of %s\n", shortID(s.ID))
		return nil
	}
	fmt.Printf("Removed tab %s; %s now has %s\n", key, shortID(s.ID), a.titler.Title(updated))
	return nil
}
