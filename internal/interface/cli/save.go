package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save <session-id> <name>",
	Short: "Name a session so it is kept",
	Long: `Give a session a name. Named sessions are listed as saved and are never
removed by clear or prune. Saving an already saved session renames it.

Examples:
  tabrider save current "Trip planning"
  tabrider save 0ccfddc4 Research`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.resolveSession(ctx, args[0])
	if err != nil {
		return err
	}

	saved, err := a.store.SaveSession(ctx, strings.Join(args[1:], " "), s)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Printf("Saved %s as %s\n", shortID(saved.ID), a.titler.Title(saved))
	return nil
}
