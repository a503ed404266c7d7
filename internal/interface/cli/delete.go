package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Long: `Delete one session, saved or not.

Examples:
  tabrider delete 0ccfddc4`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
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
	if err := a.store.DeleteSession(ctx, s.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Printf("Deleted %s (%s)\n", shortID(s.ID), a.titler.Title(s))
	return nil
}
