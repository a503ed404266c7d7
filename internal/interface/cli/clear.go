package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all unsaved history",
	Long: `Delete every session that has no name, and drop cached page previews.
Saved sessions are kept.

Examples:
  tabrider clear
  tabrider clear --yes`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !clearYes {
		fmt.Print("Delete all unsaved session history? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if reply := strings.ToLower(strings.TrimSpace(answer)); reply != "y" && reply != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	removed, err := a.store.ClearHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Printf("Removed %d history %s\n", removed, pluralize(removed, "session"))
	return nil
}
