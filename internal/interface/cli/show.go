package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/tabrider/internal/core/models"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the windows and tabs of a session",
	Long: `Show every window and tab of a session.

The session id may be abbreviated to any unique prefix, or "current" for the
most recent history session. Each tab is listed with the address that
remove-tab accepts: its numeric id when it has one, otherwise its URL.

Examples:
  tabrider show current
  tabrider show 0ccfddc4
  tabrider show 0ccfddc4 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the session as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
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

	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	printSession(a, s)
	return nil
}

func printSession(a *app, s models.Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Title:   %s\n", a.titler.Title(s))
	if s.IsSaved() {
		fmt.Printf("Name:    %s\n", s.Name)
	}
	fmt.Printf("Date:    %s (%s)\n", s.Date.Local().Format("2006-01-02 15:04:05"), humanize.Time(s.Date))
	fmt.Println()

	for i, w := range s.Windows {
		label := fmt.Sprintf("Window %d", i+1)
		if w.ID != nil {
			label += fmt.Sprintf(" [id %d]", *w.ID)
		}
		fmt.Printf("%s: %d %s\n", label, len(w.Tabs), pluralize(len(w.Tabs), "tab"))
		for _, t := range w.Tabs {
			marker := " "
			if t.Pinned {
				marker = "*"
			}
			title := t.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("  %s %s\n", marker, truncate(title, 80))
			fmt.Printf("      %s\n", a.codec.Resume(t.URL))
			if a.codec.IsSuspended(t.URL) {
				fmt.Printf("      suspended, address: %s\n", truncate(t.Key().String(), 60))
			} else {
				fmt.Printf("      address: %s\n", truncate(t.Key().String(), 60))
			}
		}
		fmt.Println()
	}
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// truncate shortens s to maxLen runes for display
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
