package cli

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/neilberkman/tabrider/internal/interface/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI browser",
	Long:  "Launch an interactive terminal UI for browsing, saving and restoring browser sessions",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	model := tui.New(tui.Options{
		Store:  a.store,
		DB:     a.db,
		Codec:  a.codec,
		Titler: a.titler,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)

	finalModel, err := p.Run()
	a.Close()
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	// Restoring needs the terminal back, so it runs after the program exits
	m, ok := finalModel.(tui.Model)
	if !ok || m.RestoreSessionID == "" {
		return nil
	}

	restoreSuspend = m.RestoreSuspended
	restoreWindow = ""
	if m.RestoreWindowID != nil {
		restoreWindow = strconv.FormatInt(*m.RestoreWindowID, 10)
	}
	return runRestore(cmd, []string{m.RestoreSessionID})
}
