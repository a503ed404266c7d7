package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tabrider/internal/core/browser"
	"github.com/neilberkman/tabrider/internal/core/restore"
)

var captureName string

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record the browser's open windows as a new session",
	Long: `Record every open window and tab of the browser at browser_url as a new
history session. With --name the session is saved straight away.
History beyond max_history is pruned afterwards.

Examples:
  tabrider capture
  tabrider capture --name "Before upgrade"`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringVar(&captureName, "name", "", "Save the captured session under this name")
}

func runCapture(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.BrowserURL == "" {
		return fmt.Errorf("capture needs browser_url in the config to reach a running browser")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RestoreTimeout)
	defer cancel()

	chrome, err := browser.Connect(ctx, browser.Options{URL: a.cfg.BrowserURL})
	if err != nil {
		return err
	}
	defer chrome.Close()

	s, err := restore.New(chrome, a.codec).Capture(ctx)
	if err != nil {
		return err
	}
	if len(s.Windows) == 0 {
		fmt.Println("No open tabs to capture")
		return nil
	}

	if err := a.store.AddSession(ctx, s); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if name := strings.TrimSpace(captureName); name != "" {
		if s, err = a.store.SaveSession(ctx, name, s); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	if _, err := a.store.PruneHistory(ctx, a.cfg.MaxHistory); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	fmt.Printf("Captured %s: %s\n", shortID(s.ID), a.titler.Title(s))
	return nil
}
