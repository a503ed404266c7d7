package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tabrider/internal/core/browser"
	"github.com/neilberkman/tabrider/internal/core/restore"
	"github.com/neilberkman/tabrider/internal/core/session"
)

var (
	restoreWindow   string
	restoreSuspend  bool
	restoreHeadless bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore <session-id>",
	Short: "Reopen a session in the browser",
	Long: `Reopen every window of a session, or one window with --window.

By default tabs are opened live: suspended tabs are resumed to their
original URLs. With --suspend every eligible tab is opened suspended
instead, so nothing loads until it is focused.

The browser is reached through browser_url in the config (a DevTools
endpoint such as ws://127.0.0.1:9222/devtools/browser/<id>). Without it a
new browser is launched.

Examples:
  tabrider restore current
  tabrider restore 0ccfddc4 --suspend
  tabrider restore 0ccfddc4 --window 12`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringVar(&restoreWindow, "window", "", "Restore only the window with this id")
	restoreCmd.Flags().BoolVar(&restoreSuspend, "suspend", false, "Open tabs suspended")
	restoreCmd.Flags().BoolVar(&restoreHeadless, "headless", false, "Launch the browser headless when no browser_url is set")
}

func runRestore(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RestoreTimeout)
	defer cancel()

	s, err := a.resolveSession(ctx, args[0])
	if err != nil {
		return err
	}

	mode := restore.Reload
	if restoreSuspend {
		mode = restore.Resuspend
	}

	chrome, err := browser.Connect(ctx, browser.Options{URL: a.cfg.BrowserURL, Headless: restoreHeadless})
	if err != nil {
		return err
	}
	defer chrome.Close()

	r := restore.New(chrome, a.codec)
	spinner := session.NewSpinner(os.Stderr, fmt.Sprintf("Restoring %s...", a.titler.Title(s)))
	spinner.Start()

	var result restore.Result
	if restoreWindow != "" {
		windowID, perr := strconv.ParseInt(restoreWindow, 10, 64)
		if perr != nil {
			spinner.Stop()
			return fmt.Errorf("invalid window id %q: %w", restoreWindow, perr)
		}
		w, ok := session.GetWindowFromSession(windowID, s)
		if !ok {
			spinner.Stop()
			return fmt.Errorf("window %d in session %s: %w", windowID, shortID(s.ID), session.ErrNotFound)
		}
		var wr restore.WindowResult
		wr, err = r.RestoreWindow(ctx, w, mode)
		result.Windows = []restore.WindowResult{wr}
	} else {
		result, err = r.RestoreSession(ctx, s, mode)
	}
	spinner.Stop()

	fmt.Printf("Opened %d %s in %d %s (%s)\n",
		result.Created(), pluralize(result.Created(), "tab"),
		len(result.Windows), pluralize(len(result.Windows), "window"), mode)

	var perr *restore.PartialFailureError
	if errors.As(err, &perr) {
		for _, w := range perr.Windows {
			fmt.Printf("  window %d failed: %v\n", w.WindowIndex+1, w.Err)
		}
		for _, t := range perr.Tabs {
			fmt.Printf("  window %d tab %d failed: %s: %v\n", t.WindowIndex+1, t.TabIndex+1, t.URL, t.Err)
		}
	}
	return err
}
