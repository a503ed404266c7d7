package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tabrider/internal/core/daemon"
	"github.com/neilberkman/tabrider/internal/core/importer"
	"github.com/neilberkman/tabrider/internal/logx"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Import session exports as they appear in a directory",
	Long: `Watch a directory and import every session export (.json or .txt)
written to it, such as the browser's downloads folder. Files already in the
directory are imported first. Runs until interrupted.

Examples:
  tabrider watch ~/Downloads`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := daemon.NewWatcher(importer.New(a.db, a.store), args[0])
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watcher failed: %w", err)
	}

	stats := w.GetStats()
	logx.Ctx(ctx).Info("watcher stopped",
		"files", stats.FilesImported,
		"sessions", stats.SessionsImported,
		"errors", stats.Errors)
	return nil
}
