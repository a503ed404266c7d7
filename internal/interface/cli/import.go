package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tabrider/internal/core/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import exported sessions",
	Long: `Import session exports into the database. path may be a single file or a
directory; every .json and .txt file in a directory is imported.

JSON exports hold one or more sessions with their windows and tabs. Text
exports hold one URL per line and become a single-window session.
Files that were imported before are skipped.

Examples:
  tabrider import ~/Downloads/sessions.json
  tabrider import ~/Backups/tabs/`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	files, err := importer.FindExportFiles(args[0])
	if err != nil {
		return fmt.Errorf("failed to find export files: %w", err)
	}
	if len(files) == 0 {
		fmt.Printf("No export files found in %s\n", args[0])
		return nil
	}

	imp := importer.New(a.db, a.store)
	progress := importer.NewProgressReporter(os.Stdout, len(files))
	results, err := imp.ImportFiles(cmd.Context(), files, progress)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	var imported, skipped int
	for _, r := range results {
		imported += r.Imported
		if r.Skipped {
			skipped++
		}
	}

	fmt.Printf("Imported %d %s from %d %s", imported, pluralize(imported, "session"), len(files), pluralize(len(files), "file"))
	if skipped > 0 {
		fmt.Printf(" (%d already imported)", skipped)
	}
	fmt.Println()
	return nil
}
