package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportCopy   bool
	exportRaw   bool
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session's tab URLs",
	Long: `Export the URLs of every tab in a session, one per line.

Suspended tabs are exported with their original URL unless --raw is set.
By default the list is written to stdout.

Examples:
  tabrider export current
  tabrider export 0ccfddc4 --output tabs.txt
  tabrider export 0ccfddc4 --copy`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write URLs to this file")
	exportCmd.Flags().BoolVar(&exportCopy, "copy", false, "Copy URLs to the clipboard")
	exportCmd.Flags().BoolVar(&exportRaw, "raw", false, "Keep suspended URLs as stored")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.resolveSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var urls []string
	if exportRaw {
		for _, w := range s.Windows {
			for _, t := range w.Tabs {
				urls = append(urls, t.URL)
			}
		}
	} else {
		urls = a.store.ExportURLs(s)
	}
	text := strings.Join(urls, "\n")

	switch {
	case exportCopy:
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Printf("Copied %d %s to clipboard\n", len(urls), pluralize(len(urls), "URL"))
	case exportOutput != "":
		if err := os.WriteFile(exportOutput, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Printf("Exported %d %s to: %s\n", len(urls), pluralize(len(urls), "URL"), exportOutput)
	default:
		if text != "" {
			fmt.Println(text)
		}
	}
	return nil
}
