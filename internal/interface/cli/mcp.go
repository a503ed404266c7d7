package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tabrider/cmd/tabrider/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server that lets an assistant list,
search, save and prune your browser session history.

Configure in your client's MCP config:
  {
    "mcpServers": {
      "tabrider": {
        "command": "tabrider",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	deps := mcp.Deps{Store: a.store, DB: a.db, Titler: a.titler}
	if err := mcp.StartServer(cmd.Context(), deps, serverVersion()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func serverVersion() string {
	if versionInfo == "" {
		return "dev"
	}
	return versionInfo
}
