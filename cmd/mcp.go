package cmd

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/seo-optimizer/seoscore/api"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the analyze_page tool over MCP stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("mcp server starting", "version", Version, "render", cfg.Render.Enabled)
		return server.ServeStdio(api.NewMCPServer(newAnalyzer(cfg), Version))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
