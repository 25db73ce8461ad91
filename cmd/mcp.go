package cmd

import (
	"github.com/spf13/cobra"
	"github.com/upec/tracklane/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the tracklane MCP server",
	Long:  `Launch an MCP server that lets AI agents build timelines, tracks, date buckets and colors via standard tools.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// Tools carry their own input, so no positional document is read.
		return sharedSetup(rootCtx, cmd, nil)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
