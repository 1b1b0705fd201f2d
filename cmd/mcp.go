package cmd

import (
	"github.com/repvault/repvault/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the RepVault MCP server",
	Long:  `Launch an MCP server that allows AI agents to inspect the cache, the rate limiter and session state via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Keep setup output off stdout, which carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cache, limiter, storeManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
