package main

import (
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts canopy as an MCP Server.
This allows AI agents to search the menu and read run reports as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, tree, logLevel := globalFlags(cmd)
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		// Logs go to Stderr so they never corrupt JSON-RPC on Stdout
		return cli.ServeMCP(sigCtx, cli.MCPOptions{
			ServeOptions: cli.ServeOptions{
				ConfigPath: configPath,
				Tree:       tree,
				LogLevel:   logLevel,
			},
			Transport: transport,
			Port:      port,
		}, os.Stderr)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
