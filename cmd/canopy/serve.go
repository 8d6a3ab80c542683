package main

import (
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the finder as a JSON API over HTTP: start runs, fetch stored reports,
list root categories, follow run events (SSE) and scrape Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, tree, logLevel := globalFlags(cmd)
		addr, _ := cmd.Flags().GetString("addr")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.Serve(sigCtx, cli.ServeOptions{
			ConfigPath: configPath,
			Tree:       tree,
			Addr:       addr,
			LogLevel:   logLevel,
		}, os.Stderr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config, :8080)")
}
