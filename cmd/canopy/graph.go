package main

import (
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the category tree as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the category tree. With --run, the
found path and the dead ends of a stored run are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, tree, _ := globalFlags(cmd)
		reportID, _ := cmd.Flags().GetString("run")

		return cli.Graph(cmd.Context(), cli.GraphOptions{
			ConfigPath: configPath,
			Tree:       tree,
			ReportID:   reportID,
		}, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("run", "", "ID of a stored run to overlay")
}
