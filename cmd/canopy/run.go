package main

import (
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [root-category]",
	Short: "Search the menu for a populated leaf",
	Long: `Runs one search starting from the given root category (default: the first one)
and prints the run report. An exhausted search exits with status 0; provider
faults and navigation errors exit with status 1.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, tree, logLevel := globalFlags(cmd)
		jsonMode, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")

		opts := cli.RunOptions{
			ConfigPath: configPath,
			Tree:       tree,
			LogLevel:   logLevel,
			JSON:       jsonMode,
			Quiet:      quiet,
		}
		if len(args) > 0 {
			opts.Root = args[0]
		}
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetUint64("seed")
			opts.Seed = &seed
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		_, err := cli.Run(sigCtx, opts, os.Stdout, os.Stderr)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Uint64("seed", 0, "Seed for a reproducible run")
	runCmd.Flags().Bool("json", false, "Print the report as JSON")
	runCmd.Flags().BoolP("quiet", "q", false, "Only print the report")
}
