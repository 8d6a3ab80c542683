package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Canopy finds a populated leaf in a category menu",
	Long: `Canopy walks a category menu (a tree file or a live web page) with a bounded
random descent, backtracking out of empty branches until it reaches a leaf
that exposes items or its search limits run out.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (YAML); CANOPY_* variables override it")
	rootCmd.PersistentFlags().StringP("tree", "t", "", "Category tree file (YAML or JSON), overrides the config")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

func globalFlags(cmd *cobra.Command) (configPath, tree, logLevel string) {
	configPath, _ = cmd.Flags().GetString("config")
	tree, _ = cmd.Flags().GetString("tree")
	logLevel, _ = cmd.Flags().GetString("log-level")
	return configPath, tree, logLevel
}
