package main

import (
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List stored run reports, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _, _ := globalFlags(cmd)
		return cli.Reports(cmd.Context(), configPath, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
}
