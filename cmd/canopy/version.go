package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of canopy",
	Run: func(cmd *cobra.Command, args []string) {
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}
		fmt.Printf("canopy version %s\n", strings.TrimSpace(canopy.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
