package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [tree-file]",
	Short: "Check a category tree file for consistency",
	Long: `Reports empty or duplicate names, nodes with both children and items, and
trees in which every search would be exhausted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, tree, _ := globalFlags(cmd)
		if len(args) > 0 {
			tree = args[0]
		}
		if tree == "" {
			return errors.New("no tree file given")
		}
		if err := cli.Validate(tree, os.Stdout); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("Tree is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
