// Package cmd wires the flit command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flit",
	Short: "keyboard-driven fuzzy launcher for apps and files",
	Long: `flit - keyboard-driven fuzzy launcher
  - type to filter installed applications
  - Tab switches to filesystem search under your home
  - Enter launches, Ctrl+T forces a terminal`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLauncher()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}
