// Package commands defines the campuslens CLI: serve runs the API server,
// seed populates campus resources, simulate evaluates one scenario locally.
package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "campuslens",
	Short:         "Document analysis service for student paperwork",
	Long:          "campuslens analyzes student documents (aid letters, leases, visa paperwork), scores their risk and answers follow-up questions.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(simulateCmd)
}
