// Package cmd implements the luna16 command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "luna16",
	Short:         "LUNA16 training pipeline",
	Long:          "Training pipeline for lung nodule analysis with experiment tracking.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}
