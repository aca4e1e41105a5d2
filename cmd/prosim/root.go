package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prosim",
	Short: "Prosim runs deterministic, fixed-step process simulations.",
	Long: `Prosim runs deterministic, fixed-step process simulations. ` +
		`Components communicate through named, unit-checked values; the ` +
		`engine orders them by their declared dependencies and paces the ` +
		`simulation to wall-clock time.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
