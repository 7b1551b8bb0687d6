package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dissolvo",
	Short: "Dissolution-profile analytics for R/T formulation comparison",
	Long: `dissolvo analyzes dissolution-testing workbooks: it detects release
plateaus, augments under-replicated profiles up to the pharmacopeial
target count, flags high replicate dispersion, and computes the f1
difference and f2 similarity factors for every reference/test pair.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
