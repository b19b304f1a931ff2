package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "webstore",
	Short: "Webstore - admission-controlled storefront service",
	Long: `Webstore serves the cart and checkout pipeline behind a process-wide
token bucket.

It provides:
  - Admission control with discrete-tick token replenishment
  - A per-user cart aggregate with a single-open-cart invariant
  - Optimistic-concurrency storage with transparent conflict retries
  - A paginated submitted-orders listing
  - Product catalog management with role-gated mutations`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
