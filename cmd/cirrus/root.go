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
	Use:   "cirrus",
	Short: "Cirrus - rate-limit-aware Bluesky client daemon",
	Long: `Cirrus is a client daemon for Bluesky (AT Protocol) that enforces the
service's published rate limits locally, before requests leave the process.

It provides:
  - Token-bucket admission control partitioned by API category
  - Optional Redis-backed budgets shared across instances
  - A local notification cache with scheduled syncing and pruning
  - An admin endpoint with health, Prometheus metrics, and budget status`,
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
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
