package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridden at link time via -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(buildInfo())
	},
}

// buildInfo formats the version line shown by `cirrus version` and
// `cirrus --version`.
func buildInfo() string {
	return fmt.Sprintf("cirrus %s (commit %s, built %s)\n%s %s/%s",
		Version, GitCommit, BuildDate,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
