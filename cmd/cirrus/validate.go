package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"skyline-hq/cirrus/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply defaults and environment overrides,
and report every validation error found.

Examples:
  # Validate the default config file
  cirrus validate

  # Validate a specific file
  cirrus validate --config /etc/cirrus/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)
	if verbose {
		fmt.Printf("  service:       %s\n", cfg.Service.BaseURL)
		fmt.Printf("  backend:       %s\n", cfg.Notifications.Backend)
		fmt.Printf("  categories:    %d\n", len(cfg.Limits.Categories))
		fmt.Printf("  redis enabled: %t\n", cfg.Redis.Enabled)
		fmt.Printf("  admin enabled: %t\n", cfg.Admin.IsEnabled())
	}
	return nil
}
