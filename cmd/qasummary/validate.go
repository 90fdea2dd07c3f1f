package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/qasummary/internal/config"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file and environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			if err := cfg.Validate(); err != nil {
				_, _ = color.New(color.FgRed).Fprintf(out, "✗ %v\n", err)
				return fmt.Errorf("validation failed")
			}

			_, _ = color.New(color.FgGreen).Fprintln(out, "✓ Configuration is valid")
			_, _ = fmt.Fprintf(out, "  provider: %s\n", cfg.Analyzer.Provider)
			_, _ = fmt.Fprintf(out, "  cache:    %t\n", cfg.Redis.Enabled)
			_, _ = fmt.Fprintf(out, "  database: %t\n", cfg.Database.Enabled)
			return nil
		},
	}
}
