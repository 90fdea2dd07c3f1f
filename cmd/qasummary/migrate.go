package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/qasummary/internal/config"
	"github.com/at-ishikawa/qasummary/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables for saved summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if !cfg.Database.Enabled {
				return fmt.Errorf("database is not enabled in the configuration")
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("database.Migrate() > %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migration completed")
			return nil
		},
	}
}
