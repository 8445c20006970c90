package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vedran77/lax/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := database.Connect(ctx, cfg.Storage.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema_applied", zap.String("database", cfg.Storage.Postgres.Database))
		return nil
	},
}
