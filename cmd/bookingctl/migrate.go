package main

import (
	"context"
	"fmt"
	"time"

	mongoMigration "hallbook/internal/migrations/mongo"
	"hallbook/pkg/config"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var timeout time.Duration

	c := &cobra.Command{
		Use:   "migrate",
		Short: "Create the booking collections, validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cfg := config.Load(JobName)
			cfg.SetMongo()
			defer cfg.GracefulShutdown()

			if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration completed successfully.")
			return nil
		},
	}

	c.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall migration timeout")
	return c
}
