package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragzy-ai/ragzy-api/internal/app"
	"github.com/ragzy-ai/ragzy-api/internal/repo/mongodb"
	"github.com/ragzy-ai/ragzy-api/internal/setup"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the mongo indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return app.RunOnce(ctx, func(repo mongodb.MigrationRepository) error {
			return migrate(ctx, repo)
		})
	},
}

func migrate(ctx context.Context, repo mongodb.MigrationRepository) error {
	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	status, err := repo.GetMigrationStatus(ctx, mongodb.EnsureIndexesMigration)
	if err != nil {
		return fmt.Errorf("get migration status: %w", err)
	}
	args := []any{"status", status.Status}
	if status.Result != nil {
		args = append(args, "indexes", len(status.Result.IndexesCreated), "duration", status.Result.Duration)
	}
	log.Infow(ctx, "migration finished", args...)
	return nil
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo workspace and widget",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return app.RunOnce(ctx, func(seeder *setup.Seeder) error {
			demos, err := setup.LoadDemoWorkspaces()
			if err != nil {
				return err
			}
			created, err := seeder.Seed(ctx, demos)
			if err != nil {
				return err
			}
			log.Infow(ctx, "seed finished", "workspaces_created", created)
			return nil
		})
	},
}
