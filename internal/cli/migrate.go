package cli

import (
	"context"
	"errors"

	"github.com/bersena911/quizapi/internal/config"
	"github.com/bersena911/quizapi/internal/infra/postgres"
	"github.com/bersena911/quizapi/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewMigrateCmd applies or reverts database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			return runMigrations(cmd.Context(), cfg, rollback, logger)
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "revert the last applied migration group")
	return cmd
}

func runMigrations(ctx context.Context, cfg config.Config, rollback bool, logger *zap.Logger) error {
	if cfg.Postgres.URL == "" {
		return errors.New("postgres url not configured")
	}
	db := postgres.Open(cfg.Postgres.URL)
	defer db.Close()

	if rollback {
		group, err := postgres.Rollback(ctx, db)
		if err != nil {
			return err
		}
		if group.IsZero() {
			logger.Info("no migrations to roll back")
			return nil
		}
		logger.Info("migrations rolled back", zap.String("group", group.String()))
		return nil
	}

	group, err := postgres.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		logger.Info("database is up to date")
		return nil
	}
	logger.Info("migrations applied", zap.String("group", group.String()))
	return nil
}
