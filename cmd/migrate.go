package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/wrapforge/internal/config"
	"github.com/wrapforge/internal/storage"
)

// MigrateCommand returns the CLI command for applying database migrations
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Apply database migrations",
		Action: runMigrate,
	}
}

func runMigrate(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	// Open without auto-migrate, then run the migration explicitly so a
	// failure is reported as a migration error rather than a startup error.
	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, false)
	if err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer store.Close()

	if err := storage.Migrate(ctx, store.DB(), cfg.Database.Driver); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("Migrations applied")
	return nil
}
