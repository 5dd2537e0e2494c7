package main

import (
	"context"
	"fmt"

	"github.com/spotifire/spotifire/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup initializes the configuration file and database schema.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warnf("skipping config creation: %v", err)
	} else {
		r.logger.Infof("wrote example config to %s", configPath)
	}

	if err := r.requireStore(); err != nil {
		return err
	}

	if err := shared.RunMigrations(r.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Info("database schema up to date")
	return r.writePlain("✓ Setup complete\n")
}
