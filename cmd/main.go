package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"github.com/spotifire/spotifire/internal/services"
	"github.com/spotifire/spotifire/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	configPath := os.Getenv("SPOTIFIRE_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("failed to load %s: %v", configPath, err)
		}
	}

	var db *sql.DB
	if config.Database.Path != "" {
		if opened, err := shared.NewDatabase(config.Database.Path); err == nil {
			shared.ConfigureDatabase(opened, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			if err := shared.RunMigrations(opened); err != nil {
				logger.Warnf("failed to run migrations: %v", err)
			}
			db = opened
		} else {
			logger.Warnf("failed to open database: %v", err)
		}
	}

	var music services.MusicService
	if svc, err := services.NewSpotifyClient(config.Credentials.Spotify); err == nil {
		music = svc
	}

	var generator services.Generator
	if gen, err := services.NewGeminiGenerator(config.Generator, logger); err == nil {
		generator = gen
	}

	runner := NewRunner(RunnerOpts{
		Config:    config,
		DB:        db,
		Music:     music,
		Generator: generator,
		Artwork:   services.NewArtworkClient(config.Artwork),
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "spotifire",
		Usage:    "Turn a mood into a Spotify playlist with generated cover art",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
