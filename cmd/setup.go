package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/karaoke/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the template configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set playlists.youtube_url and playlists.spotify_url (or %s / %s)\n",
		shared.EnvYouTubePlaylistURL, shared.EnvSpotifyPlaylistURL)
	r.writePlain("2. Add Spotify app credentials (or %s / %s)\n",
		shared.EnvSpotifyClientID, shared.EnvSpotifyClientSecret)
	r.writePlain("3. Run 'karaoke setup database'\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := shared.AppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Database ready at %s (%d migrations applied)\n", config.Database.Path, len(applied))
	return nil
}
