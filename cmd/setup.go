package main

import (
	"context"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/repositories"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a config.toml from the embedded example.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	return r.writePlain("✓ Created %s, fill in your Spotify credentials\n", path)
}

// SetupDatabase initializes the token cache database and its schema.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.ResolvePath()
	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := repositories.New(db); err != nil {
		return err
	}
	return r.writePlain("✓ Token cache initialized at %s\n", path)
}
