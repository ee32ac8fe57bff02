package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/repositories"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.LoadConfig("config.toml")
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}

	var spotifyService services.Service
	var repos *repositories.Repositories

	if err := config.Validate(); err == nil {
		svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
		if err != nil {
			logger.Fatalf("failed to initialize Spotify client: %v", err)
		}

		if db, err := shared.NewDatabase(config.Database.ResolvePath()); err != nil {
			logger.Warnf("token cache unavailable: %v", err)
		} else if repos, err = repositories.New(db); err != nil {
			logger.Warnf("token cache unavailable: %v", err)
			repos = nil
		} else {
			restoreSession(context.Background(), svc, repos, logger)
		}

		spotifyService = svc
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Repos:   repos,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "spotify-cleaner",
		Usage:    "Clean up Spotify playlists: purge artists, tracks, duplicates and old releases",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrMissingCredentials) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// restoreSession installs a previously stored token, if any, and wires the
// refresh callback so refreshed tokens survive across runs.
func restoreSession(ctx context.Context, svc *services.SpotifyService, repos *repositories.Repositories, logger *log.Logger) {
	svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
		if err := repos.Tokens.Save(token); err != nil {
			logger.Warnf("failed to persist refreshed token: %v", err)
		}
	})

	token, err := repos.Tokens.Load()
	if err != nil {
		if !errors.Is(err, shared.ErrNoStoredToken) {
			logger.Warnf("failed to load stored token: %v", err)
		}
		return
	}

	if err := svc.OAuthenticate(ctx, token); err != nil {
		logger.Warnf("stored token rejected, re-authentication required: %v", err)
	}
}
