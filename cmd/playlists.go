package main

import (
	"context"
	"fmt"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/shared"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/ui"
	"github.com/urfave/cli/v3"
)

// Playlists lists the playlists owned by the authenticated user.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}

	playlists, err := r.engine.OwnedPlaylists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists found.\n")
	}

	r.writePlain("%s\n", ui.Title("Your Playlists"))
	for i, pl := range playlists {
		r.writePlain("%d. %s (%d tracks)\n", i+1, pl.Name, pl.TrackCount)
	}
	return nil
}

// requireService ensures a usable Spotify service is wired, surfacing the
// credential remediation text when it is not.
func (r *Runner) requireService() error {
	if r.spotify != nil {
		return nil
	}
	if err := r.config.Validate(); err != nil {
		return err
	}
	return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
}

// selectPlaylist prompts the user to pick one of their playlists by number.
// Returns nil when the user backs out with 0. Invalid input re-prompts.
func (r *Runner) selectPlaylist(ctx context.Context) (*services.Playlist, error) {
	playlists, err := r.engine.OwnedPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		r.writePlain("You have no playlists of your own.\n")
		return nil, nil
	}

	r.writePlainln("%s", ui.Title("Your Playlists"))
	for i, pl := range playlists {
		r.writePlain("%d. %s (%d tracks)\n", i+1, pl.Name, pl.TrackCount)
	}

	for {
		line, ok := r.readLine("Choose a playlist (0 to go back): ")
		if !ok {
			return nil, nil
		}
		choice, err := parseChoice(line, len(playlists))
		if err != nil {
			r.writePlain("%s\n", ui.Warning("Invalid choice, try again."))
			continue
		}
		if choice == 0 {
			return nil, nil
		}
		return &playlists[choice-1], nil
	}
}
