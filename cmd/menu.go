package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/shared"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/tasks"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/ui"
	"github.com/urfave/cli/v3"
)

// Clean runs the interactive cleaning menu until the user exits.
//
// Any input that is not a listed option exits normally, as does exhausted
// input. A failed flow reports its error and returns to the menu.
func (r *Runner) Clean(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}

	for {
		r.writePlainln("%s", ui.Title("Spotify Playlist Cleaner"))
		r.writePlain("1. Remove all tracks by an artist\n")
		r.writePlain("2. Remove a track by name\n")
		r.writePlain("3. Remove duplicate tracks\n")
		r.writePlain("4. Remove tracks released before a year\n")
		r.writePlain("5. Exit\n")

		line, ok := r.readLine("Choose an option: ")
		if !ok {
			return nil
		}

		var err error
		switch line {
		case "1":
			err = r.cleanByArtist(ctx)
		case "2":
			err = r.cleanByName(ctx)
		case "3":
			err = r.cleanDuplicates(ctx)
		case "4":
			err = r.cleanBeforeYear(ctx)
		default:
			r.writePlain("Goodbye!\n")
			return nil
		}

		if err != nil {
			r.writePlain("%s\n", ui.ErrorMsg(fmt.Sprintf("Error: %v", err)))
		}
	}
}

// cleanByArtist removes every occurrence of every track credited to an artist.
func (r *Runner) cleanByArtist(ctx context.Context) error {
	pl, err := r.selectPlaylist(ctx)
	if err != nil || pl == nil {
		return err
	}

	artist, ok := r.readLine("Artist name: ")
	if !ok || artist == "" {
		return nil
	}

	r.writePlain("Scanning '%s'...\n", pl.Name)
	result, err := r.engine.RemoveByArtist(ctx, nil, pl.ID, artist)
	if err != nil {
		return err
	}

	if result.Matched == 0 {
		return r.writePlain("No tracks by '%s' in '%s'.\n", artist, pl.Name)
	}
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf(
		"✓ Removed %d of %d track(s) by '%s'", result.Removed, result.Matched, artist)))
}

// cleanByName removes every occurrence of a named track, with an optional
// track listing beforehand.
func (r *Runner) cleanByName(ctx context.Context) error {
	pl, err := r.selectPlaylist(ctx)
	if err != nil || pl == nil {
		return err
	}

	if answer, ok := r.readLine("List the tracks of this playlist first? (y/n): "); ok && isYes(answer) {
		if err := r.listTracks(ctx, pl); err != nil {
			return err
		}
	}

	name, ok := r.readLine("Track name: ")
	if !ok || name == "" {
		return nil
	}

	r.writePlain("Scanning '%s'...\n", pl.Name)
	result, err := r.engine.RemoveByName(ctx, nil, pl.ID, name)
	if err != nil {
		return err
	}

	if result.Matched == 0 {
		return r.writePlain("No track named '%s' in '%s'.\n", name, pl.Name)
	}
	if result.Removed == 0 {
		return r.writePlain("%s\n", ui.ErrorMsg(fmt.Sprintf("Failed to remove '%s'", name)))
	}
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf(
		"✓ Removed '%s' (%d occurrence(s))", name, result.Matched)))
}

// cleanDuplicates walks each duplicate group and lets the user pick the
// occurrence to remove, then removes all picks positionally in one pass.
func (r *Runner) cleanDuplicates(ctx context.Context) error {
	pl, err := r.selectPlaylist(ctx)
	if err != nil || pl == nil {
		return err
	}

	r.writePlain("Scanning '%s'...\n", pl.Name)
	groups, err := r.engine.FindDuplicates(ctx, nil, pl.ID)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return r.writePlain("No duplicates in '%s'.\n", pl.Name)
	}

	var picks []tasks.RemovalCandidate
	for _, group := range groups {
		first := group.Entries[0]
		r.writePlainln("Duplicate: %s by %s (%d occurrences)", first.Name, first.ArtistList(), len(group.Entries))
		for i, entry := range group.Entries {
			r.writePlain("%d. position %d, added %s\n", i+1, entry.Position, entry.AddedAt)
		}

		for {
			line, ok := r.readLine("Occurrence to remove (0 to keep all): ")
			if !ok {
				return nil
			}
			choice, err := parseChoice(line, len(group.Entries))
			if err != nil {
				r.writePlain("%s\n", ui.Warning("Invalid choice, try again."))
				continue
			}
			if choice > 0 {
				entry := group.Entries[choice-1]
				picks = append(picks, tasks.RemovalCandidate{URI: entry.URI, Positions: []int{entry.Position}})
			}
			break
		}
	}

	if len(picks) == 0 {
		return r.writePlain("Nothing selected, playlist unchanged.\n")
	}

	removed := r.engine.RemoveOccurrences(ctx, nil, pl.ID, picks)
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf(
		"✓ Removed %d duplicate occurrence(s)", removed)))
}

// cleanBeforeYear shows the tracks released before a cutoff year and removes
// them after confirmation.
func (r *Runner) cleanBeforeYear(ctx context.Context) error {
	pl, err := r.selectPlaylist(ctx)
	if err != nil || pl == nil {
		return err
	}

	line, ok := r.readLine("Remove tracks released before year: ")
	if !ok {
		return nil
	}
	cutoff, err := strconv.Atoi(line)
	if err != nil {
		return fmt.Errorf("%w: %q is not a year", shared.ErrInvalidInput, line)
	}

	r.writePlain("Scanning '%s'...\n", pl.Name)
	matches, err := r.engine.FindBeforeYear(ctx, nil, pl.ID, cutoff)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return r.writePlain("No tracks released before %d in '%s'.\n", cutoff, pl.Name)
	}

	r.writePlainln("Tracks released before %d:", cutoff)
	for i, entry := range matches {
		year, _ := entry.ReleaseYear()
		r.writePlain("%d. %s by %s (%d)\n", i+1, entry.Name, entry.ArtistList(), year)
	}

	answer, ok := r.readLine(fmt.Sprintf("Remove all %d track(s)? (y/n): ", len(matches)))
	if !ok || !isYes(answer) {
		return r.writePlain("Aborted, playlist unchanged.\n")
	}

	uris := make([]string, len(matches))
	for i, entry := range matches {
		uris[i] = entry.URI
	}
	removed := r.engine.RemoveTracks(ctx, nil, pl.ID, uris)
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf(
		"✓ Removed %d track(s) released before %d", removed, cutoff)))
}

// listTracks prints the playlist's current track listing in snapshot order.
func (r *Runner) listTracks(ctx context.Context, pl *services.Playlist) error {
	entries, err := r.engine.Scan(ctx, nil, pl.ID)
	if err != nil {
		return err
	}

	r.writePlainln("Tracks in '%s':", pl.Name)
	for i, entry := range entries {
		r.writePlain("%d. %s by %s\n", i+1, entry.Name, entry.ArtistList())
	}
	return nil
}

// parseChoice parses a numbered menu selection in [0, max].
func parseChoice(line string, max int) (int, error) {
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", shared.ErrInvalidInput, line)
	}
	if n < 0 || n > max {
		return 0, fmt.Errorf("%w: %d out of range", shared.ErrInvalidInput, n)
	}
	return n, nil
}

func isYes(line string) bool {
	switch strings.ToLower(line) {
	case "y", "yes", "s", "sim":
		return true
	}
	return false
}
