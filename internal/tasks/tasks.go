package tasks

import (
	"context"
	"fmt"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/shared"
	"github.com/charmbracelet/log"
)

// CleanResult summarizes one cleaning flow over a playlist.
type CleanResult struct {
	Scanned int // Entries in the snapshot
	Matched int // Entries matching the criterion
	Removed int // Tracks reported removed by the API
}

// CleanEngine orchestrates the cleaning flows against a playlist service.
type CleanEngine struct {
	svc     services.Service
	remover *Remover
	logger  *log.Logger
}

// NewCleanEngine creates a CleanEngine with the provided service.
func NewCleanEngine(svc services.Service, logger *log.Logger) *CleanEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CleanEngine{
		svc:     svc,
		remover: NewRemover(svc, logger),
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *CleanEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// OwnedPlaylists returns the authenticated user's own playlists, in the
// order the service lists them.
func (e *CleanEngine) OwnedPlaylists(ctx context.Context) ([]services.Playlist, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	user, err := e.svc.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get current user: %v", shared.ErrAPIRequest, err)
	}

	playlists, err := e.svc.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get playlists: %v", shared.ErrAPIRequest, err)
	}

	var owned []services.Playlist
	for _, pl := range playlists {
		if pl.OwnerID == user.ID {
			owned = append(owned, pl)
		}
	}
	return owned, nil
}

// Scan builds the snapshot of a playlist's tracks.
func (e *CleanEngine) Scan(ctx context.Context, progress chan<- ProgressUpdate, playlistID string) ([]TrackEntry, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, scanningUpdate(playlistID))
	entries, err := ScanPlaylist(ctx, e.svc, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan playlist: %v", shared.ErrAPIRequest, err)
	}
	e.sendProgress(progress, scannedUpdate(len(entries)))

	return entries, nil
}

// RemoveByArtist removes every occurrence of every track credited to artist.
func (e *CleanEngine) RemoveByArtist(ctx context.Context, progress chan<- ProgressUpdate, playlistID, artist string) (*CleanResult, error) {
	return e.removeMatching(ctx, progress, playlistID, func(entry TrackEntry) bool {
		return MatchesArtist(entry, artist)
	})
}

// RemoveByName removes every occurrence of every track named name.
func (e *CleanEngine) RemoveByName(ctx context.Context, progress chan<- ProgressUpdate, playlistID, name string) (*CleanResult, error) {
	return e.removeMatching(ctx, progress, playlistID, func(entry TrackEntry) bool {
		return MatchesName(entry, name)
	})
}

// removeMatching scans the playlist and removes all occurrences of entries
// matching the criterion.
func (e *CleanEngine) removeMatching(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, match func(TrackEntry) bool) (*CleanResult, error) {
	entries, err := e.Scan(ctx, progress, playlistID)
	if err != nil {
		return nil, err
	}

	var candidates []RemovalCandidate
	for _, entry := range entries {
		if match(entry) {
			candidates = append(candidates, RemovalCandidate{URI: entry.URI})
		}
	}

	result := &CleanResult{Scanned: len(entries), Matched: len(candidates)}
	e.sendProgress(progress, matchedUpdate(result.Matched, result.Scanned))

	if len(candidates) == 0 {
		return result, nil
	}

	e.sendProgress(progress, removingUpdate(len(candidates)))
	result.Removed = e.remover.Remove(ctx, playlistID, candidates, ByIdentity)
	e.sendProgress(progress, removedUpdate(result.Removed, len(candidates)))

	return result, nil
}

// FindDuplicates scans the playlist and returns groups of entries sharing
// the same case-insensitive name and artist lineup.
func (e *CleanEngine) FindDuplicates(ctx context.Context, progress chan<- ProgressUpdate, playlistID string) ([]DuplicateGroup, error) {
	entries, err := e.Scan(ctx, progress, playlistID)
	if err != nil {
		return nil, err
	}

	groups := GroupDuplicates(entries)
	e.sendProgress(progress, matchedUpdate(len(groups), len(entries)))
	return groups, nil
}

// RemoveOccurrences removes the selected positional occurrences, as picked by
// the user from duplicate groups. Returns the number of occurrences removed.
func (e *CleanEngine) RemoveOccurrences(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, picks []RemovalCandidate) int {
	if len(picks) == 0 {
		return 0
	}

	e.sendProgress(progress, removingUpdate(len(picks)))
	removed := e.remover.Remove(ctx, playlistID, picks, ByPosition)
	e.sendProgress(progress, removedUpdate(removed, len(picks)))
	return removed
}

// FindBeforeYear scans the playlist and returns the entries released strictly
// before cutoff, one per distinct URI in first-seen order.
func (e *CleanEngine) FindBeforeYear(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, cutoff int) ([]TrackEntry, error) {
	entries, err := e.Scan(ctx, progress, playlistID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var matches []TrackEntry
	for _, entry := range entries {
		if !MatchesYearCutoff(entry, cutoff) {
			continue
		}
		if _, dup := seen[entry.URI]; dup {
			continue
		}
		seen[entry.URI] = struct{}{}
		matches = append(matches, entry)
	}

	e.sendProgress(progress, matchedUpdate(len(matches), len(entries)))
	return matches, nil
}

// RemoveTracks removes every occurrence of the given URIs. Returns the number
// of tracks removed.
func (e *CleanEngine) RemoveTracks(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, uris []string) int {
	if len(uris) == 0 {
		return 0
	}

	candidates := make([]RemovalCandidate, len(uris))
	for i, uri := range uris {
		candidates[i] = RemovalCandidate{URI: uri}
	}

	e.sendProgress(progress, removingUpdate(len(candidates)))
	removed := e.remover.Remove(ctx, playlistID, candidates, ByIdentity)
	e.sendProgress(progress, removedUpdate(removed, len(candidates)))
	return removed
}
