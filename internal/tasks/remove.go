package tasks

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
	"github.com/charmbracelet/log"
)

// RemovalMode selects which bulk removal endpoint candidates are submitted to.
type RemovalMode int

const (
	// ByIdentity removes every occurrence of a track URI, regardless of position.
	ByIdentity RemovalMode = iota
	// ByPosition removes only the occurrences at previously recorded snapshot positions.
	ByPosition
)

const (
	identityChunkSize = 100
	positionChunkSize = 50

	// Backoff applied when the API rate-limits without a Retry-After value.
	defaultRetryAfter = 5 * time.Second
)

// RemovalCandidate is a track selected for removal. Positions is only
// consulted in [ByPosition] mode.
type RemovalCandidate struct {
	URI       string
	Positions []int
}

// Remover submits removal candidates to the bulk mutation API in bounded
// chunks, retrying rate-limited chunks with server-directed backoff and
// degrading to per-item submission when a chunk is rejected outright.
type Remover struct {
	svc    services.Service
	logger *log.Logger
	sleep  func(time.Duration)
}

// NewRemover creates a Remover backed by the given service.
func NewRemover(svc services.Service, logger *log.Logger) *Remover {
	return &Remover{svc: svc, logger: logger, sleep: time.Sleep}
}

// Remove submits all candidates and returns how many were removed.
//
// In [ByIdentity] mode the candidate list is deduplicated by URI first, since
// a single call already removes every occurrence of a URI. Chunks are sized
// to the endpoint's limits: 100 for identity removal, 50 for positional
// removal. A rate-limited chunk is retried until it goes through; any other
// chunk failure falls back to per-item submission, where individual failures
// are logged and skipped. Partial progress is never rolled back.
func (r *Remover) Remove(ctx context.Context, playlistID string, candidates []RemovalCandidate, mode RemovalMode) int {
	if mode == ByIdentity {
		candidates = dedupeByURI(candidates)
	}

	size := identityChunkSize
	if mode == ByPosition {
		size = positionChunkSize
	}

	removed := 0
	for chunk := range slices.Chunk(candidates, size) {
		removed += r.removeChunk(ctx, playlistID, chunk, mode)
	}
	return removed
}

func (r *Remover) removeChunk(ctx context.Context, playlistID string, chunk []RemovalCandidate, mode RemovalMode) int {
	for {
		err := r.submit(ctx, playlistID, chunk, mode)
		if err == nil {
			return len(chunk)
		}

		var rateLimited *services.RateLimitError
		if errors.As(err, &rateLimited) {
			wait := rateLimited.RetryAfter
			if wait <= 0 {
				wait = defaultRetryAfter
			}
			r.logger.Warn("rate limited, backing off", "wait", wait, "chunk_size", len(chunk))
			r.sleep(wait)
			continue
		}

		r.logger.Warn("chunk removal rejected, retrying items individually", "chunk_size", len(chunk), "error", err)
		return r.removeItems(ctx, playlistID, chunk, mode)
	}
}

// removeItems submits each candidate on its own. Failures are logged with the
// item's identity and positions and never abort the remaining items.
func (r *Remover) removeItems(ctx context.Context, playlistID string, chunk []RemovalCandidate, mode RemovalMode) int {
	removed := 0
	for _, candidate := range chunk {
		if err := r.submit(ctx, playlistID, []RemovalCandidate{candidate}, mode); err != nil {
			r.logger.Error("failed to remove track",
				"uri", candidate.URI, "positions", candidate.Positions, "error", err)
			continue
		}
		removed++
	}
	return removed
}

func (r *Remover) submit(ctx context.Context, playlistID string, items []RemovalCandidate, mode RemovalMode) error {
	if mode == ByPosition {
		occurrences := make([]services.TrackOccurrence, len(items))
		for i, item := range items {
			occurrences[i] = services.TrackOccurrence{URI: item.URI, Positions: item.Positions}
		}
		return r.svc.RemoveOccurrences(ctx, playlistID, occurrences)
	}

	uris := make([]string, len(items))
	for i, item := range items {
		uris[i] = item.URI
	}
	return r.svc.RemoveAllOccurrences(ctx, playlistID, uris)
}

// dedupeByURI drops later candidates with an already seen URI, preserving order.
func dedupeByURI(candidates []RemovalCandidate) []RemovalCandidate {
	seen := make(map[string]struct{}, len(candidates))
	deduped := make([]RemovalCandidate, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.URI]; dup {
			continue
		}
		seen[c.URI] = struct{}{}
		deduped = append(deduped, c)
	}
	return deduped
}
