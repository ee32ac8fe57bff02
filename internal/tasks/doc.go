// Package tasks orchestrates playlist cleaning: scanning a paginated remote
// playlist into an ordered snapshot, classifying entries against removal
// criteria, and submitting the matches through a chunked, retrying batch
// remover.
//
// # Pipeline
//
// Data flows one direction:
//
//	ScanPlaylist → criterion matchers → removal candidates → Remover → count
//
// [ScanPlaylist] drains the service's cursor-based pagination, assigning each
// usable entry a strictly increasing snapshot position starting at zero.
// Slots with unavailable tracks are skipped without consuming a position.
//
// The matchers ([MatchesArtist], [MatchesName], [MatchesYearCutoff],
// [GroupDuplicates]) are pure functions over [TrackEntry]; all textual
// comparison is case-insensitive, and the duplicate key incorporates every
// artist in original order.
//
// # Removal
//
// [Remover.Remove] handles both removal semantics:
//   - [ByIdentity] : remove every occurrence of a URI (chunks of 100)
//   - [ByPosition] : remove only recorded snapshot positions (chunks of 50)
//
// A rate-limited chunk is retried indefinitely with the server-directed
// backoff (5s default); a rejected chunk degrades to per-item submission
// where failures are logged and skipped. Snapshot positions are only valid
// against the state scanned; concurrent playlist mutation between scan and
// removal can shift them, which is surfaced to the user rather than masked.
//
// # Orchestration
//
// [CleanEngine] exposes the four user flows (artist purge, name purge,
// duplicate picks, year cutoff) plus the scan and listing primitives the CLI
// and TUI build on. All operations report through a non-blocking
// [ProgressUpdate] channel.
package tasks
