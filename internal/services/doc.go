// Package services defines the [Service] interface for the remote playlist
// provider and implements it for the Spotify Web API.
//
// # Service Interface
//
// The cleaner's scanning and removal logic works against [Service], a narrow
// abstraction exposing paginated playlist reads and the two bulk removal
// endpoints: remove-all-occurrences (by track URI) and remove-occurrences
// (by URI plus snapshot positions).
//
// # Spotify Implementation
//
// [SpotifyService] uses [oauth2] with the authorization-code flow. The
// [oauth2] client refreshes expired access tokens automatically; refreshed
// tokens are surfaced through [OAuthService.SetTokenRefreshCallback] so the
// CLI can persist them. Outgoing requests pass through a [rate.Limiter] to
// stay under the API's request budget during long pagination runs.
//
// # Error Handling
//
// Non-2xx responses map to explicit values rather than free-form errors:
//   - HTTP 429 : [*RateLimitError] with the parsed Retry-After duration
//   - other    : [*APIError] with status code and response excerpt
//
// The batch removal logic in the tasks package branches on these types to
// decide between backoff-and-retry and per-item fallback.
package services
