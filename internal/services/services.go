// package services defines interface Service for interacting with the Spotify Web API
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Service defines the playlist operations the cleaner needs from a music
// streaming provider: authenticated paginated reads and the two bulk removal
// endpoints.
type Service interface {
	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*User, error)

	// GetPlaylists retrieves all playlists visible to the authenticated user.
	GetPlaylists(ctx context.Context) ([]Playlist, error)

	// PlaylistItems retrieves the first page of a playlist's tracks.
	PlaylistItems(ctx context.Context, playlistID string) (*PlaylistItemsPage, error)

	// NextPage follows an opaque next-page cursor returned in a previous page.
	NextPage(ctx context.Context, next string) (*PlaylistItemsPage, error)

	// RemoveAllOccurrences removes every occurrence of the given track URIs
	// from the playlist, regardless of position.
	RemoveAllOccurrences(ctx context.Context, playlistID string, uris []string) error

	// RemoveOccurrences removes only the occurrences at the given snapshot
	// positions for each track URI.
	RemoveOccurrences(ctx context.Context, playlistID string, occurrences []TrackOccurrence) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Service with server-side OAuth2 flow support.
type OAuthService interface {
	Service

	// GetAuthURL returns the OAuth2 authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig returns the underlying OAuth2 configuration.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs an OAuth2 token, enabling API calls.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error

	// SetTokenRefreshCallback registers a callback invoked whenever the
	// access token is refreshed, so callers can persist the new token.
	SetTokenRefreshCallback(fn func(*oauth2.Token))
}

// User represents a user profile from any service.
type User struct {
	ID          string
	DisplayName string
}

// Playlist represents a music playlist from any service.
type Playlist struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	TrackCount  int
	Public      bool
}

// Track represents one track as it appears inside a playlist.
type Track struct {
	URI         string   // Opaque stable identifier, not unique within a playlist
	Name        string
	Artists     []string // Display names in original order
	ReleaseDate string   // Album release date, may be empty or partial ("1981", "1981-12", "1981-12-04")
}

// PlaylistItem is one playlist slot. Track is nil when the underlying track
// is unavailable (removed or region-blocked).
type PlaylistItem struct {
	AddedAt string
	Track   *Track
}

// PlaylistItemsPage is one page of a playlist's tracks.
type PlaylistItemsPage struct {
	Items []PlaylistItem
	Next  string // Opaque cursor for the following page; empty when exhausted
	Total int
}

// TrackOccurrence identifies specific occurrences of a track for positional removal.
type TrackOccurrence struct {
	URI       string `json:"uri"`
	Positions []int  `json:"positions"`
}

// RateLimitError signals the API rejected a request with a rate-limit status.
//
// RetryAfter is the server-directed backoff, zero when the server did not
// provide one (or it could not be parsed).
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// APIError represents a non-2xx response other than rate limiting.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spotify API error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("spotify API error: status %d", e.StatusCode)
}
