// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Requests per second allowed through the client-side throttle.
	spotifyRequestRate = 10
)

// Field projections keep item pages small, mirroring what the cleaner reads.
const playlistItemFields = "items(added_at,track(uri,name,artists(name),album(release_date))),next,total"

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ReleaseDate string `json:"release_date"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	URI     string          `json:"uri"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	Album   SpotifyAlbum    `json:"album"`
}

// SpotifyPlaylistItem represents a track within a playlist context.
//
// Track is null for slots whose track is unavailable.
type SpotifyPlaylistItem struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPagedItems represents a paginated response of playlist items.
type SpotifyPagedItems struct {
	Items []SpotifyPlaylistItem `json:"items"`
	Next  *string               `json:"next"`
	Total int                   `json:"total"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items []SpotifySimplePlaylist `json:"items"`
	Next  *string                 `json:"next"`
	Total int                     `json:"total"`
}

type removeTracksBody struct {
	Tracks []TrackOccurrence `json:"tracks"`
}

type removeURIsBody struct {
	Tracks []struct {
		URI string `json:"uri"`
	} `json:"tracks"`
}

// SpotifyService implements the [Service] interface for Spotify API interactions.
//
// Uses [oauth2] for authentication and throttles outgoing requests with a
// [rate.Limiter] so bursts of page reads stay under the API's limits.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	limiter        *rate.Limiter
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(spotifyRequestRate), 1),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers a callback invoked with every new access token.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// OAuthenticate installs the token and builds an auto-refreshing HTTP client.
//
// Refreshed tokens are reported through the registered refresh callback.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("empty token")
	}

	s.token = token
	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		callback: s.onTokenRefresh,
	}
	s.httpClient = oauth2.NewClient(ctx, source)
	return nil
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and invokes a callback
// whenever the access token changes, so new tokens can be persisted.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	mu       sync.Mutex
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if token.AccessToken != r.last {
		r.last = token.AccessToken
		if r.callback != nil {
			// Contain callback panics; persistence must never break API calls.
			func() {
				defer func() { _ = recover() }()
				r.callback(token)
			}()
		}
	}

	return token, nil
}

// doRequest performs an authenticated, throttled HTTP request to the Spotify API.
//
// endpoint is either a path under the API base URL or an absolute URL (as
// returned in next-page cursors). A 429 response is returned as a
// [*RateLimitError] carrying the parsed Retry-After duration; other non-2xx
// responses become [*APIError].
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("not authenticated: call OAuthenticate first")
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		apiURL = spotifyBaseURL + endpoint
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// parseRetryAfter converts a Retry-After header value (seconds) to a duration.
// Returns zero for absent or unparseable values.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*User, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// GetPlaylists retrieves all playlists for the authenticated user, following
// next-page cursors until exhausted.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]Playlist, error) {
	var all []Playlist
	endpoint := "/me/playlists?limit=50"

	for endpoint != "" {
		var page SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			all = append(all, Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				OwnerID:     sp.Owner.ID,
				TrackCount:  sp.Tracks.Total,
				Public:      sp.Public,
			})
		}

		if page.Next == nil {
			break
		}
		endpoint = *page.Next
	}

	return all, nil
}

// PlaylistItems retrieves the first page of a playlist's tracks.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID string) (*PlaylistItemsPage, error) {
	query := url.Values{}
	query.Set("fields", playlistItemFields)
	query.Set("additional_types", "track")
	query.Set("limit", "100")

	endpoint := fmt.Sprintf("/playlists/%s/tracks?%s", playlistID, query.Encode())
	return s.fetchItemsPage(ctx, endpoint)
}

// NextPage follows the next-page cursor of a previous items page.
func (s *SpotifyService) NextPage(ctx context.Context, next string) (*PlaylistItemsPage, error) {
	if next == "" {
		return nil, fmt.Errorf("empty next-page cursor")
	}
	return s.fetchItemsPage(ctx, next)
}

func (s *SpotifyService) fetchItemsPage(ctx context.Context, endpoint string) (*PlaylistItemsPage, error) {
	var paged SpotifyPagedItems
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &paged); err != nil {
		return nil, err
	}

	page := &PlaylistItemsPage{
		Items: make([]PlaylistItem, 0, len(paged.Items)),
		Total: paged.Total,
	}
	if paged.Next != nil {
		page.Next = *paged.Next
	}

	for _, item := range paged.Items {
		entry := PlaylistItem{AddedAt: item.AddedAt}
		if item.Track != nil {
			artists := make([]string, 0, len(item.Track.Artists))
			for _, a := range item.Track.Artists {
				artists = append(artists, a.Name)
			}
			entry.Track = &Track{
				URI:         item.Track.URI,
				Name:        item.Track.Name,
				Artists:     artists,
				ReleaseDate: item.Track.Album.ReleaseDate,
			}
		}
		page.Items = append(page.Items, entry)
	}

	return page, nil
}

// RemoveAllOccurrences removes every occurrence of the given track URIs from
// the playlist. At most 100 URIs per call.
func (s *SpotifyService) RemoveAllOccurrences(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("no track URIs provided")
	}
	if len(uris) > 100 {
		return fmt.Errorf("maximum 100 track URIs allowed per call")
	}

	var body removeURIsBody
	for _, uri := range uris {
		body.Tracks = append(body.Tracks, struct {
			URI string `json:"uri"`
		}{URI: uri})
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return s.doRequest(ctx, http.MethodDelete, endpoint, &body, nil)
}

// RemoveOccurrences removes only the given positional occurrences.
// At most 100 entries per call.
func (s *SpotifyService) RemoveOccurrences(ctx context.Context, playlistID string, occurrences []TrackOccurrence) error {
	if len(occurrences) == 0 {
		return fmt.Errorf("no occurrences provided")
	}
	if len(occurrences) > 100 {
		return fmt.Errorf("maximum 100 occurrences allowed per call")
	}

	body := removeTracksBody{Tracks: occurrences}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return s.doRequest(ctx, http.MethodDelete, endpoint, &body, nil)
}
