// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
)

// MockService is a scriptable test double for [services.Service].
//
// Item pages for a playlist are provided as an ordered slice; the mock wires
// next-page cursors between them automatically.
type MockService struct {
	User      services.User
	Playlists []services.Playlist
	ItemPages map[string][]services.PlaylistItemsPage

	// Removal behavior. When nil, removals succeed.
	RemoveAllFunc func(playlistID string, uris []string) error
	RemoveOccFunc func(playlistID string, occurrences []services.TrackOccurrence) error

	// Recorded calls.
	RemovedURIs        [][]string
	RemovedOccurrences [][]services.TrackOccurrence

	CurrentUserErr  error
	GetPlaylistsErr error
	ItemsErr        error
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) CurrentUser(ctx context.Context) (*services.User, error) {
	if m.CurrentUserErr != nil {
		return nil, m.CurrentUserErr
	}
	user := m.User
	return &user, nil
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]services.Playlist, error) {
	if m.GetPlaylistsErr != nil {
		return nil, m.GetPlaylistsErr
	}
	return m.Playlists, nil
}

func (m *MockService) PlaylistItems(ctx context.Context, playlistID string) (*services.PlaylistItemsPage, error) {
	if m.ItemsErr != nil {
		return nil, m.ItemsErr
	}
	return m.page(playlistID, 0)
}

func (m *MockService) NextPage(ctx context.Context, next string) (*services.PlaylistItemsPage, error) {
	playlistID, idx, ok := strings.Cut(next, "#")
	if !ok {
		return nil, fmt.Errorf("malformed cursor: %q", next)
	}
	n, err := strconv.Atoi(idx)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %q", next)
	}
	return m.page(playlistID, n)
}

func (m *MockService) page(playlistID string, n int) (*services.PlaylistItemsPage, error) {
	pages := m.ItemPages[playlistID]
	if n >= len(pages) {
		return nil, fmt.Errorf("no page %d for playlist %s", n, playlistID)
	}
	page := pages[n]
	if n < len(pages)-1 {
		page.Next = fmt.Sprintf("%s#%d", playlistID, n+1)
	}
	return &page, nil
}

func (m *MockService) RemoveAllOccurrences(ctx context.Context, playlistID string, uris []string) error {
	m.RemovedURIs = append(m.RemovedURIs, uris)
	if m.RemoveAllFunc != nil {
		return m.RemoveAllFunc(playlistID, uris)
	}
	return nil
}

func (m *MockService) RemoveOccurrences(ctx context.Context, playlistID string, occurrences []services.TrackOccurrence) error {
	m.RemovedOccurrences = append(m.RemovedOccurrences, occurrences)
	if m.RemoveOccFunc != nil {
		return m.RemoveOccFunc(playlistID, occurrences)
	}
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	responses []*http.Response
	errs      []error
	calls     int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{responses: []*http.Response{r}, errs: []error{e}}
}

// NewSequencedRoundTripper returns responses (and errors) in order, repeating
// the final pair once exhausted.
func NewSequencedRoundTripper(responses []*http.Response, errs []error) *MockRoundTripper {
	return &MockRoundTripper{responses: responses, errs: errs}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	i := m.calls
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	m.calls++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return m.responses[i], err
}

func (m *MockRoundTripper) Calls() int { return m.calls }
