package tasks

import (
	"context"
	"strconv"
	"strings"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
)

// TrackEntry is one playlist slot captured during a scan.
//
// Position is the zero-based index of the entry in the paginated snapshot at
// scan time, counting only slots with a usable track. It is not guaranteed to
// stay valid if the playlist is mutated between scan and removal.
type TrackEntry struct {
	Position    int
	URI         string
	Name        string
	Artists     []string
	AddedAt     string
	ReleaseDate string
}

// ArtistList returns the display names joined for presentation.
func (e TrackEntry) ArtistList() string {
	return strings.Join(e.Artists, ", ")
}

// ReleaseYear parses the 4-digit year from the entry's release date.
// Reports false when the date is missing or unparseable.
func (e TrackEntry) ReleaseYear() (int, bool) {
	if len(e.ReleaseDate) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(e.ReleaseDate[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ScanPlaylist drains a playlist's paginated track listing into an ordered
// snapshot, following next-page cursors until exhausted.
//
// Slots whose track is unavailable are skipped without consuming a position,
// matching the indexing the positional removal endpoint is fed later.
func ScanPlaylist(ctx context.Context, svc services.Service, playlistID string) ([]TrackEntry, error) {
	var entries []TrackEntry

	page, err := svc.PlaylistItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	position := 0
	for {
		for _, item := range page.Items {
			if item.Track == nil {
				continue
			}
			entries = append(entries, TrackEntry{
				Position:    position,
				URI:         item.Track.URI,
				Name:        item.Track.Name,
				Artists:     item.Track.Artists,
				AddedAt:     item.AddedAt,
				ReleaseDate: item.Track.ReleaseDate,
			})
			position++
		}

		if page.Next == "" {
			break
		}
		if page, err = svc.NextPage(ctx, page.Next); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// MatchesArtist reports whether any of the entry's artists equals artist,
// ignoring case.
func MatchesArtist(e TrackEntry, artist string) bool {
	for _, a := range e.Artists {
		if strings.EqualFold(a, artist) {
			return true
		}
	}
	return false
}

// MatchesName reports whether the entry's track name equals name, ignoring
// case. Exact match, not substring.
func MatchesName(e TrackEntry, name string) bool {
	return strings.EqualFold(e.Name, name)
}

// MatchesYearCutoff reports whether the entry was released strictly before
// cutoff. Entries with missing or unparseable release dates never match.
func MatchesYearCutoff(e TrackEntry, cutoff int) bool {
	year, ok := e.ReleaseYear()
	return ok && year < cutoff
}

// DuplicateGroup holds entries sharing the same name-and-artists key.
type DuplicateGroup struct {
	Key     string
	Entries []TrackEntry
}

// duplicateKey builds the case-insensitive grouping key from the track name
// and all artists in original order, so identically titled tracks by
// different collaborations stay apart.
func duplicateKey(e TrackEntry) string {
	artists := make([]string, len(e.Artists))
	for i, a := range e.Artists {
		artists[i] = strings.ToLower(strings.TrimSpace(a))
	}
	return strings.ToLower(strings.TrimSpace(e.Name)) + "||" + strings.Join(artists, ",")
}

// GroupDuplicates groups entries by duplicate key and returns the groups with
// more than one member, in order of first appearance.
func GroupDuplicates(entries []TrackEntry) []DuplicateGroup {
	groups := make(map[string][]TrackEntry)
	var order []string

	for _, e := range entries {
		key := duplicateKey(e)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}

	var duplicates []DuplicateGroup
	for _, key := range order {
		if members := groups[key]; len(members) > 1 {
			duplicates = append(duplicates, DuplicateGroup{Key: key, Entries: members})
		}
	}

	return duplicates
}
