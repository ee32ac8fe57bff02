package tasks

import (
	"context"
	"testing"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
	tu "github.com/MarsoL4/spotify-PlaylistCleaner/internal/testing"
)

func track(uri, name, release string, artists ...string) *services.Track {
	return &services.Track{URI: uri, Name: name, Artists: artists, ReleaseDate: release}
}

func TestScanPlaylist(t *testing.T) {
	ctx := context.Background()

	t.Run("drains all pages in order", func(t *testing.T) {
		svc := &tu.MockService{
			ItemPages: map[string][]services.PlaylistItemsPage{
				"pl1": {
					{Items: []services.PlaylistItem{
						{AddedAt: "2020-01-01", Track: track("uri:a", "Alpha", "2019-05-01", "Artist One")},
						{AddedAt: "2020-01-02", Track: track("uri:b", "Beta", "2020-01-01", "Artist Two")},
					}, Total: 3},
					{Items: []services.PlaylistItem{
						{AddedAt: "2020-01-03", Track: track("uri:c", "Gamma", "2021", "Artist Three")},
					}, Total: 3},
				},
			},
		}

		entries, err := ScanPlaylist(ctx, svc, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
		for i, want := range []string{"uri:a", "uri:b", "uri:c"} {
			if entries[i].URI != want {
				t.Errorf("entry %d: expected %s, got %s", i, want, entries[i].URI)
			}
			if entries[i].Position != i {
				t.Errorf("entry %d: expected position %d, got %d", i, i, entries[i].Position)
			}
		}
	})

	t.Run("skips unavailable tracks without consuming a position", func(t *testing.T) {
		svc := &tu.MockService{
			ItemPages: map[string][]services.PlaylistItemsPage{
				"pl1": {
					{Items: []services.PlaylistItem{
						{Track: track("uri:a", "Alpha", "", "Artist")},
						{Track: nil},
						{Track: track("uri:b", "Beta", "", "Artist")},
					}},
				},
			},
		}

		entries, err := ScanPlaylist(ctx, svc, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[1].URI != "uri:b" || entries[1].Position != 1 {
			t.Errorf("expected uri:b at position 1, got %s at %d", entries[1].URI, entries[1].Position)
		}
	})

	t.Run("propagates page fetch errors", func(t *testing.T) {
		svc := &tu.MockService{}
		if _, err := ScanPlaylist(ctx, svc, "missing"); err == nil {
			t.Error("expected error for unknown playlist")
		}
	})
}

func TestMatchers(t *testing.T) {
	entry := TrackEntry{
		Name:        "Bohemian Rhapsody",
		Artists:     []string{"Queen", "Someone Else"},
		ReleaseDate: "1975-10-31",
	}

	t.Run("MatchesArtist", func(t *testing.T) {
		t.Run("matches any credited artist ignoring case", func(t *testing.T) {
			if !MatchesArtist(entry, "queen") {
				t.Error("expected case-insensitive match on first artist")
			}
			if !MatchesArtist(entry, "SOMEONE ELSE") {
				t.Error("expected match on secondary artist")
			}
		})

		t.Run("does not match substrings", func(t *testing.T) {
			if MatchesArtist(entry, "Que") {
				t.Error("expected no substring match")
			}
		})
	})

	t.Run("MatchesName", func(t *testing.T) {
		if !MatchesName(entry, "bohemian rhapsody") {
			t.Error("expected case-insensitive name match")
		}
		if MatchesName(entry, "Bohemian") {
			t.Error("expected no prefix match")
		}
	})

	t.Run("MatchesYearCutoff", func(t *testing.T) {
		t.Run("strictly before cutoff", func(t *testing.T) {
			if !MatchesYearCutoff(entry, 1976) {
				t.Error("1975 should match cutoff 1976")
			}
			if MatchesYearCutoff(entry, 1975) {
				t.Error("1975 should not match cutoff 1975")
			}
		})

		t.Run("year-only release date", func(t *testing.T) {
			e := TrackEntry{ReleaseDate: "2008"}
			if !MatchesYearCutoff(e, 2010) {
				t.Error("expected match for year-only date")
			}
		})

		t.Run("missing or malformed date never matches", func(t *testing.T) {
			if MatchesYearCutoff(TrackEntry{}, 3000) {
				t.Error("empty date should never match")
			}
			if MatchesYearCutoff(TrackEntry{ReleaseDate: "n/a"}, 3000) {
				t.Error("unparseable date should never match")
			}
		})
	})
}

func TestReleaseYear(t *testing.T) {
	cases := []struct {
		date string
		year int
		ok   bool
	}{
		{"1981-12-04", 1981, true},
		{"1981-12", 1981, true},
		{"1981", 1981, true},
		{"", 0, false},
		{"19x", 0, false},
		{"abcd-01-01", 0, false},
	}

	for _, c := range cases {
		year, ok := TrackEntry{ReleaseDate: c.date}.ReleaseYear()
		if year != c.year || ok != c.ok {
			t.Errorf("ReleaseYear(%q) = (%d, %v), want (%d, %v)", c.date, year, ok, c.year, c.ok)
		}
	}
}

func TestGroupDuplicates(t *testing.T) {
	t.Run("groups by case-insensitive name and artists", func(t *testing.T) {
		entries := []TrackEntry{
			{Position: 0, URI: "uri:1", Name: "Song", Artists: []string{"A"}},
			{Position: 1, URI: "uri:2", Name: "song", Artists: []string{"a"}},
			{Position: 2, URI: "uri:3", Name: "Song", Artists: []string{"B"}},
		}

		groups := GroupDuplicates(entries)
		if len(groups) != 1 {
			t.Fatalf("expected 1 duplicate group, got %d", len(groups))
		}
		if len(groups[0].Entries) != 2 {
			t.Fatalf("expected 2 entries in group, got %d", len(groups[0].Entries))
		}
		if groups[0].Entries[0].Position != 0 || groups[0].Entries[1].Position != 1 {
			t.Error("expected group members in snapshot order")
		}
	})

	t.Run("different artist lineups stay apart", func(t *testing.T) {
		entries := []TrackEntry{
			{Name: "Song", Artists: []string{"A", "B"}},
			{Name: "Song", Artists: []string{"A"}},
		}
		if groups := GroupDuplicates(entries); len(groups) != 0 {
			t.Errorf("expected no groups, got %d", len(groups))
		}
	})

	t.Run("groups appear in first-seen order", func(t *testing.T) {
		entries := []TrackEntry{
			{Position: 0, Name: "Later", Artists: []string{"X"}},
			{Position: 1, Name: "Early", Artists: []string{"Y"}},
			{Position: 2, Name: "Early", Artists: []string{"Y"}},
			{Position: 3, Name: "Later", Artists: []string{"X"}},
		}

		groups := GroupDuplicates(entries)
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
		if groups[0].Entries[0].Name != "Later" {
			t.Errorf("expected first-seen group first, got %s", groups[0].Entries[0].Name)
		}
	})

	t.Run("no duplicates yields no groups", func(t *testing.T) {
		entries := []TrackEntry{
			{Name: "One", Artists: []string{"A"}},
			{Name: "Two", Artists: []string{"A"}},
		}
		if groups := GroupDuplicates(entries); groups != nil {
			t.Errorf("expected nil, got %v", groups)
		}
	})
}
