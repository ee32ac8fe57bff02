package tasks

import (
	"context"
	"io"
	"testing"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/shared"
	tu "github.com/MarsoL4/spotify-PlaylistCleaner/internal/testing"
)

func newTestEngine(svc services.Service) *CleanEngine {
	return NewCleanEngine(svc, shared.NewLogger(io.Discard))
}

func TestCleanEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnedPlaylists", func(t *testing.T) {
		t.Run("filters playlists by owner", func(t *testing.T) {
			svc := &tu.MockService{
				User: services.User{ID: "me", DisplayName: "Me"},
				Playlists: []services.Playlist{
					{ID: "pl1", Name: "Mine", OwnerID: "me"},
					{ID: "pl2", Name: "Followed", OwnerID: "someone-else"},
					{ID: "pl3", Name: "Also Mine", OwnerID: "me"},
				},
			}

			owned, err := newTestEngine(svc).OwnedPlaylists(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(owned) != 2 {
				t.Fatalf("expected 2 owned playlists, got %d", len(owned))
			}
			if owned[0].ID != "pl1" || owned[1].ID != "pl3" {
				t.Errorf("expected pl1 and pl3, got %s and %s", owned[0].ID, owned[1].ID)
			}
		})

		t.Run("nil service returns error", func(t *testing.T) {
			if _, err := newTestEngine(nil).OwnedPlaylists(ctx); err == nil {
				t.Error("expected error with nil service")
			}
		})
	})

	t.Run("RemoveByArtist", func(t *testing.T) {
		svc := &tu.MockService{
			ItemPages: map[string][]services.PlaylistItemsPage{
				"pl1": {
					{Items: []services.PlaylistItem{
						{Track: track("uri:a", "One", "", "Target")},
						{Track: track("uri:b", "Two", "", "Other")},
					}},
					{Items: []services.PlaylistItem{
						{Track: track("uri:c", "Three", "", "Other", "target")},
					}},
				},
			},
		}

		result, err := newTestEngine(svc).RemoveByArtist(ctx, nil, "pl1", "Target")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Scanned != 3 || result.Matched != 2 || result.Removed != 2 {
			t.Errorf("expected 3/2/2, got %d/%d/%d", result.Scanned, result.Matched, result.Removed)
		}
		if len(svc.RemovedURIs) != 1 {
			t.Fatalf("expected 1 removal call, got %d", len(svc.RemovedURIs))
		}
		if got := svc.RemovedURIs[0]; len(got) != 2 || got[0] != "uri:a" || got[1] != "uri:c" {
			t.Errorf("expected [uri:a uri:c], got %v", got)
		}
	})

	t.Run("RemoveByName", func(t *testing.T) {
		t.Run("removes all occurrences with one deduped call", func(t *testing.T) {
			svc := &tu.MockService{
				ItemPages: map[string][]services.PlaylistItemsPage{
					"pl1": {
						{Items: []services.PlaylistItem{
							{Track: track("uri:a", "Keeper", "", "X")},
							{Track: track("uri:b", "Repeat", "", "X")},
							{Track: track("uri:b", "Repeat", "", "X")},
						}},
					},
				},
			}

			result, err := newTestEngine(svc).RemoveByName(ctx, nil, "pl1", "repeat")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Matched != 2 {
				t.Errorf("expected 2 matched occurrences, got %d", result.Matched)
			}
			if len(svc.RemovedURIs) != 1 || len(svc.RemovedURIs[0]) != 1 {
				t.Fatalf("expected one call with one deduped uri, got %v", svc.RemovedURIs)
			}
		})

		t.Run("no match removes nothing", func(t *testing.T) {
			svc := &tu.MockService{
				ItemPages: map[string][]services.PlaylistItemsPage{
					"pl1": {{Items: []services.PlaylistItem{
						{Track: track("uri:a", "Something", "", "X")},
					}}},
				},
			}

			result, err := newTestEngine(svc).RemoveByName(ctx, nil, "pl1", "Absent")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Matched != 0 || result.Removed != 0 {
				t.Errorf("expected 0/0, got %d/%d", result.Matched, result.Removed)
			}
			if len(svc.RemovedURIs) != 0 {
				t.Error("expected no removal calls")
			}
		})
	})

	t.Run("duplicate flow", func(t *testing.T) {
		svc := &tu.MockService{
			ItemPages: map[string][]services.PlaylistItemsPage{
				"pl1": {
					{Items: []services.PlaylistItem{
						{AddedAt: "2020-01-01", Track: track("uri:a", "Unique", "", "X")},
						{AddedAt: "2020-01-02", Track: track("uri:d", "Dup", "", "Y")},
						{AddedAt: "2020-01-03", Track: track("uri:b", "Other", "", "X")},
						{AddedAt: "2020-01-04", Track: track("uri:d", "Dup", "", "Y")},
						{AddedAt: "2020-01-05", Track: track("uri:c", "Last", "", "X")},
					}},
				},
			},
		}
		engine := newTestEngine(svc)

		groups, err := engine.FindDuplicates(ctx, nil, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(groups) != 1 {
			t.Fatalf("expected 1 duplicate group, got %d", len(groups))
		}
		if len(groups[0].Entries) != 2 {
			t.Fatalf("expected 2 occurrences, got %d", len(groups[0].Entries))
		}

		// Keep the first occurrence, remove the second.
		picked := groups[0].Entries[1]
		removed := engine.RemoveOccurrences(ctx, nil, "pl1", []RemovalCandidate{
			{URI: picked.URI, Positions: []int{picked.Position}},
		})
		if removed != 1 {
			t.Errorf("expected 1 removed, got %d", removed)
		}
		if len(svc.RemovedOccurrences) != 1 {
			t.Fatalf("expected 1 positional call, got %d", len(svc.RemovedOccurrences))
		}
		occ := svc.RemovedOccurrences[0]
		if len(occ) != 1 || occ[0].URI != "uri:d" || len(occ[0].Positions) != 1 || occ[0].Positions[0] != 3 {
			t.Errorf("expected uri:d at position 3, got %v", occ)
		}
	})

	t.Run("RemoveOccurrences with no picks removes nothing", func(t *testing.T) {
		svc := &tu.MockService{}
		if removed := newTestEngine(svc).RemoveOccurrences(ctx, nil, "pl1", nil); removed != 0 {
			t.Errorf("expected 0, got %d", removed)
		}
		if len(svc.RemovedOccurrences) != 0 {
			t.Error("expected no calls")
		}
	})

	t.Run("year flow", func(t *testing.T) {
		svc := &tu.MockService{
			ItemPages: map[string][]services.PlaylistItemsPage{
				"pl1": {
					{Items: []services.PlaylistItem{
						{Track: track("uri:old", "Old", "1999-06-01", "X")},
						{Track: track("uri:new", "New", "2015-06-01", "X")},
						{Track: track("uri:old", "Old", "1999-06-01", "X")},
						{Track: track("uri:nodate", "Undated", "", "X")},
						{Track: track("uri:edge", "Edge", "2010-01-01", "X")},
					}},
				},
			},
		}
		engine := newTestEngine(svc)

		matches, err := engine.FindBeforeYear(ctx, nil, "pl1", 2010)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected 1 unique match, got %d", len(matches))
		}
		if matches[0].URI != "uri:old" {
			t.Errorf("expected uri:old, got %s", matches[0].URI)
		}

		removed := engine.RemoveTracks(ctx, nil, "pl1", []string{"uri:old"})
		if removed != 1 {
			t.Errorf("expected 1 removed, got %d", removed)
		}
		if len(svc.RemovedURIs) != 1 || svc.RemovedURIs[0][0] != "uri:old" {
			t.Errorf("expected identity removal of uri:old, got %v", svc.RemovedURIs)
		}
	})

	t.Run("progress", func(t *testing.T) {
		t.Run("reports scan and removal phases", func(t *testing.T) {
			svc := &tu.MockService{
				ItemPages: map[string][]services.PlaylistItemsPage{
					"pl1": {{Items: []services.PlaylistItem{
						{Track: track("uri:a", "One", "", "Target")},
					}}},
				},
			}

			progress := make(chan ProgressUpdate, 16)
			if _, err := newTestEngine(svc).RemoveByArtist(ctx, progress, "pl1", "Target"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			close(progress)

			var phases []Phase
			for update := range progress {
				phases = append(phases, update.Phase)
			}
			if len(phases) < 4 {
				t.Fatalf("expected at least 4 updates, got %d", len(phases))
			}
			if phases[0] != ScanTracks {
				t.Errorf("expected first phase %v, got %v", ScanTracks, phases[0])
			}
			if phases[len(phases)-1] != RemoveTracks {
				t.Errorf("expected last phase %v, got %v", RemoveTracks, phases[len(phases)-1])
			}
		})

		t.Run("full channel never blocks", func(t *testing.T) {
			svc := &tu.MockService{
				ItemPages: map[string][]services.PlaylistItemsPage{
					"pl1": {{Items: []services.PlaylistItem{
						{Track: track("uri:a", "One", "", "X")},
					}}},
				},
			}

			progress := make(chan ProgressUpdate) // unbuffered, nobody reading
			if _, err := newTestEngine(svc).Scan(ctx, progress, "pl1"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	})
}
