package tasks

import "fmt"

// ProgressUpdate represents a progress event during a cleaning operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ScanTracks Phase = iota
	ClassifyTracks
	RemoveTracks
)

func (p Phase) String() string {
	switch p {
	case ScanTracks:
		return "scan_tracks"
	case ClassifyTracks:
		return "classify_tracks"
	case RemoveTracks:
		return "remove_tracks"
	default:
		return ""
	}
}

func scanningUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scanning playlist %s...", playlistID),
	}
}

func scannedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scanned %d tracks", count),
	}
}

func matchedUpdate(matched, scanned int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyTracks,
		Step:    matched,
		Total:   scanned,
		Message: fmt.Sprintf("Matched %d of %d tracks", matched, scanned),
	}
}

func removingUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemoveTracks,
		Step:    0,
		Total:   count,
		Message: fmt.Sprintf("Removing %d track(s)...", count),
	}
}

func removedUpdate(removed, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemoveTracks,
		Step:    removed,
		Total:   total,
		Message: fmt.Sprintf("Removed %d of %d track(s)", removed, total),
	}
}
