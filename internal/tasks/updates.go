package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchSaved Phase = iota
	FetchPlaylists
	FetchFollowed
	FetchTopArtists
	FetchTopTracks
	MergeSongs
	Aggregate
)

func (p Phase) String() string {
	switch p {
	case FetchSaved:
		return "fetch_saved"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchFollowed:
		return "fetch_followed"
	case FetchTopArtists:
		return "fetch_top_artists"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case MergeSongs:
		return "merge"
	case Aggregate:
		return "aggregate"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func savedTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSaved,
		Step:    count,
		Message: fmt.Sprintf("Fetched %d saved tracks...", count),
	}
}

func playlistTracksUpdate(step, total int, name string) ProgressUpdate {
	if name == "" {
		name = "Unnamed Playlist"
	}
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, name),
	}
}

func phaseUpdate(phase Phase, step, total int, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: message,
	}
}

func mergedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MergeSongs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Merged into %d unique songs", count),
	}
}
