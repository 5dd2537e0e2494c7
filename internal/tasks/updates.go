package tasks

import (
	"fmt"

	"github.com/spotifire/spotifire/internal/models"
)

// ProgressUpdate represents a progress event during a playlist assembly run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Run phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Phase enumerates the states of the playlist assembly state machine.
type Phase int

const (
	PhaseRequested Phase = iota
	PhaseGenerating
	PhaseResolving
	PhaseCreatingContainer
	PhaseAttachingTracks
	PhaseAttachingArtwork
	PhaseDelivered
	PhaseFailedNoAuth
	PhaseFailedUpstream
	PhaseFailedEmpty
)

func (p Phase) String() string {
	switch p {
	case PhaseRequested:
		return "requested"
	case PhaseGenerating:
		return "generating"
	case PhaseResolving:
		return "resolving"
	case PhaseCreatingContainer:
		return "creating_container"
	case PhaseAttachingTracks:
		return "attaching_tracks"
	case PhaseAttachingArtwork:
		return "attaching_artwork"
	case PhaseDelivered:
		return "delivered"
	case PhaseFailedNoAuth:
		return "failed_no_auth"
	case PhaseFailedUpstream:
		return "failed_upstream"
	case PhaseFailedEmpty:
		return "failed_empty"
	default:
		return ""
	}
}

// Terminal reports whether the phase ends a run.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseDelivered, PhaseFailedNoAuth, PhaseFailedUpstream, PhaseFailedEmpty:
		return true
	}
	return false
}

func generatingUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseGenerating,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Generating %d song candidates...", count),
	}
}

func resolvingUpdate(step, total int, candidate models.SongCandidate) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseResolving,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, candidate.Artist, candidate.Song),
	}
}

func creatingContainerUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseCreatingContainer,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func attachingTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseAttachingTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Attaching %d tracks...", count),
	}
}

func attachingArtworkUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseAttachingArtwork,
		Step:    1,
		Total:   1,
		Message: "Generating and attaching cover art...",
	}
}

func deliveredUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseDelivered,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist delivered: %s (%d songs)", result.Name, result.ResolvedCount),
		Data:    result,
	}
}
