package tasks

import (
	"fmt"

	"github.com/desertthunder/flix/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchTop Phase = iota
	FetchPopular
	FetchTopRated
	FetchDetails
	WriteExport
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchTop:
		return "fetch_top"
	case FetchPopular:
		return "fetch_popular"
	case FetchTopRated:
		return "fetch_top_rated"
	case FetchDetails:
		return "fetch_details"
	case WriteExport:
		return "write_export"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func sectionUpdate(phase Phase, step, total int, s *Section) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] %s: %d movies", step, total, s.Name, len(s.Movies))
	if s.Err != nil {
		msg = fmt.Sprintf("[%d/%d] %s: %v", step, total, s.Name, s.Err)
	}
	return ProgressUpdate{Phase: phase, Step: step, Total: total, Message: msg, Data: s}
}

func fetchingDetailsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetails,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching %d favorites...", total),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, id models.MovieID, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, id, reason),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
		Data:    path,
	}
}
