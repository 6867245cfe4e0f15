package tasks

import (
	"fmt"

	"github.com/desertthunder/karaoke/internal/models"
)

// ProgressUpdate represents a progress event during a catalog load.
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
	FetchSource Phase = iota
	SourceFailed
	MergeCatalog
	SaveSnapshot
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case SourceFailed:
		return "source_failed"
	case MergeCatalog:
		return "merge_catalog"
	case SaveSnapshot:
		return "save_snapshot"
	default:
		return ""
	}
}

func fetchingSourceUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s playlist...", name),
	}
}

func fetchedSourceUpdate(step, total int, name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d items)", step, total, name, count),
		Data:    count,
	}
}

func sourceFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SourceFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
		Data:    err,
	}
}

func mergedCatalogUpdate(catalog models.Catalog, duplicates int) ProgressUpdate {
	counts := catalog.Count()
	return ProgressUpdate{
		Phase: MergeCatalog,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Catalog ready: %d items (%d YouTube, %d Spotify, %d duplicates dropped)",
			len(catalog), counts[models.YouTube], counts[models.Spotify], duplicates),
		Data: catalog,
	}
}

func snapshotUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveSnapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved catalog snapshot (%d items)", count),
	}
}
