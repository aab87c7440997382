package ui

import (
	"fmt"

	"github.com/bamsammich/tarrestore/internal/stats"
)

// CompletionSummary builds the final summary line from a snapshot.
// Format: done ✓  files 1,204  dirs 88  links 12  size 2.1 GiB  avg 641 MiB/s  time 3m 17s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesExtracted) / snap.Elapsed.Seconds()
	}

	icon := "✓"
	if snap.EntriesFailed > 0 {
		icon = "✗"
	}

	base := fmt.Sprintf("done %s  files %s  dirs %s  links %s  size %s  avg %s  time %s",
		icon,
		FormatCount(snap.FilesExtracted),
		FormatCount(snap.DirsCreated),
		FormatCount(snap.SymlinksCreated),
		FormatBytes(snap.BytesExtracted),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
	)
	if snap.PartsDone > 1 {
		base += fmt.Sprintf("  parts %d", snap.PartsDone)
	}
	if snap.EntriesSkipped > 0 {
		base += fmt.Sprintf("  skipped %s", FormatCount(snap.EntriesSkipped))
	}
	return base + fmt.Sprintf("  errors %d", snap.EntriesFailed)
}
