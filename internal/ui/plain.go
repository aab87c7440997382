package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/bamsammich/tarrestore/internal/stats"
)

// plainPresenter prints one line per extracted or failed entry to w and
// periodic progress to errW. It is used when stderr is not a terminal.
type plainPresenter struct {
	w     io.Writer
	errW  io.Writer
	stats *stats.Collector
}

const plainProgressInterval = 5 * time.Second

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var ticks int

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			ticks++
			if time.Duration(ticks)*time.Second >= plainProgressInterval {
				ticks = 0
				p.printProgress()
			}
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case PartStarted:
		fmt.Fprintf(p.w, "part: %s  %s\n", filepath.Base(ev.Part), FormatBytes(ev.Size))
	case FileExtracted:
		fmt.Fprintf(p.w, "%s  %s\n", ev.Path, FormatBytes(ev.Size))
	case EntryFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s  %s\n", ev.Path, FormatBytes(ev.Size), errMsg)
	case EntrySkipped:
		fmt.Fprintf(p.w, "%s  skipped\n", ev.Path)
	case PartRemoved:
		fmt.Fprintf(p.w, "removed: %s\n", ev.Part)
	case DirCreated, SymlinkCreated, EntryListed, PartCompleted:
		// counted by the collector only
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesRead) / float64(snap.BytesTotal) * 100
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s files %s eta %s\n",
			pct,
			FormatBytes(snap.BytesRead), FormatBytes(snap.BytesTotal),
			FormatCount(snap.FilesExtracted),
			FormatRate(p.stats.RollingSpeed(10)),
			FormatETA(p.stats.ETA()),
		)
		return
	}
	fmt.Fprintf(p.errW, "progress: %s read %s files\n",
		FormatBytes(snap.BytesRead), FormatCount(snap.FilesExtracted))
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
