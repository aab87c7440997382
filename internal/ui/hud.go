package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bamsammich/tarrestore/internal/stats"
)

// hudPresenter provides the terminal display: a scrolling feed of extracted
// entries above a 2-line HUD that redraws in place.
type hudPresenter struct {
	w     io.Writer
	stats *stats.Collector
	width int

	part         string
	hudDrawn     bool
	hudLineCount int
	lastHUDDraw  time.Time
}

const (
	sparklineWidth   = 20
	progressBarWidth = 20
	hudMinInterval   = 50 * time.Millisecond
)

func (p *hudPresenter) Run(events <-chan Event) error {
	// First tick comes early to seed the speed samples.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	// Redraw while a large payload is copied and no events arrive.
	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDrawHUD()

		case <-redrawTicker.C:
			p.drawHUD()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case PartStarted:
		p.part = filepath.Base(ev.Part)
		p.feed(fmt.Sprintf("%s  %s",
			stylePart.Render("▸ "+p.part), styleFileSize.Render(FormatBytes(ev.Size))))

	case FileExtracted:
		line := fmt.Sprintf("%s  %s  %s",
			styleIconDone.Render("✓"), p.styledPath(ev.Path), styleFileSize.Render(FormatBytes(ev.Size)))
		if speed := p.stats.RollingSpeed(5); speed > 0 {
			line += "  " + styleSpeed.Render(FormatRate(speed))
		}
		p.feed(line)

	case EntryFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		p.feed(fmt.Sprintf("%s  %s  %s",
			styleIconFailed.Render("✗"), p.styledPath(ev.Path), styleError.Render(errMsg)))

	case EntrySkipped:
		p.feed(fmt.Sprintf("%s  %s  %s",
			styleIconSkipped.Render("–"), p.styledPath(ev.Path), styleIconSkipped.Render("skipped")))

	case PartRemoved:
		p.feed(styleIconSkipped.Render("removed " + filepath.Base(ev.Part)))

	case DirCreated, SymlinkCreated, EntryListed, PartCompleted:
		// counted by the collector only
	}
}

// feed prints one line above the HUD.
func (p *hudPresenter) feed(line string) {
	p.clearHUD()
	fmt.Fprintln(p.w, line)
	p.drawHUD()
}

func (p *hudPresenter) maybeDrawHUD() {
	if time.Since(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	snap := p.stats.Snapshot()
	p.clearHUD()

	var pct float64
	if snap.BytesTotal > 0 {
		pct = float64(snap.BytesRead) / float64(snap.BytesTotal)
	}

	// Line 1: throughput sparkline, speed, archive bytes read.
	spark := Sparkline(p.stats.SparklineData(sparklineWidth), sparklineWidth)
	fmt.Fprintf(p.w, "       %s   %s   %s / %s\n",
		styleSparkline.Render(spark), styleSpeed.Render(FormatRate(p.stats.RollingSpeed(10))),
		FormatBytes(snap.BytesRead), FormatBytes(snap.BytesTotal))

	// Line 2: progress bar, counts, eta.
	fmt.Fprintf(p.w, " %3.0f%%  %s   %s files   %s dirs   eta %s\n",
		pct*100, styledBar(pct, progressBarWidth),
		FormatCount(snap.FilesExtracted), FormatCount(snap.DirsCreated),
		FormatETA(p.stats.ETA()))

	p.hudDrawn = true
	p.hudLineCount = 2
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	// Move cursor up N lines and clear to end of screen.
	fmt.Fprintf(p.w, "\033[%dA\033[J", p.hudLineCount)
	p.hudDrawn = false
}

func (p *hudPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

// styledPath dims the directory part of an entry name so the file name
// stands out, shortening it to fit the terminal.
func (p *hudPresenter) styledPath(name string) string {
	name = truncPath(strings.TrimSuffix(name, "/"), p.width-30)
	dir, base := filepath.Split(name)
	if dir == "" {
		return base
	}
	return styleFileDir.Render(dir) + base
}

func styledBar(pct float64, width int) string {
	bar := []rune(ProgressBar(pct, width))
	filled := strings.Count(string(bar), "▪")
	return styleProgressFilled.Render(string(bar[:filled])) +
		styleProgressEmpty.Render(string(bar[filled:]))
}

// truncPath shortens a path to fit within maxLen bytes, keeping its tail.
func truncPath(path string, maxLen int) string {
	if maxLen <= 0 || len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
