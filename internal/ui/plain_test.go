package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/tarrestore/internal/stats"
)

func runPlain(t *testing.T, evs ...Event) (string, *plainPresenter) {
	t.Helper()
	var out, errOut bytes.Buffer
	p := &plainPresenter{w: &out, errW: &errOut, stats: stats.NewCollector()}

	events := make(chan Event, len(evs))
	for _, ev := range evs {
		events <- ev
	}
	close(events)
	require.NoError(t, p.Run(events))
	return out.String(), p
}

func TestPlainPresenterFileExtracted(t *testing.T) {
	out, _ := runPlain(t,
		Event{Type: FileExtracted, Path: "dir/file.txt", Size: 1024},
		Event{Type: FileExtracted, Path: "dir/big.bin", Size: 100 << 20},
	)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "dir/file.txt  1.0 KiB", lines[0])
	assert.Equal(t, "dir/big.bin  100.0 MiB", lines[1])
}

func TestPlainPresenterEntryFailed(t *testing.T) {
	out, _ := runPlain(t, Event{Type: EntryFailed, Path: "fail.txt", Size: 512, Error: assert.AnError})

	assert.Contains(t, out, "fail.txt")
	assert.Contains(t, out, assert.AnError.Error())
}

func TestPlainPresenterEntrySkipped(t *testing.T) {
	out, _ := runPlain(t, Event{Type: EntrySkipped, Path: "skip.txt"})
	assert.Equal(t, "skip.txt  skipped\n", out)
}

func TestPlainPresenterParts(t *testing.T) {
	out, _ := runPlain(t,
		Event{Type: PartStarted, Part: "/backups/app.tar.0", Size: 2048},
		Event{Type: DirCreated, Path: "d/"},
		Event{Type: PartCompleted, Part: "/backups/app.tar.0"},
		Event{Type: PartRemoved, Part: "/backups/app.tar.0"},
	)
	assert.Equal(t, "part: app.tar.0  2.0 KiB\nremoved: /backups/app.tar.0\n", out)
}

func TestPlainPresenterProgress(t *testing.T) {
	var errOut bytes.Buffer
	c := stats.NewCollector()
	c.AddBytesTotal(4096)
	c.AddBytesRead(1024)
	c.AddFilesExtracted(3)

	p := &plainPresenter{errW: &errOut, stats: c}
	p.printProgress()
	assert.Contains(t, errOut.String(), "progress: 25% 1.0 KiB/4.0 KiB 3 files")
}

func TestPlainPresenterSummary(t *testing.T) {
	c := stats.NewCollector()
	c.AddFilesExtracted(1200)
	c.AddDirsCreated(4)
	c.AddBytesExtracted(1 << 20)

	p := &plainPresenter{stats: c}
	s := p.Summary()
	assert.Contains(t, s, "done ✓")
	assert.Contains(t, s, "files 1,200")
	assert.Contains(t, s, "dirs 4")
	assert.Contains(t, s, "size 1.0 MiB")
	assert.Contains(t, s, "errors 0")
	assert.NotContains(t, s, "parts")
}

func TestCompletionSummaryFailures(t *testing.T) {
	s := CompletionSummary(stats.Snapshot{PartsDone: 3, EntriesSkipped: 2, EntriesFailed: 1})
	assert.Contains(t, s, "done ✗")
	assert.Contains(t, s, "parts 3")
	assert.Contains(t, s, "skipped 2")
	assert.True(t, strings.HasSuffix(s, "errors 1"))
}

func TestQuietPresenter(t *testing.T) {
	c := stats.NewCollector()
	p := NewPresenter(Config{Quiet: true, Stats: c})

	events := make(chan Event, 1)
	events <- Event{Type: FileExtracted, Path: "a"}
	close(events)
	require.NoError(t, p.Run(events))
	assert.Empty(t, p.Summary())

	c.AddEntriesFailed(1)
	assert.Contains(t, p.Summary(), "errors 1")
}

func TestNewPresenterSelection(t *testing.T) {
	c := stats.NewCollector()
	assert.IsType(t, &quietPresenter{}, NewPresenter(Config{Quiet: true, IsTTY: true, Stats: c}))
	assert.IsType(t, &plainPresenter{}, NewPresenter(Config{Stats: c}))
	assert.IsType(t, &plainPresenter{}, NewPresenter(Config{IsTTY: true, NoProgress: true, Stats: c}))

	hud, ok := NewPresenter(Config{IsTTY: true, Stats: c}).(*hudPresenter)
	require.True(t, ok)
	assert.Equal(t, 80, hud.width)
}
