package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/bamsammich/tarrestore/internal/config"
	"github.com/bamsammich/tarrestore/internal/stats"
	"github.com/bamsammich/tarrestore/internal/tarfmt"
	"github.com/bamsammich/tarrestore/internal/tartest"
	"github.com/bamsammich/tarrestore/internal/untar"
)

// execute runs the CLI with an empty config home and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.DiscardHandler)) })
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *exitError
	require.True(t, errors.As(err, &exitErr), "want exitError, got %v", err)
	return exitErr.code
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "tarrestore dev\n", out)
}

func TestUnpackCommand(t *testing.T) {
	src := t.TempDir()
	archive := tartest.New().
		Dir("app/").
		File("app/a.txt", []byte("alpha")).
		File("app/debug.log", []byte("noise")).
		End().
		WriteFile(t, src, "app.tar")
	dest := t.TempDir()

	out, err := execute(t, "unpack", "--no-progress", "--keep-source", "--exclude", "*.log", archive, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "app", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
	assert.NoFileExists(t, filepath.Join(dest, "app", "debug.log"))
	assert.FileExists(t, archive)
	assert.Contains(t, out, "app/a.txt")
	assert.Contains(t, out, "app/debug.log  skipped")
}

func TestUnpackCommandFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.tar")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	_, err := execute(t, "unpack", "--no-progress", path, t.TempDir())
	assert.Equal(t, 2, exitCode(t, err))
}

func TestUnpackSplitCommand(t *testing.T) {
	dir := t.TempDir()
	part0 := tartest.New().
		Add(tartest.Header{Name: "big", Type: tarfmt.TypeSplitStart, Data: []byte("first half ")}).
		End()
	part1 := tartest.New().
		Add(tartest.Header{Name: "big", Type: tarfmt.TypeSplitEnd, Data: []byte("second half")}).
		End()
	part0.WriteFile(t, dir, "b.0")
	part1.WriteFile(t, dir, "b.1")
	manifestPath := filepath.Join(dir, "b.manifest")
	manifest := fmt.Sprintf("b.0|%d\nb.1|%d\n", len(part0.Bytes()), len(part1.Bytes()))
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o644))

	dest := t.TempDir()
	_, err := execute(t, "unpack-split", "-q", manifestPath, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "big"))
	require.NoError(t, err)
	assert.Equal(t, "first half second half", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "b.0"))
	assert.NoFileExists(t, filepath.Join(dir, "b.1"))
}

func TestListCommand(t *testing.T) {
	archive := tartest.New().
		Dir("d/").
		File("d/a.txt", []byte("hello")).
		End().
		WriteFile(t, t.TempDir(), "l.tar")

	out, err := execute(t, "list", archive)
	require.NoError(t, err)
	assert.Equal(t, "1024\t5\tfile\td/a.txt\n", out)

	out, err = execute(t, "list", "--digest", archive)
	require.NoError(t, err)
	sum := blake3.Sum256([]byte("hello"))
	assert.Equal(t, "1024\t5\tfile\t"+hex.EncodeToString(sum[:])+"\td/a.txt\n", out)
	assert.FileExists(t, archive)
}

func TestCheckSplitCommand(t *testing.T) {
	dir := t.TempDir()
	split := tartest.New().
		Add(tartest.Header{Name: "x", Type: tarfmt.TypeSplitContinue, Data: []byte("x")}).
		WriteFile(t, dir, "x.1")
	plain := tartest.New().File("x", []byte("x")).End().WriteFile(t, dir, "x.tar")

	out, err := execute(t, "check-split", split)
	require.NoError(t, err)
	assert.Equal(t, "split\n", out)

	out, err = execute(t, "check-split", plain, t.TempDir())
	assert.Equal(t, 1, exitCode(t, err))
	assert.Equal(t, "not split\n", out)
}

func TestFilterFlagOrdering(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	o := &restoreFlags{}
	addRestoreFlags(cmd, o)
	require.NoError(t, cmd.ParseFlags([]string{"--include", "keep.txt", "--exclude", "*.txt"}))

	assert.True(t, o.chain.Match("keep.txt", false, 1))
	assert.False(t, o.chain.Match("drop.txt", false, 1))
	assert.True(t, o.chain.Match("other.bin", false, 1))
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	o := &restoreFlags{}
	addRestoreFlags(cmd, o)
	require.NoError(t, cmd.ParseFlags([]string{"--owner", "20001"}))

	owner := uint32(30000)
	keep := true
	chunk := "1M"
	o.applyConfig(cmd, config.RestoreConfig{Owner: &owner, KeepSource: &keep, ChunkSize: &chunk})

	assert.Equal(t, uint32(20001), o.owner, "explicit flag wins")
	assert.True(t, o.keepSource)
	assert.Equal(t, "1M", o.chunkSize)
}

func TestReaderConfig(t *testing.T) {
	o := &restoreFlags{}
	addRestoreFlags(&cobra.Command{Use: "x"}, o)
	o.chunkSize, o.bwLimit, o.minSize, o.keepSource = "1M", "10M", "1K", true

	cfg, err := o.readerConfig()
	require.NoError(t, err)
	assert.Equal(t, 1<<20, cfg.ChunkSize)
	require.NotNil(t, cfg.Limiter)
	assert.InDelta(t, 10<<20, float64(cfg.Limiter.Limit()), 1)
	require.NotNil(t, cfg.Filter)
	assert.False(t, cfg.Filter.Match("small", false, 10))
	assert.True(t, cfg.KeepSource)

	o.chunkSize = "1G"
	cfg, err = o.readerConfig()
	require.NoError(t, err)
	assert.Equal(t, untar.MaxChunkSize+1, cfg.ChunkSize)

	o.chunkSize = "lots"
	_, err = o.readerConfig()
	require.ErrorContains(t, err, "--chunk-size")
}

func TestLogLevel(t *testing.T) {
	debug := "debug"
	bogus := "loud"

	level, err := logLevel(&globalFlags{}, config.LogConfig{})
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	level, err = logLevel(&globalFlags{}, config.LogConfig{Level: &debug})
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = logLevel(&globalFlags{quiet: true}, config.LogConfig{Level: &debug})
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = logLevel(&globalFlags{}, config.LogConfig{Level: &bogus})
	require.Error(t, err)
}

func TestRestoreResult(t *testing.T) {
	slog.SetDefault(slog.New(slog.DiscardHandler))

	assert.NoError(t, restoreResult(nil, stats.Snapshot{FilesExtracted: 3}))
	assert.Equal(t, 1, exitCode(t, restoreResult(nil, stats.Snapshot{EntriesFailed: 1})))
	assert.Equal(t, 1, exitCode(t, restoreResult(assert.AnError, stats.Snapshot{DirsCreated: 1})))
	assert.Equal(t, 2, exitCode(t, restoreResult(assert.AnError, stats.Snapshot{})))
}

func TestLogFileReceivesEvents(t *testing.T) {
	archive := tartest.New().File("a", []byte("a")).End().WriteFile(t, t.TempDir(), "a.tar")
	logPath := filepath.Join(t.TempDir(), "restore.json")

	_, err := execute(t, "unpack", "--no-progress", "--log", logPath, archive, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"restore.event"`)
	assert.Contains(t, string(data), `"type":"FileExtracted"`)
	assert.Contains(t, string(data), `"msg":"unpack complete"`)
}

func TestGenDocs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")

	out, err := execute(t, "gen-docs", "--format", "markdown", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote markdown docs")
	assert.FileExists(t, filepath.Join(dir, "tarrestore.md"))
	assert.FileExists(t, filepath.Join(dir, "tarrestore_unpack-split.md"))

	_, err = execute(t, "gen-docs", "--format", "pdf", "--dir", dir)
	require.ErrorContains(t, err, "man, markdown, rest, yaml")
}
