// Package untar restores ustar archives written by the backup pipeline,
// including archives split into several part files described by a manifest.
//
// A Reader scans an archive one 512-byte block at a time. Depending on the
// operation it lists the payload-carrying entries, materializes every entry
// under a destination directory with remapped ownership, or only reports
// whether the archive is a split part. Partial output is never rolled back.
package untar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bamsammich/tarrestore/internal/event"
	"github.com/bamsammich/tarrestore/internal/filter"
	"github.com/bamsammich/tarrestore/internal/manifest"
	"github.com/bamsammich/tarrestore/internal/stats"
	"github.com/bamsammich/tarrestore/internal/tarfmt"
)

// MaxChunkSize bounds Config.ChunkSize.
const MaxChunkSize = 64 << 20

// Config controls a Reader. The zero value is usable.
type Config struct {
	// ChunkSize is the payload copy chunk. Zero means tarfmt.ReadBuffSize.
	ChunkSize int

	// Filter selects which entries are materialized. Nil keeps everything.
	Filter *filter.Chain

	// Events receives progress events. Sends never block; events are
	// dropped when the channel is full.
	Events chan<- event.Event

	// Stats receives counters. Nil disables counting.
	Stats *stats.Collector

	// Limiter caps payload write throughput. Nil means unthrottled.
	Limiter *rate.Limiter

	// KeepSource disables deleting archives and split parts once they have
	// been unpacked.
	KeepSource bool

	Logger *slog.Logger
}

// Entry is one payload-carrying entry found by List.
type Entry struct {
	Name       string
	Size       int64
	DataOffset int64 // offset of the first payload byte in the archive
	Type       tarfmt.EntryType
}

// Reader runs archive operations. It keeps no per-archive state, so one
// Reader may serve concurrent calls on different archives; concurrent
// unpacks into the same destination must be serialized by the caller.
type Reader struct {
	cfg Config
}

// New returns a Reader for cfg.
func New(cfg Config) *Reader {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = tarfmt.ReadBuffSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	return &Reader{cfg: cfg}
}

// Stats returns the collector counting this Reader's work.
func (r *Reader) Stats() *stats.Collector { return r.cfg.Stats }

// List returns the regular-file and split-payload entries of the archive at
// path, in archive order, without writing anything.
func (r *Reader) List(ctx context.Context, path string) ([]Entry, error) {
	s, err := r.open(path, modeList, r.cfg.Logger)
	if err != nil {
		return nil, err
	}
	defer s.close()

	if err := s.run(ctx); err != nil {
		return nil, err
	}
	return s.entries, nil
}

// Unpack extracts the archive at path under destDir, remapping entry
// ownership for owner (0 disables remapping). The archive is deleted once
// it has been unpacked without error, unless Config.KeepSource is set.
func (r *Reader) Unpack(ctx context.Context, path, destDir string, owner uint32) error {
	log := r.restoreLogger("unpack", path)
	if err := r.unpackFile(ctx, log, path, destDir, owner, false); err != nil {
		log.Error("unpack failed", "error", err)
		return err
	}
	r.removeSource(log, path)
	log.Info("unpack complete", "stats", r.cfg.Stats.Snapshot().String())
	return nil
}

// UnpackPart extracts one split part under destDir with split-tail
// tolerance. The part is left in place.
func (r *Reader) UnpackPart(ctx context.Context, partPath, destDir string, owner uint32) error {
	log := r.restoreLogger("unpack-part", partPath)
	if err := r.unpackFile(ctx, log, partPath, destDir, owner, true); err != nil {
		log.Error("unpack part failed", "error", err)
		return err
	}
	return nil
}

// UnpackSplit validates the manifest at manifestPath against the parts on
// disk, then unpacks every listed part in manifest order under destDir.
// Each part is deleted right after it unpacks, so a failure in a later part
// leaves the earlier ones consumed. Parts missing from disk are skipped.
func (r *Reader) UnpackSplit(ctx context.Context, manifestPath, destDir string, owner uint32) error {
	log := r.restoreLogger("unpack-split", manifestPath)
	if manifestPath == "" || destDir == "" {
		return fmt.Errorf("%w: manifest and destination paths are required", ErrInvalidArgument)
	}

	parts, err := manifest.Resolve(manifestPath)
	if err != nil {
		err = classifyManifestErr(err)
		log.Error("manifest rejected", "error", err)
		return err
	}
	log.Info("manifest resolved", "parts", len(parts))

	for i, p := range parts {
		partLog := log.With("part", p.Path, "index", i)
		if err := r.unpackFile(ctx, partLog, p.Path, destDir, owner, true); err != nil {
			partLog.Error("split part failed", "error", err)
			return fmt.Errorf("part %s: %w", p.Path, err)
		}
		r.removeSource(partLog, p.Path)
	}

	log.Info("split unpack complete", "stats", r.cfg.Stats.Snapshot().String())
	return nil
}

// IsSplit reports whether the first real entry of the archive at path is a
// split payload. rootHint is the intended destination and is only logged.
// Any error reading the archive yields false.
func (r *Reader) IsSplit(ctx context.Context, path, rootHint string) bool {
	log := r.cfg.Logger.With("archive", path, "root", rootHint)
	s, err := r.open(path, modeCheckSplit, log)
	if err != nil {
		log.Warn("split check failed", "error", err)
		return false
	}
	defer s.close()

	if err := s.run(ctx); err != nil {
		log.Warn("split check failed", "error", err)
	}
	log.Debug("split check", "split", s.isSplit)
	return s.isSplit
}

func (r *Reader) unpackFile(
	ctx context.Context,
	log *slog.Logger,
	path, destDir string,
	owner uint32,
	split bool,
) error {
	if destDir == "" {
		return fmt.Errorf("%w: empty destination", ErrInvalidArgument)
	}
	if r.cfg.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk size %d exceeds %d", ErrAllocation, r.cfg.ChunkSize, MaxChunkSize)
	}

	s, err := r.open(path, modeUnpack, log)
	if err != nil {
		return err
	}
	defer s.close()

	s.split = split
	s.owner = owner
	if err := s.setDest(destDir); err != nil {
		return err
	}

	r.emit(event.Event{Type: event.PartStarted, Part: path, Size: s.size})
	if err := s.run(ctx); err != nil {
		return err
	}
	r.cfg.Stats.AddPartsDone(1)
	r.emit(event.Event{Type: event.PartCompleted, Part: path, Size: s.size})
	return nil
}

func (r *Reader) removeSource(log *slog.Logger, path string) {
	if r.cfg.KeepSource {
		return
	}
	if err := os.Remove(path); err != nil {
		log.Warn("failed to delete consumed archive", "path", path, "error", err)
		return
	}
	r.cfg.Stats.AddPartsRemoved(1)
	r.emit(event.Event{Type: event.PartRemoved, Part: path})
}

// restoreLogger tags one restore with a short correlation id.
func (r *Reader) restoreLogger(op, path string) *slog.Logger {
	return r.cfg.Logger.With("restore", uuid.NewString()[:8], "op", op, "archive", path)
}

func (r *Reader) emit(e event.Event) {
	if r.cfg.Events == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case r.cfg.Events <- e:
	default:
	}
}

func classifyManifestErr(err error) error {
	switch {
	case errors.Is(err, manifest.ErrMalformed), errors.Is(err, manifest.ErrSizeMismatch):
		return fmt.Errorf("%w: %w", ErrFormat, err)
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}
