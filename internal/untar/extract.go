package untar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/bamsammich/tarrestore/internal/event"
	"github.com/bamsammich/tarrestore/internal/filter"
	"github.com/bamsammich/tarrestore/internal/owner"
	"github.com/bamsammich/tarrestore/internal/platform"
	"github.com/bamsammich/tarrestore/internal/tarfmt"
)

// extractMode is applied to every extracted file and directory regardless
// of the mode stored in the archive. Symlinks keep their own mode.
const extractMode os.FileMode = 0o700

func (s *scan) setDest(destDir string) error {
	abs, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("%w: destination %s: %w", ErrInvalidArgument, destDir, err)
	}
	if err := platform.CreateDir(abs); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	s.destDir = abs
	return nil
}

// target maps an entry name to its path under destDir. Names are joined
// below destDir even when absolute; a name climbing out with ".." is
// rejected, and parent directories are resolved so that symlinks extracted
// earlier cannot redirect writes outside destDir. A symlink in the final
// component is handled by platform, which replaces it instead of following.
func (s *scan) target(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty entry name", ErrInvalidArgument)
	}
	composed := len(s.destDir) + len(name)
	if !strings.HasSuffix(s.destDir, "/") {
		composed++
	}
	if composed >= tarfmt.PathMaxLen {
		return "", fmt.Errorf("%w: path for %q is %d bytes, limit %d",
			ErrInvalidArgument, name, composed, tarfmt.PathMaxLen)
	}

	rel := filepath.Clean(strings.TrimLeft(filepath.FromSlash(name), string(filepath.Separator)))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes the destination", ErrInvalidArgument, name)
	}
	if rel == "." {
		return s.destDir, nil
	}

	dir, err := securejoin.SecureJoin(s.destDir, filepath.Dir(rel))
	if err != nil {
		return "", fmt.Errorf("%w: resolve %q: %w", ErrInvalidArgument, name, err)
	}
	return filepath.Join(dir, filepath.Base(rel)), nil
}

// materialize writes one entry under destDir. Problems confined to the
// entry are logged and counted; only cancellation aborts the scan.
func (s *scan) materialize(ctx context.Context, rec record) error {
	switch rec.typ {
	case tarfmt.RegularFile, tarfmt.SplitStart, tarfmt.SplitContinuation, tarfmt.SplitEnd,
		tarfmt.Directory, tarfmt.Symlink:
	default:
		s.skip(rec, "unsupported entry type")
		return nil
	}

	size := rec.size
	if rec.typ.IsSplit() {
		// Pieces of one file must all be kept or all be skipped, so only
		// name rules apply to them.
		size = filter.UnknownSize
	}
	if !s.r.cfg.Filter.Match(rec.name, rec.typ == tarfmt.Directory, size) {
		s.skip(rec, "filtered")
		return nil
	}

	path, err := s.target(rec.name)
	if err != nil {
		s.fail(rec, err)
		return nil
	}

	switch rec.typ {
	case tarfmt.Directory:
		s.makeDir(rec, path)
		return nil
	case tarfmt.Symlink:
		s.makeSymlink(rec, path)
		return nil
	default:
		return s.writeFile(ctx, rec, path)
	}
}

// writeFile copies a regular-file or split payload. Split continuation and
// end pieces append to what earlier pieces wrote. A payload cut short by
// the end of the archive removes the destination file.
func (s *scan) writeFile(ctx context.Context, rec record, path string) error {
	dst, off, err := platform.CreateFile(path, rec.typ.Appends())
	if err != nil {
		s.fail(rec, fmt.Errorf("%w: create %s: %w", ErrIO, path, err))
		return nil
	}

	res, err := platform.CopyRange(platform.CopyParams{
		Ctx:       ctx,
		Src:       s.f,
		Dst:       dst,
		Limiter:   s.r.cfg.Limiter,
		SrcOffset: rec.dataPos,
		DstOffset: off,
		Length:    rec.size,
		BufSize:   s.r.cfg.ChunkSize,
	})
	closeErr := dst.Close()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	switch {
	case err != nil:
		err = fmt.Errorf("%w: copy %s: %w", ErrIO, rec.name, err)
	case res.BytesWritten < rec.size:
		err = fmt.Errorf("%w: payload of %s truncated: %d of %d bytes",
			ErrIO, rec.name, res.BytesWritten, rec.size)
	case closeErr != nil:
		err = fmt.Errorf("%w: close %s: %w", ErrIO, path, closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.log.Debug("remove partial file", "path", path, "error", rmErr)
		}
		s.fail(rec, err)
		return nil
	}

	s.setOwnership(rec, path, false)
	s.r.cfg.Stats.AddFilesExtracted(1)
	s.r.cfg.Stats.AddBytesExtracted(res.BytesWritten)
	s.r.emit(event.Event{Type: event.FileExtracted, Part: s.path, Path: rec.name, Size: rec.size})
	s.log.Debug("file extracted",
		"path", rec.name, "size", rec.size, "type", rec.typ.String(), "method", res.Method.String())
	return nil
}

func (s *scan) makeDir(rec record, path string) {
	if err := platform.PlaceDir(path); err != nil {
		s.fail(rec, fmt.Errorf("%w: %w", ErrIO, err))
		return
	}
	s.setOwnership(rec, path, false)
	s.r.cfg.Stats.AddDirsCreated(1)
	s.r.emit(event.Event{Type: event.DirCreated, Part: s.path, Path: rec.name})
}

func (s *scan) makeSymlink(rec record, path string) {
	if err := platform.CreateSymlink(rec.link, path); err != nil {
		s.fail(rec, fmt.Errorf("%w: %w", ErrIO, err))
		return
	}
	s.setOwnership(rec, path, true)
	s.r.cfg.Stats.AddSymlinksCreated(1)
	s.r.emit(event.Event{Type: event.SymlinkCreated, Part: s.path, Path: rec.name})
}

// setOwnership applies extractMode and the remapped owner. Failures are
// logged only: an unprivileged restore cannot chown.
func (s *scan) setOwnership(rec record, path string, symlink bool) {
	uid, gid := owner.Remap(rec.uid, rec.gid, s.owner)
	if err := platform.SetOwnership(path, uid, gid, extractMode, symlink); err != nil {
		s.log.Debug("set ownership", "path", path, "uid", uid, "gid", gid, "error", err)
	}
}

func (s *scan) skip(rec record, reason string) {
	s.r.cfg.Stats.AddEntriesSkipped(1)
	s.r.emit(event.Event{Type: event.EntrySkipped, Part: s.path, Path: rec.name, Size: rec.size})
	s.log.Debug("entry skipped", "path", rec.name, "type", rec.typ.String(), "reason", reason)
}

func (s *scan) fail(rec record, err error) {
	s.r.cfg.Stats.AddEntriesFailed(1)
	s.r.emit(event.Event{Type: event.EntryFailed, Part: s.path, Path: rec.name, Size: rec.size, Error: err})
	s.log.Warn("entry failed", "path", rec.name, "type", rec.typ.String(), "error", err)
}
