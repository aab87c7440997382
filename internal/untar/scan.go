package untar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bamsammich/tarrestore/internal/event"
	"github.com/bamsammich/tarrestore/internal/tarfmt"
)

type mode int

const (
	modeList mode = iota
	modeUnpack
	modeCheckSplit
)

func (m mode) String() string {
	switch m {
	case modeList:
		return "list"
	case modeUnpack:
		return "unpack"
	case modeCheckSplit:
		return "check-split"
	default:
		return "unknown"
	}
}

// scan is the state of one pass over one archive file. Besides the read
// position, the only state carried from one header to the next is the
// pending GNU long name and long link.
type scan struct {
	r    *Reader
	log  *slog.Logger
	mode mode

	f    *os.File
	path string
	size int64
	pos  int64 // offset of the next unread block

	// split tolerates the truncated tail a split part may end with.
	split   bool
	destDir string
	owner   uint32

	longName *string
	longLink *string

	block   [tarfmt.BlockSize]byte
	entries []Entry
	isSplit bool
}

// record is one real entry with its long name and link already resolved.
type record struct {
	name    string
	link    string
	typ     tarfmt.EntryType
	size    int64
	dataPos int64
	uid     uint32
	gid     uint32
}

// open opens path and checks that it holds a whole number of blocks. No
// filesystem state changes before this check passes.
func (r *Reader) open(path string, m mode, log *slog.Logger) (*scan, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty archive path", ErrInvalidArgument)
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidArgument, path)
	}
	if info.Size()%tarfmt.BlockSize != 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes, not a multiple of %d",
			ErrFormat, path, info.Size(), tarfmt.BlockSize)
	}

	r.cfg.Stats.AddBytesTotal(info.Size())
	log.Debug("archive opened", "path", path, "size", info.Size(), "mode", m.String())
	return &scan{r: r, log: log, mode: m, f: f, path: path, size: info.Size()}, nil
}

func (s *scan) close() {
	s.f.Close()
}

// run steps through the archive until its end or the first fatal error.
func (s *scan) run(ctx context.Context) error {
	for {
		done, err := s.next(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// next reads one header block and handles the entry it describes, leaving
// pos at the following header. It reports done at the end of the archive.
func (s *scan) next(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	start := s.pos
	full, err := s.readBlock()
	if err != nil {
		return false, err
	}
	if !full {
		if s.tailTolerated() {
			s.log.Debug("split part ends without trailer", "offset", start)
			return true, nil
		}
		return false, fmt.Errorf("%w: short header read at offset %d of %s", ErrIO, start, s.path)
	}

	if tarfmt.IsZeroBlock(s.block[:]) {
		return s.endOfArchive(start)
	}

	h := tarfmt.NewHeader(s.block[:])
	if !h.HasMagic() {
		return false, fmt.Errorf("%w: bad magic at offset %d of %s", ErrFormat, start, s.path)
	}
	if !h.VerifyChecksum() {
		return false, fmt.Errorf("%w: checksum mismatch at offset %d of %s (stored %o, computed %o)",
			ErrFormat, start, s.path, h.StoredChecksum(), tarfmt.Checksum(s.block[:]))
	}

	typ := h.Type()
	size := h.Size()
	dataPos := s.pos
	s.pos = dataPos + tarfmt.BlockCount(size)*tarfmt.BlockSize
	defer func() { s.r.cfg.Stats.AddBytesRead(s.pos - start) }()

	switch typ {
	case tarfmt.GNULongName:
		s.longName = s.readLong(typ, dataPos, size)
		return false, nil
	case tarfmt.GNULongLink:
		s.longLink = s.readLong(typ, dataPos, size)
		return false, nil
	}

	rec := record{
		name:    h.Name(),
		link:    h.Linkname(),
		typ:     typ,
		size:    size,
		dataPos: dataPos,
		uid:     uint32(h.UID()), //nolint:gosec // 8-byte octal fits in 21 bits
		gid:     uint32(h.GID()), //nolint:gosec // 8-byte octal fits in 21 bits
	}
	if s.longName != nil {
		rec.name = *s.longName
	}
	if s.longLink != nil {
		rec.link = *s.longLink
	}
	s.longName, s.longLink = nil, nil
	s.r.cfg.Stats.AddEntriesScanned(1)

	switch s.mode {
	case modeCheckSplit:
		s.isSplit = typ.IsSplit()
		return true, nil
	case modeList:
		s.list(rec)
		return false, nil
	default:
		return false, s.materialize(ctx, rec)
	}
}

// readBlock reads the block at pos and advances past it. It reports false,
// without error, when the file ends before a whole block.
func (s *scan) readBlock() (bool, error) {
	n, err := s.f.ReadAt(s.block[:], s.pos)
	if n == len(s.block) {
		s.pos += int64(n)
		return true, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("%w: read %s at offset %d: %w", ErrIO, s.path, s.pos, err)
	}
	if n > 0 {
		return false, fmt.Errorf("%w: read %d of %d header bytes at offset %d of %s",
			ErrIO, n, tarfmt.BlockSize, s.pos, s.path)
	}
	return false, nil
}

// tailTolerated reports whether running out of blocks at pos is an
// acceptable end for a split part. The last payload of a part may claim
// up to one copy chunk more than the part holds.
func (s *scan) tailTolerated() bool {
	return s.split && s.pos <= s.size+tarfmt.ReadBuffSize
}

// endOfArchive handles a zero block at start. Two zero blocks end the
// archive; a lone zero block is accepted only as a split part's tail.
func (s *scan) endOfArchive(start int64) (bool, error) {
	full, err := s.readBlock()
	if err != nil {
		return false, err
	}
	if full && tarfmt.IsZeroBlock(s.block[:]) {
		s.r.cfg.Stats.AddBytesRead(s.pos - start)
		s.log.Debug("end of archive", "offset", start)
		return true, nil
	}
	if s.tailTolerated() {
		s.log.Debug("split part ends with a single zero block", "offset", start)
		return true, nil
	}
	return false, fmt.Errorf("%w: unexpected zero block at offset %d of %s", ErrFormat, start, s.path)
}

// readLong returns the payload of a GNU long name/link entry trimmed at its
// first NUL, or nil when the payload is too long or cannot be read. In both
// cases the next entry falls back to its header field.
func (s *scan) readLong(typ tarfmt.EntryType, dataPos, size int64) *string {
	if size >= tarfmt.PathMaxLen {
		s.log.Warn("dropping oversized long entry", "type", typ.String(), "size", size, "offset", dataPos)
		return nil
	}
	buf := make([]byte, size)
	if _, err := s.f.ReadAt(buf, dataPos); err != nil {
		s.log.Warn("dropping unreadable long entry", "type", typ.String(), "offset", dataPos, "error", err)
		return nil
	}
	v := tarfmt.TrimNUL(buf)
	return &v
}

func (s *scan) list(rec record) {
	if !rec.typ.HasPayload() {
		return
	}
	s.entries = append(s.entries, Entry{
		Name:       rec.name,
		Size:       rec.size,
		DataOffset: rec.dataPos,
		Type:       rec.typ,
	})
	s.r.emit(event.Event{Type: event.EntryListed, Part: s.path, Path: rec.name, Size: rec.size})
}
