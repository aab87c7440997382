// Package tartest builds ustar archives block by block for tests, including
// the split-archive type flags and deliberately broken headers that a
// regular tar writer cannot produce.
package tartest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/tarrestore/internal/tarfmt"
)

// Header describes one entry. Size defaults to len(Data) when negative or
// zero with Data set; set Size explicitly to claim more or less payload than
// Data holds.
type Header struct {
	Name     string
	Linkname string
	Type     byte
	Mode     int64
	UID      int64
	GID      int64
	Size     int64
	Data     []byte
	Magic    string // defaults to "ustar\x0000"
}

// Block renders h as a single header block with a valid checksum.
func Block(h Header) []byte {
	b := make([]byte, tarfmt.BlockSize)
	copy(b[0:100], h.Name)
	putOctal(b[100:108], h.Mode)
	putOctal(b[108:116], h.UID)
	putOctal(b[116:124], h.GID)
	putOctal(b[124:136], h.size())
	putOctal(b[136:148], 0)
	b[156] = h.Type
	copy(b[157:257], h.Linkname)
	magic := h.Magic
	if magic == "" {
		magic = "ustar\x0000"
	}
	copy(b[257:265], magic)
	SetChecksum(b)
	return b
}

func (h Header) size() int64 {
	if h.Size == 0 && h.Data != nil {
		return int64(len(h.Data))
	}
	return h.Size
}

// SetChecksum recomputes and stores the checksum of a header block.
func SetChecksum(block []byte) {
	copy(block[148:156], fmt.Sprintf("%06o\x00 ", tarfmt.Checksum(block)))
}

func putOctal(field []byte, v int64) {
	copy(field, fmt.Sprintf("%0*o\x00", len(field)-1, v))
}

// Builder accumulates archive bytes.
type Builder struct {
	buf bytes.Buffer
}

// New returns an empty Builder.
func New() *Builder { return &Builder{} }

// Add writes a header followed by its data padded to a block boundary.
func (b *Builder) Add(h Header) *Builder {
	b.buf.Write(Block(h))
	return b.Data(h.Data)
}

// Data writes raw payload bytes padded to a block boundary.
func (b *Builder) Data(data []byte) *Builder {
	b.buf.Write(data)
	if rem := len(data) % tarfmt.BlockSize; rem != 0 {
		b.buf.Write(make([]byte, tarfmt.BlockSize-rem))
	}
	return b
}

// Raw appends bytes unchanged.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf.Write(p)
	return b
}

// File adds a regular file owned by uid/gid 0.
func (b *Builder) File(name string, data []byte) *Builder {
	return b.Add(Header{Name: name, Type: tarfmt.TypeReg, Mode: 0o644, Size: int64(len(data)), Data: data})
}

// Dir adds a directory.
func (b *Builder) Dir(name string) *Builder {
	return b.Add(Header{Name: name, Type: tarfmt.TypeDir, Mode: 0o755})
}

// Symlink adds a symlink at name pointing to target.
func (b *Builder) Symlink(name, target string) *Builder {
	return b.Add(Header{Name: name, Linkname: target, Type: tarfmt.TypeSymlink, Mode: 0o777})
}

// LongName adds a GNU long-name pseudo entry; the payload carries a
// trailing NUL the way GNU tar writes it.
func (b *Builder) LongName(name string) *Builder {
	data := append([]byte(name), 0)
	return b.Add(Header{Name: "././@LongLink", Type: tarfmt.TypeGNULongName, Size: int64(len(data)), Data: data})
}

// LongLink adds a GNU long-link pseudo entry.
func (b *Builder) LongLink(target string) *Builder {
	data := append([]byte(target), 0)
	return b.Add(Header{Name: "././@LongLink", Type: tarfmt.TypeGNULongLink, Size: int64(len(data)), Data: data})
}

// End writes the two zero blocks that terminate an archive.
func (b *Builder) End() *Builder {
	b.buf.Write(make([]byte, 2*tarfmt.BlockSize))
	return b
}

// Bytes returns the archive so far.
func (b *Builder) Bytes() []byte { return b.buf.Bytes() }

// WriteFile writes the archive to dir/name and returns its path.
func (b *Builder) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}
