// Package manifest reads the plain-text index that accompanies a split
// archive. Each line names one part file, relative to the manifest's own
// directory, and its expected size:
//
//	backup.tar.0|524288000
//	backup.tar.1|104857600
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bamsammich/tarrestore/internal/tarfmt"
)

var (
	// ErrMalformed is returned for a line that is not "name|size".
	ErrMalformed = errors.New("malformed manifest line")
	// ErrSizeMismatch is returned when a part's size on disk differs from
	// the size recorded in the manifest.
	ErrSizeMismatch = errors.New("part size does not match manifest")
)

// Line is one parsed manifest entry.
type Line struct {
	Name string
	Size int64
}

// Part is a manifest entry that has been located and size-checked on disk.
type Part struct {
	Path string
	Size int64
}

// ParseLine splits s on its last '|'. The size accepts the same forms as
// strtol with base 0: decimal, 0x-prefixed hex, or 0-prefixed octal.
func ParseLine(s string) (Line, error) {
	s = strings.TrimRight(s, "\r\n")
	idx := strings.LastIndexByte(s, '|')
	if idx < 0 {
		return Line{}, fmt.Errorf("%w: missing '|' in %q", ErrMalformed, s)
	}

	name := s[:idx]
	sizeStr := strings.TrimSpace(s[idx+1:])
	if name == "" || sizeStr == "" {
		return Line{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	size, err := strconv.ParseInt(sizeStr, 0, 64)
	if err != nil || size < 0 {
		return Line{}, fmt.Errorf("%w: bad size %q", ErrMalformed, sizeStr)
	}
	return Line{Name: name, Size: size}, nil
}

// Parse reads every non-blank line of r in order.
func Parse(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, tarfmt.PathMaxLen), tarfmt.PathMaxLen+64)

	var lines []Line
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		l, err := ParseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("line %d: %w: line too long", lineNum+1, ErrMalformed)
		}
		return nil, err
	}
	return lines, nil
}

// Resolve parses the manifest at path and checks every referenced part
// against its size on disk. Parts are returned in manifest order.
//
// A part that does not exist is skipped with a warning rather than failing
// the whole manifest; callers restoring from an incomplete set get whatever
// parts are present.
func Resolve(path string) ([]Part, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	lines, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	parts := make([]Part, 0, len(lines))
	for _, l := range lines {
		if !filepath.IsLocal(l.Name) {
			return nil, fmt.Errorf("%w: part %q is outside the manifest directory", ErrMalformed, l.Name)
		}
		partPath := filepath.Join(dir, l.Name)

		info, err := os.Stat(partPath)
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("split part missing, skipping", "part", partPath)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat part %s: %w", partPath, err)
		}

		if info.Size() != l.Size {
			return nil, fmt.Errorf("%w: %s is %d bytes, manifest says %d",
				ErrSizeMismatch, partPath, info.Size(), l.Size)
		}
		parts = append(parts, Part{Path: partPath, Size: l.Size})
	}
	return parts, nil
}
