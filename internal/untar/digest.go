package untar

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/zeebo/blake3"
)

const digestBufSize = 32 * 1024

// Digest returns the hex BLAKE3 digest of one listed entry's payload, read
// from the archive at path through the entry's DataOffset and Size.
func (r *Reader) Digest(ctx context.Context, path string, e Entry) (string, error) {
	if e.DataOffset < 0 || e.Size < 0 {
		return "", fmt.Errorf("%w: bad entry range %d+%d", ErrInvalidArgument, e.DataOffset, e.Size)
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	h := blake3.New()
	src := io.NewSectionReader(f, e.DataOffset, e.Size)
	buf := make([]byte, digestBufSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := src.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: hash %s in %s: %w", ErrIO, e.Name, path, err)
		}
	}
	if total != e.Size {
		return "", fmt.Errorf("%w: payload of %s truncated: %d of %d bytes", ErrIO, e.Name, total, e.Size)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
