// Package platform holds the OS-specific pieces of extraction: range copies
// from an archive into destination files, preallocation, and ownership.
package platform

import (
	"context"
	"os"

	"golang.org/x/time/rate"
)

// DefaultBufSize is the read/write chunk used when CopyParams.BufSize is 0.
const DefaultBufSize = 512 * 1024

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
	Sendfile                 // Linux sendfile(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation. BytesWritten is less
// than the requested length when the source ended early.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyParams describes one range copy from an open archive into an open
// destination file.
type CopyParams struct {
	Ctx       context.Context
	Src       *os.File
	Dst       *os.File
	Limiter   *rate.Limiter // nil means unthrottled
	SrcOffset int64
	DstOffset int64
	Length    int64
	BufSize   int
}

func (p CopyParams) context() context.Context {
	if p.Ctx == nil {
		return context.Background()
	}
	return p.Ctx
}

func (p CopyParams) bufSize() int {
	if p.BufSize <= 0 {
		return DefaultBufSize
	}
	return p.BufSize
}
