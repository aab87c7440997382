package platform

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, DefaultBufSize)
		return &b
	},
}

// copyReadWrite copies data using pread/pwrite in BufSize chunks.
//
//nolint:gosec // G115: fd values are small non-negative integers
func copyReadWrite(params CopyParams) (CopyResult, error) {
	var buf []byte
	if params.bufSize() == DefaultBufSize {
		bufp := bufPool.Get().(*[]byte)
		defer bufPool.Put(bufp)
		buf = *bufp
	} else {
		buf = make([]byte, params.bufSize())
	}

	ctx := params.context()
	srcOff := params.SrcOffset
	dstOff := params.DstOffset
	remaining := params.Length

	var totalWritten int64
	srcRawFd := int(params.Src.Fd())
	dstRawFd := int(params.Dst.Fd())

	for remaining > 0 {
		toRead := int(min(remaining, int64(len(buf))))
		if params.Limiter != nil {
			toRead = min(toRead, params.Limiter.Burst())
			if err := params.Limiter.WaitN(ctx, toRead); err != nil {
				return CopyResult{BytesWritten: totalWritten, Method: ReadWrite}, err
			}
		} else if err := ctx.Err(); err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: ReadWrite}, err
		}

		n, err := unix.Pread(srcRawFd, buf[:toRead], srcOff)
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: ReadWrite}, err
		}
		if n == 0 {
			break // source ended early
		}

		written := 0
		for written < n {
			w, err := unix.Pwrite(dstRawFd, buf[written:n], dstOff+int64(written))
			if err != nil {
				return CopyResult{BytesWritten: totalWritten + int64(written), Method: ReadWrite}, err
			}
			written += w
		}

		srcOff += int64(n)
		dstOff += int64(n)
		remaining -= int64(n)
		totalWritten += int64(n)
	}

	return CopyResult{BytesWritten: totalWritten, Method: ReadWrite}, nil
}

// isFallbackErr returns true if err should trigger a fallback to the next copy strategy.
func isFallbackErr(err error) bool {
	switch err {
	case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP, unix.EBADF:
		return true
	}
	if e, ok := err.(*os.PathError); ok {
		return isFallbackErr(e.Err)
	}
	return false
}
