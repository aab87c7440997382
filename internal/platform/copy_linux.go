//go:build linux

package platform

import (
	"golang.org/x/sys/unix"
)

// CopyRange copies params.Length bytes using the most efficient method
// available on Linux, falling through on unsupported/cross-device errors.
// Throttled copies always use read/write so the limiter sees every chunk.
func CopyRange(params CopyParams) (CopyResult, error) {
	if params.Length <= 0 {
		return CopyResult{Method: ReadWrite}, nil
	}
	preallocate(params.Dst, params.DstOffset, params.Length)

	if params.Limiter != nil {
		return copyReadWrite(params)
	}

	result, err := copyFileRange(params)
	if err == nil {
		return result, nil
	}
	if !isFallbackErr(err) || result.BytesWritten > 0 {
		return result, err
	}

	result, err = copySendfile(params)
	if err == nil {
		return result, nil
	}
	if !isFallbackErr(err) || result.BytesWritten > 0 {
		return result, err
	}

	return copyReadWrite(params)
}

//nolint:gosec // G115: fd values are small non-negative integers
func copyFileRange(params CopyParams) (CopyResult, error) {
	remaining := params.Length
	roff := params.SrcOffset
	woff := params.DstOffset

	var totalWritten int64
	for remaining > 0 {
		if err := params.context().Err(); err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, err
		}
		chunk := min(remaining, int64(params.bufSize()))
		n, err := unix.CopyFileRange(int(params.Src.Fd()), &roff, int(params.Dst.Fd()), &woff, int(chunk), 0)
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, err
		}
		if n == 0 {
			break // source ended early
		}
		remaining -= int64(n)
		totalWritten += int64(n)
	}

	return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, nil
}

//nolint:gosec // G115: fd values are small non-negative integers
func copySendfile(params CopyParams) (CopyResult, error) {
	if _, err := params.Dst.Seek(params.DstOffset, 0); err != nil {
		return CopyResult{}, err
	}

	remaining := params.Length
	offset := params.SrcOffset

	var totalWritten int64
	for remaining > 0 {
		if err := params.context().Err(); err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: Sendfile}, err
		}
		chunk := min(remaining, int64(params.bufSize()))
		n, err := unix.Sendfile(int(params.Dst.Fd()), int(params.Src.Fd()), &offset, int(chunk))
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: Sendfile}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		totalWritten += int64(n)
	}

	return CopyResult{BytesWritten: totalWritten, Method: Sendfile}, nil
}
