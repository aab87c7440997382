//go:build !linux

package platform

// CopyRange falls back to read/write on platforms without copy_file_range.
func CopyRange(params CopyParams) (CopyResult, error) {
	if params.Length <= 0 {
		return CopyResult{Method: ReadWrite}, nil
	}
	preallocate(params.Dst, params.DstOffset, params.Length)
	return copyReadWrite(params)
}
