package untar

import "errors"

// Error kinds returned by Reader operations. Every error a Reader returns
// wraps exactly one of these, so callers classify with errors.Is.
var (
	// ErrInvalidArgument reports an empty or unusable path argument, or an
	// entry name that cannot be placed under the destination directory.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound reports a missing archive or manifest.
	ErrNotFound = errors.New("not found")

	// ErrFormat reports a malformed archive or manifest: a size that is not
	// a whole number of blocks, a bad magic or checksum, an unexpected zero
	// block, or a manifest line that does not match its part.
	ErrFormat = errors.New("format error")

	// ErrAllocation reports a configured copy chunk larger than MaxChunkSize.
	ErrAllocation = errors.New("allocation failure")

	// ErrIO reports a failed or short read or write.
	ErrIO = errors.New("i/o error")
)
