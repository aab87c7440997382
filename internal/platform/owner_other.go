//go:build !unix

package platform

import "os"

// SetOwnership only applies the mode on platforms without POSIX ownership.
func SetOwnership(path string, _, _ uint32, mode os.FileMode, symlink bool) error {
	if symlink {
		return nil
	}
	return os.Chmod(path, mode.Perm())
}
