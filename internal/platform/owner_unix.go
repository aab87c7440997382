//go:build unix

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// SetOwnership applies mode and ownership to an extracted entry. Symlinks
// are lchown'ed and never chmod'ed. Files and directories are changed
// through a descriptor opened with O_NOFOLLOW, so a symlink swapped in at
// path is rejected rather than followed. Ownership changes fail without
// CAP_CHOWN; that failure is returned but callers usually only log it.
func SetOwnership(path string, uid, gid uint32, mode os.FileMode, symlink bool) error {
	if symlink {
		if err := unix.Lchown(path, int(uid), int(gid)); err != nil {
			return fmt.Errorf("lchown %s: %w", path, err)
		}
		return nil
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOFOLLOW|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)

	if err := unix.Fchmod(fd, uint32(mode.Perm())); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := unix.Fchown(fd, int(uid), int(gid)); err != nil {
		return fmt.Errorf("chown %s: %w", path, err)
	}
	return nil
}
