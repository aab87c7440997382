//go:build unix

package platform

import "golang.org/x/sys/unix"

// noFollow makes open fail on a symlink instead of following it.
const noFollow = unix.O_NOFOLLOW
