package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DirMode is the permission used for every directory created on the way to
// an extracted entry.
const DirMode os.FileMode = 0o700

// CreateFile opens path for writing an extracted payload. With appendTo set
// an existing file is kept and the returned offset is its current size, so
// consecutive split payloads concatenate; otherwise the file is truncated.
// Missing parent directories are created. A symlink at path is replaced,
// never followed.
func CreateFile(path string, appendTo bool) (*os.File, int64, error) {
	if err := removeSymlink(path); err != nil {
		return nil, 0, err
	}
	flags := os.O_WRONLY | os.O_CREATE | noFollow
	if !appendTo {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o600)
	if errors.Is(err, os.ErrNotExist) {
		if mkErr := os.MkdirAll(filepath.Dir(path), DirMode); mkErr != nil {
			return nil, 0, fmt.Errorf("create parent dir for %s: %w", path, mkErr)
		}
		f, err = os.OpenFile(path, flags, 0o600)
	}
	if err != nil {
		return nil, 0, err
	}

	if !appendTo {
		return f, 0, nil
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// CreateDir creates path and any missing parents. An existing directory is
// not an error.
func CreateDir(path string) error {
	if err := os.MkdirAll(path, DirMode); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// PlaceDir creates the directory for an extracted entry. Whatever non-directory
// sits at path, a symlink included, is removed first so the directory is
// never reached through a link.
func PlaceDir(path string) error {
	info, err := os.Lstat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("lstat %s: %w", path, err)
	case info.IsDir():
		return nil
	default:
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("replace %s with directory: %w", path, err)
		}
	}
	return CreateDir(path)
}

// removeSymlink unlinks path if it is a symlink.
func removeSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("replace symlink %s: %w", path, err)
	}
	return nil
}

// CreateSymlink replaces whatever is at path with a symlink to target.
func CreateSymlink(target, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return fmt.Errorf("create parent dir for symlink %s: %w", path, err)
	}
	_ = os.Remove(path)

	if err := os.Symlink(target, path); err != nil {
		return fmt.Errorf("symlink %s -> %s: %w", path, target, err)
	}
	return nil
}
