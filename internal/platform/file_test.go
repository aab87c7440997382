//go:build unix

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFileReplacesSymlink(t *testing.T) {
	dir := t.TempDir()
	victim := filepath.Join(dir, "victim")
	require.NoError(t, os.WriteFile(victim, []byte("original"), 0o644))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(victim, link))

	for _, appendTo := range []bool{false, true} {
		require.NoError(t, os.Remove(link))
		require.NoError(t, os.Symlink(victim, link))

		f, off, err := CreateFile(link, appendTo)
		require.NoError(t, err)
		assert.Equal(t, int64(0), off, "append=%v", appendTo)
		_, err = f.Write([]byte("new"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		info, err := os.Lstat(link)
		require.NoError(t, err)
		assert.True(t, info.Mode().IsRegular(), "append=%v", appendTo)
	}

	data, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestPlaceDirReplacesNonDirectory(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "outside")
	require.NoError(t, os.Mkdir(outside, 0o755))

	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(outside, link))
	require.NoError(t, PlaceDir(link))
	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	require.NoError(t, PlaceDir(file))
	info, err = os.Lstat(file)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	existing := filepath.Join(outside, "keep")
	require.NoError(t, os.WriteFile(existing, nil, 0o644))
	require.NoError(t, PlaceDir(outside))
	assert.FileExists(t, existing, "an existing directory is left alone")
}

func TestSetOwnershipRefusesSymlink(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "outside")
	require.NoError(t, os.Mkdir(outside, 0o755))
	require.NoError(t, os.Chmod(outside, 0o755))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(outside, link))

	uid, gid := uint32(os.Getuid()), uint32(os.Getgid()) //nolint:gosec // test ids
	require.Error(t, SetOwnership(link, uid, gid, 0o700, false))

	info, err := os.Stat(outside)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
