package untar

import (
	"archive/tar"
	"bytes"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/tarrestore/internal/event"
)

func quietConfig() Config {
	return Config{Logger: slog.New(slog.DiscardHandler)}
}

func newTestReader() *Reader {
	return New(quietConfig())
}

// refEntry is one entry for the archive/tar reference packer.
type refEntry struct {
	name string
	body string
	link string
	typ  byte
}

// writeReference packs entries with the standard library writer. Names or
// links longer than 100 bytes switch to the GNU format so they travel in
// long-name pseudo entries.
func writeReference(t *testing.T, dir, name string, entries []refEntry) string {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Linkname: e.link,
			Typeflag: e.typ,
			Mode:     0o644,
			Uid:      10005,
			Gid:      10005,
			ModTime:  time.Unix(1700000000, 0),
			Format:   tar.FormatUSTAR,
		}
		if e.typ == tar.TypeReg {
			hdr.Size = int64(len(e.body))
		}
		if len(e.name) > 100 || len(e.link) > 100 {
			hdr.Format = tar.FormatGNU
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Size > 0 {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// snapshotTree describes every path under root as "dir", "file:<content>"
// or "link:<target>".
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			tree[rel] = "link:" + target
		case d.IsDir():
			tree[rel] = "dir"
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			tree[rel] = "file:" + string(data)
		}
		return nil
	})
	require.NoError(t, err)
	return tree
}

func drainEvents(ch chan event.Event) []event.Type {
	var types []event.Type
	for {
		select {
		case ev := <-ch:
			types = append(types, ev.Type)
		default:
			return types
		}
	}
}
