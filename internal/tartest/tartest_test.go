package tartest_test

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/tarrestore/internal/tarfmt"
	"github.com/bamsammich/tarrestore/internal/tartest"
)

// The stdlib reader is an independent check that the builder writes
// well-formed headers.
func TestBuilderReadableByArchiveTar(t *testing.T) {
	archive := tartest.New().
		Dir("etc/").
		File("etc/hosts", []byte("127.0.0.1 localhost\n")).
		Symlink("etc/localtime", "/usr/share/zoneinfo/UTC").
		File("empty", nil).
		End().
		Bytes()
	require.Zero(t, len(archive)%tarfmt.BlockSize)

	tr := tar.NewReader(bytes.NewReader(archive))
	var names []string
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)

		switch hdr.Name {
		case "etc/hosts":
			data, err := io.ReadAll(tr)
			require.NoError(t, err)
			assert.Equal(t, "127.0.0.1 localhost\n", string(data))
			assert.Equal(t, int64(0o644), hdr.Mode)
		case "etc/localtime":
			assert.Equal(t, byte(tar.TypeSymlink), hdr.Typeflag)
			assert.Equal(t, "/usr/share/zoneinfo/UTC", hdr.Linkname)
		case "etc/":
			assert.Equal(t, byte(tar.TypeDir), hdr.Typeflag)
		}
	}
	assert.Equal(t, []string{"etc/", "etc/hosts", "etc/localtime", "empty"}, names)
}

func TestBlockChecksum(t *testing.T) {
	block := tartest.Block(tartest.Header{Name: "x", Type: tarfmt.TypeSplitStart, Size: 1024})
	h := tarfmt.NewHeader(block)
	assert.True(t, h.VerifyChecksum())

	block[0] = 'y'
	assert.False(t, h.VerifyChecksum())
	tartest.SetChecksum(block)
	assert.True(t, h.VerifyChecksum())
}
