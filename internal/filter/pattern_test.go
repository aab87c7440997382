package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternStar(t *testing.T) {
	p, err := compilePattern("*.log")
	require.NoError(t, err)

	assert.True(t, p.match("app.log", false))
	assert.True(t, p.match("dir/app.log", false))
	assert.False(t, p.match("app.log.bak", false))
	assert.False(t, p.match("xapp.txt", false))
}

func TestPatternDoubleStar(t *testing.T) {
	p, err := compilePattern("**/*.so")
	require.NoError(t, err)

	assert.True(t, p.match("lib.so", false))
	assert.True(t, p.match("lib/arm64/lib.so", false))
	assert.False(t, p.match("lib.so.txt", false))

	p, err = compilePattern("data/**")
	require.NoError(t, err)
	assert.True(t, p.match("data/a/b/c", false))
	assert.False(t, p.match("other/data/a", false))
}

func TestPatternAnchored(t *testing.T) {
	p, err := compilePattern("/top.txt")
	require.NoError(t, err)

	assert.True(t, p.match("top.txt", false))
	assert.False(t, p.match("sub/top.txt", false))

	p, err = compilePattern("sub/dir/*.txt")
	require.NoError(t, err)
	assert.True(t, p.match("sub/dir/file.txt", false))
	assert.False(t, p.match("other/sub/dir/file.txt", false))
}

func TestPatternDirOnly(t *testing.T) {
	p, err := compilePattern("cache/")
	require.NoError(t, err)

	assert.True(t, p.match("cache", true))
	assert.True(t, p.match("a/cache", true))
	assert.False(t, p.match("cache", false))
}

func TestPatternQuestion(t *testing.T) {
	p, err := compilePattern("part?.bin")
	require.NoError(t, err)

	assert.True(t, p.match("part1.bin", false))
	assert.False(t, p.match("part12.bin", false))
	assert.False(t, p.match("part/.bin", false))
}

func TestPatternCharClass(t *testing.T) {
	p, err := compilePattern("v[0-9].txt")
	require.NoError(t, err)
	assert.True(t, p.match("v3.txt", false))
	assert.False(t, p.match("vx.txt", false))

	p, err = compilePattern("v[!0-9].txt")
	require.NoError(t, err)
	assert.True(t, p.match("vx.txt", false))
	assert.False(t, p.match("v3.txt", false))

	// Unterminated class is a literal bracket.
	p, err = compilePattern("a[b")
	require.NoError(t, err)
	assert.True(t, p.match("a[b", false))
}
