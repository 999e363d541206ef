package collector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dist/a.js", strings.Repeat("console.log('a');\n", 10))
	writeFile(t, root, "dist/sub/b.js", strings.Repeat("console.log('b');\n", 20))
	writeFile(t, root, "dist/readme.txt", "not measured")

	coll, err := New()
	require.NoError(t, err)
	defer coll.Close()

	stats, err := coll.Collect(context.Background(), "main", root, []string{"dist/**/*.js"})
	require.NoError(t, err)

	require.Len(t, stats.Files, 2)
	assert.Equal(t, "main", stats.Branch)

	a, ok := stats.Files["dist/a.js"]
	require.True(t, ok, "paths must be root-relative with forward slashes")
	b, ok := stats.Files["dist/sub/b.js"]
	require.True(t, ok)

	assert.Equal(t, uint64(len("console.log('a');\n")*10), a.Size)
	assert.Equal(t, uint64(len("console.log('b');\n")*20), b.Size)
	assert.NotZero(t, a.GzipSize)
	assert.NotZero(t, a.BrotliSize)

	// repetitive content compresses below raw size
	assert.Less(t, b.GzipSize, b.Size)
	assert.Less(t, b.BrotliSize, b.Size)

	assert.Equal(t, a.Size+b.Size, stats.TotalSize)
	assert.Equal(t, a.GzipSize+b.GzipSize, stats.TotalGzip)
	assert.Equal(t, a.BrotliSize+b.BrotliSize, stats.TotalBrotli)
}

func TestCollectOverlappingPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dist/a.js", "var a = 1;\n")

	coll, err := New()
	require.NoError(t, err)
	defer coll.Close()

	// the same file matched by two patterns is measured once
	stats, err := coll.Collect(context.Background(), "main", root, []string{"dist/*.js", "dist/**/*.js"})
	require.NoError(t, err)

	require.Len(t, stats.Files, 1)
	assert.Equal(t, stats.Files["dist/a.js"].Size, stats.TotalSize)
}

func TestCollectInvalidPattern(t *testing.T) {
	coll, err := New()
	require.NoError(t, err)
	defer coll.Close()

	_, err = coll.Collect(context.Background(), "main", t.TempDir(), []string{"["})
	require.Error(t, err)
}

func TestCollectNoMatches(t *testing.T) {
	coll, err := New()
	require.NoError(t, err)
	defer coll.Close()

	stats, err := coll.Collect(context.Background(), "main", t.TempDir(), []string{"dist/*.js"})
	require.NoError(t, err)

	assert.Empty(t, stats.Files)
	assert.Zero(t, stats.TotalSize)
}

func TestCompressionDeterminism(t *testing.T) {
	data := []byte(strings.Repeat("the same fixed byte buffer ", 100))

	gz1, err := compressGzip(data)
	require.NoError(t, err)
	gz2, err := compressGzip(data)
	require.NoError(t, err)
	assert.Equal(t, gz1, gz2)

	br1, err := compressBrotli(data)
	require.NoError(t, err)
	br2, err := compressBrotli(data)
	require.NoError(t, err)
	assert.Equal(t, br1, br2)
}
