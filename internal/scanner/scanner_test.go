package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboxdoerfer/fsearch-sub000/internal/indextree"
	"github.com/cboxdoerfer/fsearch-sub000/internal/pool"
)

func writeTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("h"), 0o644))
}

func collectNames(tr *indextree.Tree) []string {
	var names []string
	indextree.Traverse(tr.Pool, tr.Root, func(id pool.NodeID) {
		e := tr.Pool.Get(id)
		names = append(names, string(e.Name))
	})
	return names
}

func TestScanSmallTreeFindsEveryEntry(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir)

	s := New(Policy{})
	tr, err := s.Scan(context.Background(), dir, dir, nil)
	require.NoError(t, err)

	names := collectNames(tr)
	assert.Contains(t, names, "a.txt")
	assert.Contains(t, names, "sub")
	assert.Contains(t, names, "b.txt")
	assert.Contains(t, names, ".hidden")
}

func TestScanExcludeHiddenDropsDotfiles(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir)

	s := New(Policy{ExcludeHidden: true})
	tr, err := s.Scan(context.Background(), dir, dir, nil)
	require.NoError(t, err)

	names := collectNames(tr)
	assert.NotContains(t, names, ".hidden")
	assert.Contains(t, names, "a.txt")
}

func TestScanExcludeFilePatternsDropsMatches(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir)

	s := New(Policy{ExcludeFilePatterns: []string{"*.txt"}})
	tr, err := s.Scan(context.Background(), dir, dir, nil)
	require.NoError(t, err)

	names := collectNames(tr)
	assert.NotContains(t, names, "a.txt")
	assert.Contains(t, names, "sub")
}

func TestScanExcludeDirSkipsSubtree(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir)
	subPath := filepath.Join(dir, "sub")

	s := New(Policy{ExcludeDirs: []ExcludeDir{{Path: subPath, Enabled: true}}})
	tr, err := s.Scan(context.Background(), dir, dir, nil)
	require.NoError(t, err)

	names := collectNames(tr)
	assert.NotContains(t, names, "sub")
	assert.NotContains(t, names, "b.txt")
}

func TestScanCancelledContextReturnsCancelledError(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(Policy{})
	_, err := s.Scan(ctx, dir, dir, nil)
	require.Error(t, err)
	var scanErr *Error
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, ErrCancelled, scanErr.Kind)
}

func TestScanNotADirectoryReturnsIOError(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	s := New(Policy{})
	_, err := s.Scan(context.Background(), file, file, nil)
	require.Error(t, err)
	var scanErr *Error
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, ErrIO, scanErr.Kind)
}
