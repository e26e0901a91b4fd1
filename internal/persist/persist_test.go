package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboxdoerfer/fsearch-sub000/internal/indextree"
	"github.com/cboxdoerfer/fsearch-sub000/internal/pool"
)

func buildSample(t *testing.T) *indextree.Tree {
	t.Helper()
	tr := indextree.New(4, []byte(""))
	a := tr.Pool.Alloc()
	ae := tr.Pool.Get(a)
	ae.Name = []byte("alpha")
	ae.IsDir = true
	indextree.AppendChild(tr.Pool, tr.Root, a)

	b := tr.Pool.Alloc()
	be := tr.Pool.Get(b)
	be.Name = []byte("beta.txt")
	be.Size = 1234
	be.MTime = 99
	indextree.AppendChild(tr.Pool, tr.Root, b)

	c := tr.Pool.Alloc()
	ce := tr.Pool.Get(c)
	ce.Name = []byte("gamma.txt")
	ce.Size = 5
	indextree.AppendChild(tr.Pool, a, c)

	return tr
}

func namesOf(t *testing.T, tr *indextree.Tree) []string {
	t.Helper()
	var names []string
	indextree.Traverse(tr.Pool, tr.Root, func(id pool.NodeID) {
		names = append(names, string(tr.Pool.Get(id).Name))
	})
	return names
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.db")

	tr := buildSample(t)
	require.NoError(t, Save(tr, path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.ElementsMatch(t, namesOf(t, tr), namesOf(t, loaded))
	assert.Equal(t, NNodes(t, tr), NNodes(t, loaded))
}

func NNodes(t *testing.T, tr *indextree.Tree) int {
	t.Helper()
	n := 0
	indextree.Traverse(tr.Pool, tr.Root, func(pool.NodeID) { n++ })
	return n
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.db")
	require.NoError(t, writeGarbage(path))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestPathForIsStableAndHashed(t *testing.T) {
	p1 := PathFor("/home/alice")
	p2 := PathFor("/home/alice")
	p3 := PathFor("/home/bob")
	assert.Equal(t, p1, p2)
	assert.NotEqual(t, p1, p3)
}

func TestPathForEmptyMeansFilesystemRoot(t *testing.T) {
	assert.Equal(t, PathFor(""), PathFor("/"))
}

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("NOPE garbage bytes that aren't a database"), 0o644)
}
