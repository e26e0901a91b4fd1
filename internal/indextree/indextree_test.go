package indextree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboxdoerfer/fsearch-sub000/internal/pool"
)

func TestAppendChildPreservesOrder(t *testing.T) {
	tr := New(4, []byte(""))
	a := tr.Pool.Alloc()
	tr.Pool.Get(a).Name = []byte("a")
	b := tr.Pool.Alloc()
	tr.Pool.Get(b).Name = []byte("b")

	AppendChild(tr.Pool, tr.Root, a)
	AppendChild(tr.Pool, tr.Root, b)

	var order []string
	ChildrenForEach(tr.Pool, tr.Root, func(id pool.NodeID) {
		order = append(order, string(tr.Pool.Get(id).Name))
	})
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestPrependChildReversesOrder(t *testing.T) {
	tr := New(4, []byte(""))
	a := tr.Pool.Alloc()
	tr.Pool.Get(a).Name = []byte("a")
	b := tr.Pool.Alloc()
	tr.Pool.Get(b).Name = []byte("b")

	PrependChild(tr.Pool, tr.Root, a)
	PrependChild(tr.Pool, tr.Root, b)

	var order []string
	ChildrenForEach(tr.Pool, tr.Root, func(id pool.NodeID) {
		order = append(order, string(tr.Pool.Get(id).Name))
	})
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestUnlinkRemovesFromMiddle(t *testing.T) {
	tr := New(4, []byte(""))
	a := tr.Pool.Alloc()
	b := tr.Pool.Alloc()
	c := tr.Pool.Alloc()
	AppendChild(tr.Pool, tr.Root, a)
	AppendChild(tr.Pool, tr.Root, b)
	AppendChild(tr.Pool, tr.Root, c)

	Unlink(tr.Pool, b)

	assert.Equal(t, 2, NChildren(tr.Pool, tr.Root))
	assert.True(t, IsRoot(tr.Pool, tr.Root))
	assert.Equal(t, pool.NilNode, tr.Pool.Get(b).Parent)
}

func TestRootAndDepth(t *testing.T) {
	tr := New(4, []byte(""))
	a := tr.Pool.Alloc()
	AppendChild(tr.Pool, tr.Root, a)
	b := tr.Pool.Alloc()
	AppendChild(tr.Pool, a, b)

	assert.Equal(t, tr.Root, Root(tr.Pool, b))
	assert.Equal(t, 1, Depth(tr.Pool, tr.Root))
	assert.Equal(t, 2, Depth(tr.Pool, a))
	assert.Equal(t, 3, Depth(tr.Pool, b))
}

func TestNNodesCountsSubtree(t *testing.T) {
	tr := New(4, []byte(""))
	a := tr.Pool.Alloc()
	AppendChild(tr.Pool, tr.Root, a)
	b := tr.Pool.Alloc()
	AppendChild(tr.Pool, tr.Root, b)
	c := tr.Pool.Alloc()
	AppendChild(tr.Pool, a, c)

	assert.Equal(t, 4, NNodes(tr.Pool, tr.Root))
	assert.Equal(t, 2, NNodes(tr.Pool, a))
}

func TestBuildFullPathIntoRootIsSlash(t *testing.T) {
	tr := New(4, []byte(""))
	buf := new(bytes.Buffer)
	ok := BuildFullPathInto(tr.Pool, tr.Root, buf)
	require.True(t, ok)
	assert.Equal(t, "/", buf.String())
}

func TestBuildFullPathIntoNestedRoot(t *testing.T) {
	tr := New(4, []byte("home"))
	a := tr.Pool.Alloc()
	tr.Pool.Get(a).Name = []byte("alice")
	AppendChild(tr.Pool, tr.Root, a)
	b := tr.Pool.Alloc()
	tr.Pool.Get(b).Name = []byte("file.txt")
	AppendChild(tr.Pool, a, b)

	buf := new(bytes.Buffer)
	BuildFullPathInto(tr.Pool, b, buf)
	assert.Equal(t, "home/alice/file.txt", buf.String())
}

func TestBuildFullPathIntoReusesBuffer(t *testing.T) {
	tr := New(4, []byte(""))
	a := tr.Pool.Alloc()
	tr.Pool.Get(a).Name = []byte("x")
	AppendChild(tr.Pool, tr.Root, a)
	b := tr.Pool.Alloc()
	tr.Pool.Get(b).Name = []byte("y")
	AppendChild(tr.Pool, tr.Root, b)

	buf := new(bytes.Buffer)
	BuildFullPathInto(tr.Pool, a, buf)
	first := buf.String()
	BuildFullPathInto(tr.Pool, b, buf)
	second := buf.String()

	assert.Equal(t, "/x", first)
	assert.Equal(t, "/y", second)
}
