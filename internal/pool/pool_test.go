package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocNeverReturnsNil(t *testing.T) {
	p := New(4)
	for i := 0; i < 20; i++ {
		id := p.Alloc()
		assert.NotEqual(t, NilNode, id)
	}
}

func TestAllocAcrossBlockBoundaryStaysValid(t *testing.T) {
	p := New(4)
	var ids []NodeID
	for i := 0; i < 17; i++ {
		id := p.Alloc()
		p.Get(id).Size = int64(i)
		ids = append(ids, id)
	}
	for i, id := range ids {
		require.Equal(t, int64(i), p.Get(id).Size)
	}
}

func TestGetNilNodeReturnsNil(t *testing.T) {
	p := New(4)
	assert.Nil(t, p.Get(NilNode))
}

func TestLen(t *testing.T) {
	p := New(4)
	assert.Equal(t, 0, p.Len())
	for i := 0; i < 10; i++ {
		p.Alloc()
	}
	assert.Equal(t, 10, p.Len())
}

func TestFreeAllInvalidatesLen(t *testing.T) {
	p := New(4)
	p.Alloc()
	p.Alloc()
	p.FreeAll()
	assert.Equal(t, 0, p.Len())
}

func TestDefaultBlockSizeOnNonPositive(t *testing.T) {
	p := New(0)
	id := p.Alloc()
	assert.NotEqual(t, NilNode, id)
}
