package btree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaaawww/bustub-private/bufferpool"
)

func newTestLeaf(t *testing.T, maxSize int) (LeafNode, *bufferpool.BufferPool) {
	t.Helper()
	disk := bufferpool.NewMemDiskManager()
	pool := bufferpool.NewBufferPool(8, disk, nil)
	id, page, err := pool.NewPage()
	require.NoError(t, err)
	leaf := newLeafNode(page)
	leaf.Init(id, bufferpool.InvalidPageID, maxSize)
	return leaf, pool
}

func TestLeafNode_InsertKeepsSortedOrder(t *testing.T) {
	leaf, _ := newTestLeaf(t, 10)

	for _, k := range []Key{5, 1, 9, 3, 7} {
		assert.True(t, leaf.Insert(k, Value(k*10), DefaultComparator))
	}
	require.Equal(t, 5, leaf.Size())
	for i := 1; i < leaf.Size(); i++ {
		assert.Less(t, int(leaf.KeyAt(i-1)), int(leaf.KeyAt(i)))
	}
}

func TestLeafNode_InsertDuplicateRejected(t *testing.T) {
	leaf, _ := newTestLeaf(t, 10)

	assert.True(t, leaf.Insert(1, 10, DefaultComparator))
	assert.False(t, leaf.Insert(1, 99, DefaultComparator))
	assert.Equal(t, 1, leaf.Size())
	assert.Equal(t, Value(10), leaf.ValueAt(0))
}

func TestLeafNode_RemoveMissingKey(t *testing.T) {
	leaf, _ := newTestLeaf(t, 10)
	leaf.Insert(1, 10, DefaultComparator)

	assert.False(t, leaf.Remove(2, DefaultComparator))
	assert.True(t, leaf.Remove(1, DefaultComparator))
	assert.Equal(t, 0, leaf.Size())
}

func TestLeafNode_StealFirstAndLast(t *testing.T) {
	leaf, _ := newTestLeaf(t, 10)
	for _, k := range []Key{1, 2, 3} {
		leaf.Insert(k, Value(k), DefaultComparator)
	}

	k, v, ok := leaf.StealFirst()
	require.True(t, ok)
	assert.Equal(t, Key(1), k)
	assert.Equal(t, Value(1), v)
	assert.Equal(t, 2, leaf.Size())
	assert.Equal(t, Key(2), leaf.KeyAt(0))

	k, v, ok = leaf.StealLast()
	require.True(t, ok)
	assert.Equal(t, Key(3), k)
	assert.Equal(t, Value(3), v)
	assert.Equal(t, 1, leaf.Size())
}

func TestLeafNode_MergeFromRight(t *testing.T) {
	disk := bufferpool.NewMemDiskManager()
	pool := bufferpool.NewBufferPool(8, disk, nil)

	leftID, leftPage, err := pool.NewPage()
	require.NoError(t, err)
	left := newLeafNode(leftPage)
	left.Init(leftID, bufferpool.InvalidPageID, 10)
	left.Insert(1, 1, DefaultComparator)
	left.Insert(2, 2, DefaultComparator)

	rightID, rightPage, err := pool.NewPage()
	require.NoError(t, err)
	right := newLeafNode(rightPage)
	right.Init(rightID, bufferpool.InvalidPageID, 10)
	right.Insert(3, 3, DefaultComparator)
	right.Insert(4, 4, DefaultComparator)

	left.MergeFromRight(right)
	require.Equal(t, 4, left.Size())
	for i := 0; i < 4; i++ {
		assert.Equal(t, Key(i+1), left.KeyAt(i))
	}
}
