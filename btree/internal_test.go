package btree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaaawww/bustub-private/bufferpool"
)

func newTestInternal(t *testing.T, maxSize int) (InternalNode, *bufferpool.BufferPool) {
	t.Helper()
	disk := bufferpool.NewMemDiskManager()
	pool := bufferpool.NewBufferPool(8, disk, nil)
	id, page, err := pool.NewPage()
	require.NoError(t, err)
	n := newInternalNode(page)
	n.Init(id, bufferpool.InvalidPageID, maxSize)
	return n, pool
}

func TestInternalNode_LookupPicksCorrectChild(t *testing.T) {
	n, _ := newTestInternal(t, 10)
	n.SetFirstChild(100)
	n.Insert(10, 200, DefaultComparator)
	n.Insert(20, 300, DefaultComparator)

	assert.Equal(t, bufferpool.PageID(100), n.Lookup(5, DefaultComparator))
	assert.Equal(t, bufferpool.PageID(200), n.Lookup(10, DefaultComparator))
	assert.Equal(t, bufferpool.PageID(200), n.Lookup(15, DefaultComparator))
	assert.Equal(t, bufferpool.PageID(300), n.Lookup(20, DefaultComparator))
	assert.Equal(t, bufferpool.PageID(300), n.Lookup(1000, DefaultComparator))
}

func TestInternalNode_InsertKeepsKeysSorted(t *testing.T) {
	n, _ := newTestInternal(t, 10)
	n.SetFirstChild(0)
	n.Insert(30, 3, DefaultComparator)
	n.Insert(10, 1, DefaultComparator)
	n.Insert(20, 2, DefaultComparator)

	require.Equal(t, 3, n.Size())
	assert.Equal(t, Key(10), n.KeyAt(1))
	assert.Equal(t, Key(20), n.KeyAt(2))
	assert.Equal(t, Key(30), n.KeyAt(3))
}

func TestInternalNode_StealFirstChild(t *testing.T) {
	n, _ := newTestInternal(t, 10)
	n.SetFirstChild(0)
	n.Insert(10, 1, DefaultComparator)
	n.Insert(20, 2, DefaultComparator)

	first, ok := n.StealFirstChild()
	require.True(t, ok)
	assert.Equal(t, bufferpool.PageID(0), first)
	assert.Equal(t, 1, n.Size())
	assert.Equal(t, bufferpool.PageID(1), n.ValueAt(0))
	assert.Equal(t, Key(20), n.KeyAt(1))
}

func TestInternalNode_InsertFirstChild(t *testing.T) {
	n, _ := newTestInternal(t, 10)
	n.SetFirstChild(1)
	n.Insert(20, 2, DefaultComparator)

	n.InsertFirstChild(0)
	require.Equal(t, 2, n.Size())
	assert.Equal(t, bufferpool.PageID(0), n.ValueAt(0))
	assert.Equal(t, bufferpool.PageID(1), n.ValueAt(1))
	assert.Equal(t, bufferpool.PageID(2), n.ValueAt(2))
}

func TestInternalNode_MergeFromRight(t *testing.T) {
	disk := bufferpool.NewMemDiskManager()
	pool := bufferpool.NewBufferPool(8, disk, nil)

	leftID, leftPage, err := pool.NewPage()
	require.NoError(t, err)
	left := newInternalNode(leftPage)
	left.Init(leftID, bufferpool.InvalidPageID, 10)
	left.SetFirstChild(0)
	left.Insert(10, 1, DefaultComparator)

	rightID, rightPage, err := pool.NewPage()
	require.NoError(t, err)
	right := newInternalNode(rightPage)
	right.Init(rightID, bufferpool.InvalidPageID, 10)
	right.SetFirstChild(2)
	right.Insert(30, 3, DefaultComparator)

	left.MergeFromRight(right, 20)
	require.Equal(t, 3, left.Size())
	assert.Equal(t, bufferpool.PageID(0), left.ValueAt(0))
	assert.Equal(t, Key(10), left.KeyAt(1))
	assert.Equal(t, bufferpool.PageID(1), left.ValueAt(1))
	assert.Equal(t, Key(20), left.KeyAt(2))
	assert.Equal(t, bufferpool.PageID(2), left.ValueAt(2))
	assert.Equal(t, Key(30), left.KeyAt(3))
	assert.Equal(t, bufferpool.PageID(3), left.ValueAt(3))
}
