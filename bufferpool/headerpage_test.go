package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderPage_InsertGetUpdateDelete(t *testing.T) {
	disk := NewMemDiskManager()
	pool := NewBufferPool(4, disk, nil)

	id, page, err := pool.NewPage()
	require.NoError(t, err)
	defer pool.UnpinPage(id, true)

	hdr := NewHeaderPage(page)

	_, ok := hdr.GetRootID("orders")
	assert.False(t, ok)

	require.NoError(t, hdr.InsertRecord("orders", PageID(5)))
	root, ok := hdr.GetRootID("orders")
	require.True(t, ok)
	assert.Equal(t, PageID(5), root)

	assert.Error(t, hdr.InsertRecord("orders", PageID(6)), "duplicate name should be rejected")

	require.NoError(t, hdr.UpdateRecord("orders", PageID(6)))
	root, ok = hdr.GetRootID("orders")
	require.True(t, ok)
	assert.Equal(t, PageID(6), root)

	assert.True(t, hdr.DeleteRecord("orders"))
	_, ok = hdr.GetRootID("orders")
	assert.False(t, ok)
	assert.False(t, hdr.DeleteRecord("orders"))
}

func TestHeaderPage_MultipleRecords(t *testing.T) {
	disk := NewMemDiskManager()
	pool := NewBufferPool(4, disk, nil)

	id, page, err := pool.NewPage()
	require.NoError(t, err)
	defer pool.UnpinPage(id, true)

	hdr := NewHeaderPage(page)
	require.NoError(t, hdr.InsertRecord("a", 1))
	require.NoError(t, hdr.InsertRecord("b", 2))
	require.NoError(t, hdr.InsertRecord("c", 3))

	for name, want := range map[string]PageID{"a": 1, "b": 2, "c": 3} {
		got, ok := hdr.GetRootID(name)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	require.True(t, hdr.DeleteRecord("b"))
	_, ok := hdr.GetRootID("b")
	assert.False(t, ok)
	a, ok := hdr.GetRootID("a")
	require.True(t, ok)
	assert.Equal(t, PageID(1), a)
	c, ok := hdr.GetRootID("c")
	require.True(t, ok)
	assert.Equal(t, PageID(3), c)
}
