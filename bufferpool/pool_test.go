package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPool_NewAndFetchRoundTrip(t *testing.T) {
	disk := NewMemDiskManager()
	pool := NewBufferPool(4, disk, nil)

	id, page, err := pool.NewPage()
	require.NoError(t, err)
	page.Data()[0] = 42
	require.True(t, pool.UnpinPage(id, true))

	fetched, err := pool.FetchPage(id)
	require.NoError(t, err)
	assert.Equal(t, byte(42), fetched.Data()[0])
	require.True(t, pool.UnpinPage(id, false))
}

func TestBufferPool_EvictsUnpinnedPageWhenFull(t *testing.T) {
	disk := NewMemDiskManager()
	pool := NewBufferPool(2, disk, nil)

	id1, _, err := pool.NewPage()
	require.NoError(t, err)
	require.True(t, pool.UnpinPage(id1, false))

	id2, _, err := pool.NewPage()
	require.NoError(t, err)
	require.True(t, pool.UnpinPage(id2, false))

	// Pool has 2 frames, both now unpinned and evictable. A third
	// NewPage must evict one of them rather than fail.
	id3, _, err := pool.NewPage()
	require.NoError(t, err)
	assert.NotEqual(t, InvalidPageID, id3)
	pool.UnpinPage(id3, false)
}

func TestBufferPool_ExhaustedWhenEverythingPinned(t *testing.T) {
	disk := NewMemDiskManager()
	pool := NewBufferPool(2, disk, nil)

	_, _, err := pool.NewPage()
	require.NoError(t, err)
	_, _, err = pool.NewPage()
	require.NoError(t, err)

	_, _, err = pool.NewPage()
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestBufferPool_DeletePageRefusesWhilePinned(t *testing.T) {
	disk := NewMemDiskManager()
	pool := NewBufferPool(4, disk, nil)

	id, _, err := pool.NewPage()
	require.NoError(t, err)

	ok, err := pool.DeletePage(id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.True(t, pool.UnpinPage(id, false))
	ok, err = pool.DeletePage(id)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = pool.FetchPage(id)
	assert.Error(t, err)
}

func TestBufferPool_FlushAllPagesWritesToDisk(t *testing.T) {
	disk := NewMemDiskManager()
	pool := NewBufferPool(4, disk, nil)

	id, page, err := pool.NewPage()
	require.NoError(t, err)
	page.Data()[7] = 9
	require.True(t, pool.UnpinPage(id, true))

	require.NoError(t, pool.FlushAllPages())

	var buf [PageSize]byte
	require.NoError(t, disk.ReadPage(id, &buf))
	assert.Equal(t, byte(9), buf[7])
}

func TestBufferPool_Stats(t *testing.T) {
	disk := NewMemDiskManager()
	pool := NewBufferPool(4, disk, nil)

	id, _, err := pool.NewPage()
	require.NoError(t, err)

	stats := pool.Stats()
	assert.Equal(t, 4, stats.Capacity)
	assert.Equal(t, 1, stats.ResidentPages)
	assert.Equal(t, 0, stats.EvictableFrames)

	pool.UnpinPage(id, false)
	stats = pool.Stats()
	assert.Equal(t, 1, stats.EvictableFrames)
}
