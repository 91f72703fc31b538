package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_ReleaseIsIdempotent(t *testing.T) {
	disk := NewMemDiskManager()
	pool := NewBufferPool(4, disk, nil)

	g, err := pool.NewPageGuard()
	require.NoError(t, err)

	stats := pool.Stats()
	assert.Equal(t, 0, stats.EvictableFrames)

	g.Release()
	stats = pool.Stats()
	assert.Equal(t, 1, stats.EvictableFrames)

	g.Release()
	stats = pool.Stats()
	assert.Equal(t, 1, stats.EvictableFrames, "releasing twice must not double-unpin")
}

func TestGuard_MarkDirtyPersistsOnRelease(t *testing.T) {
	disk := NewMemDiskManager()
	pool := NewBufferPool(4, disk, nil)

	g, err := pool.NewPageGuard()
	require.NoError(t, err)
	id := g.Page().ID()
	g.Page().Data()[0] = 77
	g.MarkDirty()
	g.Release()

	require.NoError(t, pool.FlushAllPages())

	var buf [PageSize]byte
	require.NoError(t, disk.ReadPage(id, &buf))
	assert.Equal(t, byte(77), buf[0])
}
