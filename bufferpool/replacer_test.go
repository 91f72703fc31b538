package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUKReplacer_EvictsLargestBackwardKDistance(t *testing.T) {
	r := NewLRUKReplacer(4, 2)

	// Frame 0: only one access ever, so its K-distance is infinite.
	r.RecordAccess(0)
	r.SetEvictable(0, true)

	// Frame 1: two accesses, giving it a finite K-distance.
	r.RecordAccess(1)
	r.RecordAccess(1)
	r.SetEvictable(1, true)

	// Infinite K-distance beats any finite one, so frame 0 is evicted.
	fid, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, FrameID(0), fid)
}

func TestLRUKReplacer_TieBreaksByEarliestAccess(t *testing.T) {
	r := NewLRUKReplacer(4, 2)

	r.RecordAccess(0)
	r.RecordAccess(1)
	r.SetEvictable(0, true)
	r.SetEvictable(1, true)

	// Both frames have an infinite K-distance (one access each); the
	// one accessed first loses the tie.
	fid, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, FrameID(0), fid)
}

func TestLRUKReplacer_NonEvictableFramesAreSkipped(t *testing.T) {
	r := NewLRUKReplacer(4, 2)

	r.RecordAccess(0)
	r.SetEvictable(0, false)

	_, ok := r.Evict()
	assert.False(t, ok)
}

func TestLRUKReplacer_RemoveDropsFrame(t *testing.T) {
	r := NewLRUKReplacer(4, 2)

	r.RecordAccess(0)
	r.SetEvictable(0, true)
	assert.Equal(t, 1, r.Size())

	r.Remove(0)
	assert.Equal(t, 0, r.Size())

	_, ok := r.Evict()
	assert.False(t, ok)
}
