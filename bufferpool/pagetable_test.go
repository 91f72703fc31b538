package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageTable_InsertFindRemove(t *testing.T) {
	pt := NewPageTable()

	pt.Insert(PageID(1), FrameID(10))
	pt.Insert(PageID(2), FrameID(20))

	fid, ok := pt.Find(PageID(1))
	assert.True(t, ok)
	assert.Equal(t, FrameID(10), fid)

	fid, ok = pt.Find(PageID(2))
	assert.True(t, ok)
	assert.Equal(t, FrameID(20), fid)

	_, ok = pt.Find(PageID(99))
	assert.False(t, ok)

	assert.Equal(t, 2, pt.Len())
	pt.Remove(PageID(1))
	assert.Equal(t, 1, pt.Len())
	_, ok = pt.Find(PageID(1))
	assert.False(t, ok)
}

func TestPageTable_SurvivesManyInsertsPastBucketCapacity(t *testing.T) {
	pt := NewPageTable()

	const n = 500
	for i := PageID(0); i < n; i++ {
		pt.Insert(i, FrameID(i%64))
	}
	assert.Equal(t, n, pt.Len())

	for i := PageID(0); i < n; i++ {
		fid, ok := pt.Find(i)
		assert.True(t, ok)
		assert.Equal(t, FrameID(i%64), fid)
	}
}
