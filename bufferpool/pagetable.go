package bufferpool

import (
	"encoding/binary"
	"sync"

	"github.com/zeebo/xxh3"
)

// pageTableBucketCapacity is the number of entries a bucket holds before
// it splits. The page table never spills to disk (spec §4.2: "no
// iteration required"), so this only bounds the cost of a linear probe
// within one bucket.
const pageTableBucketCapacity = 4

// PageTable is the pool's page_id -> frame_id mapping. It is an
// in-memory extendible hash table: a directory of pointers to buckets,
// doubling (and buckets splitting) as entries accumulate, adapted from
// the teacher's disk-backed ExtendibleHashTable (extendiblehash package)
// to the pool's narrower need (no iteration, no persistence, fixed-size
// int32 keys and values instead of arbitrary byte-string ones).
type PageTable struct {
	mu          sync.Mutex
	globalDepth uint
	directory   []*pageTableBucket
}

type pageTableBucket struct {
	localDepth uint
	entries    map[PageID]FrameID
}

func newPageTableBucket(localDepth uint) *pageTableBucket {
	return &pageTableBucket{
		localDepth: localDepth,
		entries:    make(map[PageID]FrameID, pageTableBucketCapacity),
	}
}

// NewPageTable constructs an empty page table.
func NewPageTable() *PageTable {
	return &PageTable{
		globalDepth: 0,
		directory:   []*pageTableBucket{newPageTableBucket(0)},
	}
}

func hashPageID(id PageID) uint64 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(id))
	return xxh3.Hash(b[:])
}

func (t *PageTable) directoryIndex(id PageID) uint64 {
	if t.globalDepth == 0 {
		return 0
	}
	mask := uint64(1)<<t.globalDepth - 1
	return hashPageID(id) & mask
}

// Find returns the frame holding pageID, if resident.
func (t *PageTable) Find(id PageID) (FrameID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bucket := t.directory[t.directoryIndex(id)]
	fid, ok := bucket.entries[id]
	return fid, ok
}

// Insert records that pageID now lives in frameID, splitting buckets
// (and doubling the directory, if necessary) to make room.
func (t *PageTable) Insert(id PageID, frameID FrameID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for {
		idx := t.directoryIndex(id)
		bucket := t.directory[idx]

		if _, exists := bucket.entries[id]; exists || len(bucket.entries) < pageTableBucketCapacity {
			bucket.entries[id] = frameID
			return
		}

		t.splitBucket(idx)
	}
}

// splitBucket splits the bucket at directory index idx, growing the
// directory first if the bucket's local depth has caught up with the
// global depth. Caller must hold t.mu.
func (t *PageTable) splitBucket(idx uint64) {
	bucket := t.directory[idx]

	if bucket.localDepth == t.globalDepth {
		// double the directory
		t.directory = append(t.directory, t.directory...)
		t.globalDepth++
	}

	newLocalDepth := bucket.localDepth + 1
	sibling := newPageTableBucket(newLocalDepth)
	bucket.localDepth = newLocalDepth

	// every directory slot pointing at this bucket that has its new
	// high bit set now points at the sibling instead.
	highBit := uint64(1) << (newLocalDepth - 1)
	for i := range t.directory {
		if t.directory[i] == bucket && uint64(i)&highBit != 0 {
			t.directory[i] = sibling
		}
	}

	for pid, fid := range bucket.entries {
		if hashPageID(pid)&highBit != 0 {
			sibling.entries[pid] = fid
			delete(bucket.entries, pid)
		}
	}
}

// Remove drops pageID's entry, if present.
func (t *PageTable) Remove(id PageID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bucket := t.directory[t.directoryIndex(id)]
	delete(bucket.entries, id)
}

// Len reports the number of resident pages tracked.
func (t *PageTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[*pageTableBucket]bool)
	total := 0
	for _, b := range t.directory {
		if seen[b] {
			continue
		}
		seen[b] = true
		total += len(b.entries)
	}
	return total
}
