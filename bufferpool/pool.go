package bufferpool

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/yaaawww/bustub-private/logger"
)

// BufferPool is the fixed-capacity cache of Pages sitting in front of a
// DiskManager. It owns a fixed array of frames, a free list of frames
// holding no page, a PageTable mapping resident page ids to frame
// indices, and an LRUKReplacer tracking which pinCount==0 frames are
// eligible for eviction. Every operation holds a single pool-wide mutex,
// grounded on the teacher's BufferPool (bufferpool package), which also
// serializes NewPage/FetchPage/UnpinPage/FlushPage around one mutex
// rather than per-frame locks.
type BufferPool struct {
	mu sync.Mutex

	frames   []*Page
	freeList []FrameID

	pageTable *PageTable
	replacer  *LRUKReplacer
	disk      DiskManager
	log       logger.Logger
}

// NewBufferPool constructs a pool of the given capacity (number of
// frames) backed by disk. The LRU-K replacer's history length (spec
// §4.1) is always replacerHistorySize (2); it is not configurable here.
func NewBufferPool(capacity int, disk DiskManager, log logger.Logger) *BufferPool {
	if log == nil {
		log = logger.NopLogger
	}
	frames := make([]*Page, capacity)
	freeList := make([]FrameID, capacity)
	for i := 0; i < capacity; i++ {
		frames[i] = newPage()
		freeList[i] = FrameID(capacity - 1 - i)
	}
	return &BufferPool{
		frames:    frames,
		freeList:  freeList,
		pageTable: NewPageTable(),
		replacer:  NewLRUKReplacer(capacity, replacerHistorySize),
		disk:      disk,
		log:       log,
	}
}

// Size returns the pool's frame capacity.
func (bp *BufferPool) Size() int {
	return len(bp.frames)
}

// grabFrame returns a frame ready to hold a new page, evicting and
// writing back a victim if the free list is empty. Caller must hold
// bp.mu. Returns ErrPoolExhausted if every frame is pinned.
func (bp *BufferPool) grabFrame() (FrameID, error) {
	if n := len(bp.freeList); n > 0 {
		fid := bp.freeList[n-1]
		bp.freeList = bp.freeList[:n-1]
		return fid, nil
	}

	fid, ok := bp.replacer.Evict()
	if !ok {
		return 0, ErrPoolExhausted
	}

	victim := bp.frames[fid]
	if victim.IsDirty() {
		if err := bp.disk.WritePage(victim.ID(), victim.Data()); err != nil {
			return 0, errors.Wrapf(err, "writing back victim page %d", victim.ID())
		}
	}
	bp.pageTable.Remove(victim.ID())
	return fid, nil
}

// NewPage allocates a fresh page on disk, pins it in a frame, and
// returns it. The caller must UnpinPage it when done (spec §4.3,
// NewPage).
func (bp *BufferPool) NewPage() (PageID, *Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	fid, err := bp.grabFrame()
	if err != nil {
		return InvalidPageID, nil, err
	}

	id, err := bp.disk.AllocatePage()
	if err != nil {
		bp.freeList = append(bp.freeList, fid)
		return InvalidPageID, nil, errors.Wrap(err, "allocating page")
	}

	page := bp.frames[fid]
	page.reset(id)
	page.pinCount = 1

	bp.pageTable.Insert(id, fid)
	bp.replacer.RecordAccess(fid)
	bp.replacer.SetEvictable(fid, false)

	bp.log.Debugf("buffer pool: new page %d in frame %d", id, fid)
	return id, page, nil
}

// FetchPage returns the page for id, pinning it, reading it from disk
// first if it is not already resident (spec §4.3, FetchPage). The
// caller must UnpinPage it when done.
func (bp *BufferPool) FetchPage(id PageID) (*Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if fid, ok := bp.pageTable.Find(id); ok {
		page := bp.frames[fid]
		page.pinCount++
		bp.replacer.RecordAccess(fid)
		bp.replacer.SetEvictable(fid, false)
		return page, nil
	}

	fid, err := bp.grabFrame()
	if err != nil {
		return nil, err
	}

	page := bp.frames[fid]
	page.reset(id)
	if err := bp.disk.ReadPage(id, page.Data()); err != nil {
		bp.freeList = append(bp.freeList, fid)
		return nil, errors.Wrapf(err, "reading page %d", id)
	}
	page.pinCount = 1

	bp.pageTable.Insert(id, fid)
	bp.replacer.RecordAccess(fid)
	bp.replacer.SetEvictable(fid, false)

	return page, nil
}

// UnpinPage decrements a page's pin count, marking it dirty if isDirty
// is true. Once the pin count reaches zero the frame becomes a
// candidate for eviction. Reports whether the page was found pinned.
func (bp *BufferPool) UnpinPage(id PageID, isDirty bool) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	fid, ok := bp.pageTable.Find(id)
	if !ok {
		return false
	}
	page := bp.frames[fid]
	if isDirty {
		page.MarkDirty()
	}
	if page.pinCount <= 0 {
		return false
	}
	page.pinCount--
	if page.pinCount == 0 {
		bp.replacer.SetEvictable(fid, true)
	}
	return true
}

// FlushPage writes a resident page's current contents to disk
// regardless of pin count, clearing its dirty flag. Reports whether
// the page was resident.
func (bp *BufferPool) FlushPage(id PageID) (bool, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	fid, ok := bp.pageTable.Find(id)
	if !ok {
		return false, nil
	}
	page := bp.frames[fid]
	if err := bp.disk.WritePage(id, page.Data()); err != nil {
		return true, errors.Wrapf(err, "flushing page %d", id)
	}
	page.isDirty = false
	return true, nil
}

// FlushAllPages writes every resident page to disk.
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for fid, page := range bp.frames {
		if page.ID() == InvalidPageID {
			continue
		}
		if err := bp.disk.WritePage(page.ID(), page.Data()); err != nil {
			return errors.Wrapf(err, "flushing page %d (frame %d)", page.ID(), fid)
		}
		page.isDirty = false
	}
	return nil
}

// DeletePage removes a page from the pool and deallocates it on disk.
// It refuses to delete a pinned page (spec §4.3, DeletePage), returning
// false in that case without touching disk.
func (bp *BufferPool) DeletePage(id PageID) (bool, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	fid, ok := bp.pageTable.Find(id)
	if !ok {
		return true, nil
	}
	page := bp.frames[fid]
	if page.pinCount > 0 {
		return false, nil
	}

	bp.pageTable.Remove(id)
	bp.replacer.Remove(fid)
	page.reset(InvalidPageID)
	bp.freeList = append(bp.freeList, fid)

	if err := bp.disk.DeallocatePage(id); err != nil {
		return true, errors.Wrapf(err, "deallocating page %d", id)
	}
	return true, nil
}

// Stats summarizes pool occupancy, mainly for tests and diagnostics.
type Stats struct {
	Capacity     int
	FreeFrames   int
	ResidentPages int
	EvictableFrames int
}

func (bp *BufferPool) Stats() Stats {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	return Stats{
		Capacity:        len(bp.frames),
		FreeFrames:      len(bp.freeList),
		ResidentPages:   bp.pageTable.Len(),
		EvictableFrames: bp.replacer.EvictableCount(),
	}
}
