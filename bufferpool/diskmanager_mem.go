package bufferpool

import (
	"sync"

	"github.com/pkg/errors"
)

// MemDiskManager is an in-memory DiskManager: pages live in a growable
// byte slice, never spilling to a file. It exists for tests and
// benchmarks that want a disk manager without a tempfile, grounded on
// the teacher's InMemDiskSpillingDiskManager (bufferpool package) minus
// the spill-to-tempfile behavior, which belonged to a pack-wide
// "growable scratch space" use case this pool doesn't have.
type MemDiskManager struct {
	mu       sync.Mutex
	numPages int32
	data     []byte
}

// NewMemDiskManager returns an empty in-memory disk manager.
func NewMemDiskManager() *MemDiskManager {
	return &MemDiskManager{}
}

func (d *MemDiskManager) ReadPage(id PageID, buf *[PageSize]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id < 0 || int32(id) >= d.numPages {
		return errors.Errorf("page %d not allocated", id)
	}
	offset := int(id) * PageSize
	copy(buf[:], d.data[offset:offset+PageSize])
	return nil
}

func (d *MemDiskManager) WritePage(id PageID, buf *[PageSize]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id < 0 || int32(id) >= d.numPages {
		return errors.Errorf("page %d not allocated", id)
	}
	offset := int(id) * PageSize
	copy(d.data[offset:offset+PageSize], buf[:])
	return nil
}

func (d *MemDiskManager) AllocatePage() (PageID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := PageID(d.numPages)
	d.numPages++
	d.data = append(d.data, make([]byte, PageSize)...)
	return id, nil
}

func (d *MemDiskManager) DeallocatePage(id PageID) error {
	return nil
}

func (d *MemDiskManager) Close() error {
	d.data = nil
	return nil
}

// NumPages reports how many pages have been allocated so far.
func (d *MemDiskManager) NumPages() int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.numPages
}
