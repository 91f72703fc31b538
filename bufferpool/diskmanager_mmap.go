//go:build linux || darwin

package bufferpool

import (
	"os"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mmapGrowthBytes is the chunk size the backing file grows by whenever
// a write would run past the current mapping, rounded up to a multiple
// of this so remaps (and their attendant munmap/mmap syscalls) stay
// infrequent under sustained append-only growth.
const mmapGrowthBytes = 64 * 1024 * 1024 // 64MB

// MMapDiskManager is a file-backed DiskManager using a memory-mapped
// region, grounded on alexhholmes-fredb's internal/storage.MMap: pages
// are copied in and out of a growable mmap'd file rather than read/
// written with pread/pwrite, and growth remaps in large chunks instead
// of page-at-a-time truncation.
type MMapDiskManager struct {
	mu       sync.Mutex
	file     *os.File
	mapped   []byte
	mapSize  int64
	numPages int32
}

// OpenMMapDiskManager opens (creating if necessary) a file at path and
// memory-maps it for page-granular access.
func OpenMMapDiskManager(path string) (*MMapDiskManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "open data file")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat data file")
	}

	size := info.Size()
	numPages := int32(size / PageSize)
	mapSize := size
	if mapSize == 0 {
		mapSize = mmapGrowthBytes
		if err := f.Truncate(mapSize); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "truncate data file")
		}
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(mapSize), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "mmap data file")
	}

	return &MMapDiskManager{
		file:     f,
		mapped:   data,
		mapSize:  mapSize,
		numPages: numPages,
	}, nil
}

func (d *MMapDiskManager) ReadPage(id PageID, buf *[PageSize]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id < 0 || int32(id) >= d.numPages {
		return errors.Errorf("page %d not allocated", id)
	}
	offset := int64(id) * PageSize
	copy(buf[:], d.mapped[offset:offset+PageSize])
	return nil
}

func (d *MMapDiskManager) WritePage(id PageID, buf *[PageSize]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id < 0 || int32(id) >= d.numPages {
		return errors.Errorf("page %d not allocated", id)
	}
	offset := int64(id) * PageSize
	if offset+PageSize > d.mapSize {
		if err := d.growLocked(offset + PageSize); err != nil {
			return err
		}
	}
	copy(d.mapped[offset:offset+PageSize], buf[:])
	return nil
}

// growLocked remaps the file at a larger size. Caller must hold d.mu.
func (d *MMapDiskManager) growLocked(minSize int64) error {
	newSize := ((minSize + mmapGrowthBytes - 1) / mmapGrowthBytes) * mmapGrowthBytes

	_ = unix.Msync(d.mapped, unix.MS_ASYNC)
	if err := syscall.Munmap(d.mapped); err != nil {
		return errors.Wrap(err, "munmap for growth")
	}
	if err := d.file.Truncate(newSize); err != nil {
		return errors.Wrap(err, "truncate for growth")
	}
	data, err := syscall.Mmap(int(d.file.Fd()), 0, int(newSize), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return errors.Wrap(err, "remap after growth")
	}
	d.mapped = data
	d.mapSize = newSize
	return nil
}

func (d *MMapDiskManager) AllocatePage() (PageID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := PageID(atomic.LoadInt32(&d.numPages))
	offset := int64(id) * PageSize
	if offset+PageSize > d.mapSize {
		if err := d.growLocked(offset + PageSize); err != nil {
			return InvalidPageID, err
		}
	}
	atomic.AddInt32(&d.numPages, 1)
	return id, nil
}

func (d *MMapDiskManager) DeallocatePage(id PageID) error {
	return nil
}

// Sync flushes the memory-mapped region to disk synchronously.
func (d *MMapDiskManager) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := unix.Msync(d.mapped, unix.MS_SYNC); err != nil {
		return errors.Wrap(err, "msync")
	}
	return d.file.Sync()
}

func (d *MMapDiskManager) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mapped == nil {
		return nil
	}
	if err := syscall.Munmap(d.mapped); err != nil {
		return err
	}
	d.mapped = nil
	return d.file.Close()
}
