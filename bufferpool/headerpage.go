package bufferpool

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// HeaderPage is the catalog page living at HeaderPageID: a flat list of
// (name, page id) records letting a process locate a named tree's root
// after a restart (spec §6 names this collaborator's job without
// prescribing its layout). Layout, little-endian throughout:
//
//	offset 0:  record count (int32)
//	then, per record: name length (int32), name bytes, page id (int32)
//
// Records are small and few (one per named index), so a linear scan
// over the page's bytes is simpler than indexing it.
type HeaderPage struct {
	page *Page
}

// maxNameBytes bounds a single name so count+len+name+id records never
// overflow the page; it's generous for any realistic index name.
const maxNameBytes = 256

func NewHeaderPage(page *Page) *HeaderPage {
	return &HeaderPage{page: page}
}

func (h *HeaderPage) count() int32 {
	return int32(binary.LittleEndian.Uint32(h.page.data[0:4]))
}

func (h *HeaderPage) setCount(n int32) {
	binary.LittleEndian.PutUint32(h.page.data[0:4], uint32(n))
}

// GetRootID returns the page id registered under name.
func (h *HeaderPage) GetRootID(name string) (PageID, bool) {
	off := 4
	n := h.count()
	for i := int32(0); i < n; i++ {
		nameLen := int(binary.LittleEndian.Uint32(h.page.data[off : off+4]))
		off += 4
		recName := string(h.page.data[off : off+nameLen])
		off += nameLen
		id := PageID(binary.LittleEndian.Uint32(h.page.data[off : off+4]))
		off += 4
		if recName == name {
			return id, true
		}
	}
	return InvalidPageID, false
}

// InsertRecord appends a new (name, id) record. It errors if name is
// already registered; use UpdateRecord to change an existing mapping.
func (h *HeaderPage) InsertRecord(name string, id PageID) error {
	if len(name) > maxNameBytes {
		return errors.Errorf("header page: name %q exceeds %d bytes", name, maxNameBytes)
	}
	if _, ok := h.GetRootID(name); ok {
		return errors.Errorf("header page: name %q already registered", name)
	}

	off := h.endOffset()
	need := off + 4 + len(name) + 4
	if need > PageSize {
		return errors.New("header page: out of space for new record")
	}

	binary.LittleEndian.PutUint32(h.page.data[off:off+4], uint32(len(name)))
	off += 4
	copy(h.page.data[off:off+len(name)], name)
	off += len(name)
	binary.LittleEndian.PutUint32(h.page.data[off:off+4], uint32(id))

	h.setCount(h.count() + 1)
	h.page.MarkDirty()
	return nil
}

// UpdateRecord overwrites the page id registered under name. It errors
// if name isn't already registered.
func (h *HeaderPage) UpdateRecord(name string, id PageID) error {
	off := 4
	n := h.count()
	for i := int32(0); i < n; i++ {
		nameLen := int(binary.LittleEndian.Uint32(h.page.data[off : off+4]))
		off += 4
		recName := string(h.page.data[off : off+nameLen])
		off += nameLen
		if recName == name {
			binary.LittleEndian.PutUint32(h.page.data[off:off+4], uint32(id))
			h.page.MarkDirty()
			return nil
		}
		off += 4
	}
	return errors.Errorf("header page: name %q not registered", name)
}

// DeleteRecord removes the record for name, if present, compacting the
// records after it.
func (h *HeaderPage) DeleteRecord(name string) bool {
	off := 4
	n := h.count()
	for i := int32(0); i < n; i++ {
		recStart := off
		nameLen := int(binary.LittleEndian.Uint32(h.page.data[off : off+4]))
		off += 4
		recName := string(h.page.data[off : off+nameLen])
		off += nameLen
		off += 4 // id
		if recName == name {
			rest := h.page.data[off:h.endOffset()]
			copy(h.page.data[recStart:], rest)
			h.setCount(n - 1)
			h.page.MarkDirty()
			return true
		}
	}
	return false
}

func (h *HeaderPage) endOffset() int {
	off := 4
	n := h.count()
	for i := int32(0); i < n; i++ {
		nameLen := int(binary.LittleEndian.Uint32(h.page.data[off : off+4]))
		off += 4 + nameLen + 4
	}
	return off
}
