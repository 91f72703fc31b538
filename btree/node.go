package btree

import (
	"encoding/binary"

	"github.com/yaaawww/bustub-private/bufferpool"
)

// pageType discriminates a tree page's on-disk variant, per spec §6's
// common header (offset 0: page_type, 0 invalid / 1 leaf / 2 internal).
// Leaf and internal are a tagged variant over one fixed header layout,
// not a class hierarchy (spec §9, "Polymorphism over page variants").
type pageType int32

const (
	pageTypeInvalid  pageType = 0
	pageTypeLeaf     pageType = 1
	pageTypeInternal pageType = 2
)

// Common header offsets, little-endian, matching spec §6's layout table.
const (
	offPageType = 0
	offLSN      = 4
	offSize     = 8
	offMaxSize  = 12
	offParent   = 16
	offPageID   = 20

	// Leaf-only, following the common header.
	offLeafNext = 24
	offLeafPrev = 28

	internalHeaderSize = 24
	leafHeaderSize      = 32
)

func getInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

func putInt32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

// header wraps a resident page and exposes the fixed common prefix
// shared by leaf and internal variants (spec §3, "Common header
// fields"). It never interprets the packed entry array that follows;
// that's LeafNode's and InternalNode's job.
type header struct {
	page *bufferpool.Page
}

func (h header) field(off int) []byte { return h.page.Data()[off : off+4] }

func (h header) Type() pageType { return pageType(getInt32(h.field(offPageType))) }
func (h header) setType(t pageType) { putInt32(h.field(offPageType), int32(t)) }

func (h header) IsLeaf() bool     { return h.Type() == pageTypeLeaf }
func (h header) IsInternal() bool { return h.Type() == pageTypeInternal }
func (h header) IsValid() bool    { return h.Type() != pageTypeInvalid }

func (h header) LSN() int32    { return getInt32(h.field(offLSN)) }
func (h header) SetLSN(v int32) { putInt32(h.field(offLSN), v) }

func (h header) Size() int      { return int(getInt32(h.field(offSize))) }
func (h header) setSize(n int)  { putInt32(h.field(offSize), int32(n)) }

func (h header) MaxSize() int { return int(getInt32(h.field(offMaxSize))) }
func (h header) setMaxSize(n int) { putInt32(h.field(offMaxSize), int32(n)) }

func (h header) ParentPageID() bufferpool.PageID {
	return bufferpool.PageID(getInt32(h.field(offParent)))
}
func (h header) SetParentPageID(id bufferpool.PageID) {
	putInt32(h.field(offParent), int32(id))
}

func (h header) PageID() bufferpool.PageID {
	return bufferpool.PageID(getInt32(h.field(offPageID)))
}
func (h header) setPageID(id bufferpool.PageID) {
	putInt32(h.field(offPageID), int32(id))
}

// asLeaf and asInternal are the narrowing helpers spec §9 asks for in
// place of an inheritance hierarchy: callers branch on h.IsLeaf() once
// and narrow to the concrete accessor set they need.
func (h header) asLeaf() LeafNode         { return LeafNode{h} }
func (h header) asInternal() InternalNode { return InternalNode{h} }
