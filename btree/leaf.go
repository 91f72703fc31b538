package btree

import "github.com/yaaawww/bustub-private/bufferpool"

// leafEntrySize is the packed width of one (key, value) pair: two
// little-endian int32s, per spec §6.
const leafEntrySize = 8

// LeafNode narrows a tree page to the leaf variant: a sorted array of
// (key, value) pairs plus the doubly-linked sibling pointers that form
// the leaf list in key order (spec §3, "Leaf").
type LeafNode struct {
	header
}

func newLeafNode(page *bufferpool.Page) LeafNode { return LeafNode{header{page}} }

// Init sets up a freshly allocated page as an empty leaf.
func (l LeafNode) Init(id, parent bufferpool.PageID, maxSize int) {
	l.setType(pageTypeLeaf)
	l.setSize(0)
	l.setMaxSize(maxSize)
	l.SetParentPageID(parent)
	l.setPageID(id)
	l.SetNextPageID(bufferpool.InvalidPageID)
	l.SetPrevPageID(bufferpool.InvalidPageID)
}

func (l LeafNode) NextPageID() bufferpool.PageID {
	return bufferpool.PageID(getInt32(l.field(offLeafNext)))
}
func (l LeafNode) SetNextPageID(id bufferpool.PageID) {
	putInt32(l.field(offLeafNext), int32(id))
}

func (l LeafNode) PrevPageID() bufferpool.PageID {
	return bufferpool.PageID(getInt32(l.field(offLeafPrev)))
}
func (l LeafNode) SetPrevPageID(id bufferpool.PageID) {
	putInt32(l.field(offLeafPrev), int32(id))
}

func (l LeafNode) entry(i int) []byte {
	off := leafHeaderSize + i*leafEntrySize
	return l.page.Data()[off : off+leafEntrySize]
}

func (l LeafNode) KeyAt(i int) Key { return Key(getInt32(l.entry(i)[0:4])) }

func (l LeafNode) ValueAt(i int) Value { return Value(getInt32(l.entry(i)[4:8])) }

func (l LeafNode) setEntryAt(i int, k Key, v Value) {
	e := l.entry(i)
	putInt32(e[0:4], int32(k))
	putInt32(e[4:8], int32(v))
}

// find binary-searches for key, returning its index if present, or the
// sorted insertion point otherwise (spec §4.4.1: "binary-search for
// key").
func (l LeafNode) find(key Key, cmp Comparator) (int, bool) {
	lo, hi := 0, l.Size()
	for lo < hi {
		mid := (lo + hi) / 2
		switch c := cmp(l.KeyAt(mid), key); {
		case c == 0:
			return mid, true
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}

// Insert places (key, value) in sorted position. Returns false without
// mutating the page if key is already present (spec §7, class 4:
// duplicate key).
func (l LeafNode) Insert(key Key, value Value, cmp Comparator) bool {
	idx, found := l.find(key, cmp)
	if found {
		return false
	}
	n := l.Size()
	for i := n; i > idx; i-- {
		l.setEntryAt(i, l.KeyAt(i-1), l.ValueAt(i-1))
	}
	l.setEntryAt(idx, key, value)
	l.setSize(n + 1)
	return true
}

// Remove deletes key's entry, if present. Returns false, unchanged, if
// key is absent.
func (l LeafNode) Remove(key Key, cmp Comparator) bool {
	idx, found := l.find(key, cmp)
	if !found {
		return false
	}
	l.RemoveAt(idx)
	return true
}

// RemoveAt deletes the entry at idx, shifting everything after it left
// by one. Exposed separately from Remove so a caller that already
// binary-searched for the key (to check whether it was the leftmost
// entry) doesn't have to search again.
func (l LeafNode) RemoveAt(idx int) {
	n := l.Size()
	for i := idx; i < n-1; i++ {
		l.setEntryAt(i, l.KeyAt(i+1), l.ValueAt(i+1))
	}
	l.setSize(n - 1)
}

func (l LeafNode) appendEntry(k Key, v Value) {
	l.setEntryAt(l.Size(), k, v)
	l.setSize(l.Size() + 1)
}

// InsertFirst shifts every entry right by one and places (k, v) at the
// front, used when stealing an entry from a left sibling.
func (l LeafNode) InsertFirst(k Key, v Value) {
	n := l.Size()
	for i := n; i > 0; i-- {
		l.setEntryAt(i, l.KeyAt(i-1), l.ValueAt(i-1))
	}
	l.setEntryAt(0, k, v)
	l.setSize(n + 1)
}

// InsertLast appends (k, v), used when stealing an entry from a right
// sibling.
func (l LeafNode) InsertLast(k Key, v Value) { l.appendEntry(k, v) }

// StealLast removes and returns the last entry, for a node donating to
// its right neighbor.
func (l LeafNode) StealLast() (Key, Value, bool) {
	n := l.Size()
	if n == 0 {
		return 0, 0, false
	}
	k, v := l.KeyAt(n-1), l.ValueAt(n-1)
	l.setSize(n - 1)
	return k, v, true
}

// StealFirst removes and returns the first entry, for a node donating
// to its left neighbor.
func (l LeafNode) StealFirst() (Key, Value, bool) {
	n := l.Size()
	if n == 0 {
		return 0, 0, false
	}
	k, v := l.KeyAt(0), l.ValueAt(0)
	for i := 0; i < n-1; i++ {
		l.setEntryAt(i, l.KeyAt(i+1), l.ValueAt(i+1))
	}
	l.setSize(n - 1)
	return k, v, true
}

// MergeFromRight appends other's entries after this node's own, used
// when this leaf is other's predecessor in the sibling list and other
// is being deleted (spec §4.4.3, "for leaves, concatenate entries").
func (l LeafNode) MergeFromRight(other LeafNode) {
	n, m := l.Size(), other.Size()
	for i := 0; i < m; i++ {
		l.setEntryAt(n+i, other.KeyAt(i), other.ValueAt(i))
	}
	l.setSize(n + m)
}

// MergeFromLeft prepends other's entries before this node's own, used
// when this leaf is other's successor in the sibling list and other is
// being deleted.
func (l LeafNode) MergeFromLeft(other LeafNode) {
	n, m := l.Size(), other.Size()
	for i := n - 1; i >= 0; i-- {
		l.setEntryAt(i+m, l.KeyAt(i), l.ValueAt(i))
	}
	for i := 0; i < m; i++ {
		l.setEntryAt(i, other.KeyAt(i), other.ValueAt(i))
	}
	l.setSize(n + m)
}
