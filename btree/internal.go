package btree

import "github.com/yaaawww/bustub-private/bufferpool"

// internalEntrySize is the packed width of one (key, child page id)
// slot: two little-endian int32s, per spec §6.
const internalEntrySize = 8

// InternalNode narrows a tree page to the internal variant: one extra
// leading child pointer plus a sorted array of (key, child) pairs,
// where key[i] is the minimum key of the subtree rooted at child[i]
// for i >= 1; slot 0's key is unused (spec §3, "Internal").
type InternalNode struct {
	header
}

func newInternalNode(page *bufferpool.Page) InternalNode { return InternalNode{header{page}} }

// Init sets up a freshly allocated page as an empty internal node
// (zero keys, one yet-to-be-set child pointer at slot 0).
func (n InternalNode) Init(id, parent bufferpool.PageID, maxSize int) {
	n.setType(pageTypeInternal)
	n.setSize(0)
	n.setMaxSize(maxSize)
	n.SetParentPageID(parent)
	n.setPageID(id)
}

func (n InternalNode) entry(i int) []byte {
	off := internalHeaderSize + i*internalEntrySize
	return n.page.Data()[off : off+internalEntrySize]
}

func (n InternalNode) KeyAt(i int) Key { return Key(getInt32(n.entry(i)[0:4])) }

func (n InternalNode) ValueAt(i int) bufferpool.PageID {
	return bufferpool.PageID(getInt32(n.entry(i)[4:8]))
}

func (n InternalNode) setEntryAt(i int, k Key, v bufferpool.PageID) {
	e := n.entry(i)
	putInt32(e[0:4], int32(k))
	putInt32(e[4:8], int32(v))
}

func (n InternalNode) setKeyAt(i int, k Key) {
	n.setEntryAt(i, k, n.ValueAt(i))
}

// SetFirstChild sets the leading child pointer at slot 0.
func (n InternalNode) SetFirstChild(id bufferpool.PageID) {
	n.setEntryAt(0, 0, id)
}

// Lookup descends one level: per spec §4.4.1, choose child_i where i
// is the largest index with key_i <= key (child_0 covers everything
// below key_1).
func (n InternalNode) Lookup(key Key, cmp Comparator) bufferpool.PageID {
	lo, hi := 1, n.Size()+1
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(n.KeyAt(mid), key) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return n.ValueAt(lo - 1)
}

// positionOf returns the slot index whose child pointer is childID, or
// -1 if not present among this node's children.
func (n InternalNode) positionOf(childID bufferpool.PageID) int {
	for i := 0; i <= n.Size(); i++ {
		if n.ValueAt(i) == childID {
			return i
		}
	}
	return -1
}

// Insert places (key, child) in sorted position among slots [1, size].
// The tree guarantees keys are unique, so no duplicate check is made
// here (unlike LeafNode.Insert).
func (n InternalNode) Insert(key Key, child bufferpool.PageID, cmp Comparator) {
	lo, hi := 1, n.Size()+1
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(n.KeyAt(mid), key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	idx := lo
	for i := n.Size() + 1; i > idx; i-- {
		n.setEntryAt(i, n.KeyAt(i-1), n.ValueAt(i-1))
	}
	n.setEntryAt(idx, key, child)
	n.setSize(n.Size() + 1)
}

// Remove drops the (key, child) pair at slot pos, shifting everything
// after it left by one.
func (n InternalNode) Remove(pos int) {
	sz := n.Size()
	for i := pos; i < sz; i++ {
		n.setEntryAt(i, n.KeyAt(i+1), n.ValueAt(i+1))
	}
	n.setSize(sz - 1)
}

func (n InternalNode) appendChild(k Key, v bufferpool.PageID) {
	n.setEntryAt(n.Size()+1, k, v)
	n.setSize(n.Size() + 1)
}

// StealLastChild removes and returns the last (key, child) pair, for a
// node donating to its right neighbor (which will prepend it).
func (n InternalNode) StealLastChild() (Key, bufferpool.PageID, bool) {
	sz := n.Size()
	if sz == 0 {
		return 0, 0, false
	}
	k, v := n.KeyAt(sz), n.ValueAt(sz)
	n.setSize(sz - 1)
	return k, v, true
}

// StealFirstChild removes the leading child pointer (slot 0), shifting
// slot 1 up to become the new slot 0, and returns the removed child.
// The key half of the removed pair is meaningless (slot 0's key is
// always unused) and is not returned.
func (n InternalNode) StealFirstChild() (bufferpool.PageID, bool) {
	sz := n.Size()
	if sz == 0 {
		return 0, false
	}
	first := n.ValueAt(0)
	for i := 0; i < sz; i++ {
		n.setEntryAt(i, n.KeyAt(i+1), n.ValueAt(i+1))
	}
	n.setSize(sz - 1)
	return first, true
}

// InsertFirstChild shifts every slot right by one and installs child
// as the new slot 0. Callers must fix up slot 1's key afterward (it
// becomes the separator between the inserted child and the node's
// previous first child).
func (n InternalNode) InsertFirstChild(child bufferpool.PageID) {
	sz := n.Size()
	for i := sz + 1; i > 0; i-- {
		n.setEntryAt(i, n.KeyAt(i-1), n.ValueAt(i-1))
	}
	n.setEntryAt(0, 0, child)
	n.setSize(sz + 1)
}

// MergeFromRight absorbs other's children after this node's own, used
// when other is this node's immediate right sibling and is being
// deleted. separator is the key that used to partition the two nodes
// in their shared parent; it becomes the key of other's first child
// once appended here (spec §4.4.3, "pull the parent separator down as
// the join key").
func (n InternalNode) MergeFromRight(other InternalNode, separator Key) {
	other.setKeyAt(0, separator)
	base, m := n.Size(), other.Size()
	for i := 0; i <= m; i++ {
		n.setEntryAt(base+1+i, other.KeyAt(i), other.ValueAt(i))
	}
	n.setSize(base + m + 1)
}

// MergeFromLeft absorbs other's children before this node's own, used
// when other is this node's immediate left sibling and is being
// deleted. separator becomes the key of this node's previous first
// child once other's children are placed before it.
func (n InternalNode) MergeFromLeft(other InternalNode, separator Key) {
	n.setKeyAt(0, separator)
	base, m := n.Size(), other.Size()
	for i := base; i >= 0; i-- {
		n.setEntryAt(i+m+1, n.KeyAt(i), n.ValueAt(i))
	}
	for i := 0; i <= m; i++ {
		n.setEntryAt(i, other.KeyAt(i), other.ValueAt(i))
	}
	n.setSize(base + m + 1)
}
