package btree

import "github.com/yaaawww/bustub-private/bufferpool"

// Iterator walks a Tree's leaves in key order, holding at most one
// leaf pinned (with a read latch) at a time (spec §4.4.4). A zero
// Iterator is not usable; obtain one from Tree.Begin or Tree.Seek.
type Iterator struct {
	tree *Tree
	pool *bufferpool.BufferPool

	guard *bufferpool.Guard
	leaf  LeafNode
	idx   int

	done bool
	err  error
}

// Begin returns an iterator positioned at the first entry in key
// order, or a done iterator if the tree is empty.
func (t *Tree) Begin() (*Iterator, error) {
	t.rootMu.RLock()
	root := t.rootID
	t.rootMu.RUnlock()

	it := &Iterator{tree: t, pool: t.pool}
	if root == bufferpool.InvalidPageID {
		it.done = true
		return it, nil
	}
	leafID, err := t.firstLeaf(root)
	if err != nil {
		return nil, err
	}
	if err := it.loadLeaf(leafID); err != nil {
		return nil, err
	}
	it.idx = 0
	it.skipEmptyForward()
	return it, nil
}

// Seek returns an iterator positioned at the first entry whose key is
// greater than or equal to key.
func (t *Tree) Seek(key Key) (*Iterator, error) {
	t.rootMu.RLock()
	root := t.rootID
	t.rootMu.RUnlock()

	it := &Iterator{tree: t, pool: t.pool}
	if root == bufferpool.InvalidPageID {
		it.done = true
		return it, nil
	}

	guard, err := t.pool.FetchPageGuard(root)
	if err != nil {
		return nil, err
	}
	guard.Page().TakeReadLatch()
	for {
		h := header{guard.Page()}
		if h.IsLeaf() {
			break
		}
		childID := h.asInternal().Lookup(key, t.cmp)
		childGuard, err := t.pool.FetchPageGuard(childID)
		if err != nil {
			guard.Page().ReleaseReadLatch()
			guard.Release()
			return nil, err
		}
		childGuard.Page().TakeReadLatch()
		guard.Page().ReleaseReadLatch()
		guard.Release()
		guard = childGuard
	}

	leaf := newLeafNode(guard.Page())
	idx, _ := leaf.find(key, t.cmp)
	it.guard = guard
	it.leaf = leaf
	it.idx = idx
	it.skipEmptyForward()
	return it, nil
}

func (it *Iterator) loadLeaf(id bufferpool.PageID) error {
	guard, err := it.pool.FetchPageGuard(id)
	if err != nil {
		return err
	}
	guard.Page().TakeReadLatch()
	it.guard = guard
	it.leaf = newLeafNode(guard.Page())
	return nil
}

func (it *Iterator) releaseLeaf() {
	if it.guard == nil {
		return
	}
	it.guard.Page().ReleaseReadLatch()
	it.guard.Release()
	it.guard = nil
}

// skipEmptyForward advances across zero-length leaves (possible only
// transiently in a well-formed tree, but harmless to guard against)
// until it finds an entry or runs out of leaves.
func (it *Iterator) skipEmptyForward() {
	for !it.done && it.idx >= it.leaf.Size() {
		next := it.leaf.NextPageID()
		it.releaseLeaf()
		if next == bufferpool.InvalidPageID {
			it.done = true
			return
		}
		if err := it.loadLeaf(next); err != nil {
			it.err = err
			it.done = true
			return
		}
		it.idx = 0
	}
}

// Valid reports whether Key/Value may be called.
func (it *Iterator) Valid() bool { return !it.done && it.err == nil }

// Err returns the first error encountered while advancing, if any.
func (it *Iterator) Err() error { return it.err }

// Key returns the current entry's key. Valid must be true.
func (it *Iterator) Key() Key { return it.leaf.KeyAt(it.idx) }

// Value returns the current entry's value. Valid must be true.
func (it *Iterator) Value() Value { return it.leaf.ValueAt(it.idx) }

// Next advances to the following entry, crossing into the next leaf
// via the sibling list as needed (spec §4.4.4).
func (it *Iterator) Next() {
	if it.done {
		return
	}
	it.idx++
	it.skipEmptyForward()
}

// Close releases any pinned leaf. Safe to call multiple times, and on
// an iterator that already ran to completion.
func (it *Iterator) Close() {
	it.releaseLeaf()
	it.done = true
}
