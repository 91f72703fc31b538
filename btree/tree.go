package btree

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/yaaawww/bustub-private/bufferpool"
	"github.com/yaaawww/bustub-private/logger"
)

// minSize is the smallest number of entries (leaf) or keys (internal)
// a non-root node may hold before it is underfull: half of its
// capacity, rounded down.
func minSize(maxSize int) int { return maxSize / 2 }

// Tree is a clustered B+ tree index stored entirely as pages managed
// by a bufferpool.BufferPool. It holds no page in memory outside of a
// Guard's pin; every traversal is a sequence of Fetch/latch/release
// calls (spec §4.4). rootMu coarsely serializes all writers (spec §5
// permits "coarse but correct" granularity); readers still crab
// read-latches down from the root independently of rootMu's RLock,
// which only protects the rootID field itself and the header page
// record, grounded on tstore's BTree, which likewise guards its schema
// root pointer with a dedicated mutex separate from per-page latches.
type Tree struct {
	rootMu sync.RWMutex
	rootID bufferpool.PageID

	name string
	pool *bufferpool.BufferPool
	cmp  Comparator

	leafMax     int
	internalMax int

	log logger.Logger
}

// Open attaches a named clustered index to pool, creating the pool's
// header page if it does not exist yet; the index's own record in it is
// written the first time the tree's root is set. leafMax and
// internalMax bound the number of entries (leaf) or keys (internal) a
// page of that kind may hold before it must split (spec §3).
func Open(name string, pool *bufferpool.BufferPool, cmp Comparator, leafMax, internalMax int, log logger.Logger) (*Tree, error) {
	if log == nil {
		log = logger.NopLogger
	}
	if cmp == nil {
		cmp = DefaultComparator
	}

	hdrPage, err := pool.FetchPage(bufferpool.HeaderPageID)
	if err != nil {
		hdrPage, err = bootstrapHeaderPage(pool)
		if err != nil {
			return nil, err
		}
	}
	hdr := bufferpool.NewHeaderPage(hdrPage)
	root, _ := hdr.GetRootID(name)
	pool.UnpinPage(bufferpool.HeaderPageID, false)

	return &Tree{
		rootID:      root,
		name:        name,
		pool:        pool,
		cmp:         cmp,
		leafMax:     leafMax,
		internalMax: internalMax,
		log:         log,
	}, nil
}

// bootstrapHeaderPage creates the header page the first time a pool is
// used, asserting it lands at bufferpool.HeaderPageID since it must be
// the very first page any fresh database allocates.
func bootstrapHeaderPage(pool *bufferpool.BufferPool) (*bufferpool.Page, error) {
	id, page, err := pool.NewPage()
	if err != nil {
		return nil, err
	}
	if id != bufferpool.HeaderPageID {
		pool.UnpinPage(id, false)
		return nil, ErrTreeCorrupt
	}
	return page, nil
}

func (t *Tree) persistRoot() error {
	hdrPage, err := t.pool.FetchPage(bufferpool.HeaderPageID)
	if err != nil {
		return err
	}
	defer t.pool.UnpinPage(bufferpool.HeaderPageID, true)

	hdr := bufferpool.NewHeaderPage(hdrPage)
	if _, ok := hdr.GetRootID(t.name); ok {
		return hdr.UpdateRecord(t.name, t.rootID)
	}
	return hdr.InsertRecord(t.name, t.rootID)
}

// Height reports the number of levels from root to leaf, inclusive.
// A tree with only a root leaf has height 1; an empty tree has height
// 0 (SPEC_FULL, supplemented diagnostics).
func (t *Tree) Height() (int, error) {
	t.rootMu.RLock()
	defer t.rootMu.RUnlock()

	if t.rootID == bufferpool.InvalidPageID {
		return 0, nil
	}
	height := 0
	id := t.rootID
	for {
		guard, err := t.pool.FetchPageGuard(id)
		if err != nil {
			return 0, err
		}
		h := header{guard.Page()}
		height++
		if h.IsLeaf() {
			guard.Release()
			return height, nil
		}
		id = h.asInternal().ValueAt(0)
		guard.Release()
	}
}

// Len counts every entry across all leaves, by walking the sibling
// list once (spec §4.4.4 underlies this: the leaf list is already in
// key order).
func (t *Tree) Len() (int, error) {
	t.rootMu.RLock()
	defer t.rootMu.RUnlock()

	if t.rootID == bufferpool.InvalidPageID {
		return 0, nil
	}
	leafID, err := t.firstLeaf(t.rootID)
	if err != nil {
		return 0, err
	}
	count := 0
	for leafID != bufferpool.InvalidPageID {
		guard, err := t.pool.FetchPageGuard(leafID)
		if err != nil {
			return 0, err
		}
		leaf := newLeafNode(guard.Page())
		count += leaf.Size()
		next := leaf.NextPageID()
		guard.Release()
		leafID = next
	}
	return count, nil
}

func (t *Tree) firstLeaf(id bufferpool.PageID) (bufferpool.PageID, error) {
	for {
		guard, err := t.pool.FetchPageGuard(id)
		if err != nil {
			return bufferpool.InvalidPageID, err
		}
		h := header{guard.Page()}
		if h.IsLeaf() {
			guard.Release()
			return id, nil
		}
		id = h.asInternal().ValueAt(0)
		guard.Release()
	}
}

// GetValue looks up key, read-latch-crabbing from the root (spec
// §4.4.1, §4.4.5): a child is latched before its parent is unlatched,
// and at most two pages are ever held at once.
func (t *Tree) GetValue(key Key) (Value, bool, error) {
	t.rootMu.RLock()
	root := t.rootID
	t.rootMu.RUnlock()

	if root == bufferpool.InvalidPageID {
		return 0, false, nil
	}

	guard, err := t.pool.FetchPageGuard(root)
	if err != nil {
		return 0, false, err
	}
	guard.Page().TakeReadLatch()

	for {
		h := header{guard.Page()}
		if h.IsLeaf() {
			leaf := h.asLeaf()
			idx, found := leaf.find(key, t.cmp)
			var val Value
			if found {
				val = leaf.ValueAt(idx)
			}
			guard.Page().ReleaseReadLatch()
			guard.Release()
			return val, found, nil
		}

		childID := h.asInternal().Lookup(key, t.cmp)
		childGuard, err := t.pool.FetchPageGuard(childID)
		if err != nil {
			guard.Page().ReleaseReadLatch()
			guard.Release()
			return 0, false, err
		}
		childGuard.Page().TakeReadLatch()
		guard.Page().ReleaseReadLatch()
		guard.Release()
		guard = childGuard
	}
}

// Insert adds (key, value), reporting false without modifying the tree
// if key is already present (spec §4.4.2). The whole operation holds
// rootMu for writing, so the per-page write-latch crabbing below exists
// for fidelity to spec §4.4.5 rather than for correctness under this
// tree's own concurrency model.
func (t *Tree) Insert(key Key, value Value) (bool, error) {
	t.rootMu.Lock()
	defer t.rootMu.Unlock()

	if t.rootID == bufferpool.InvalidPageID {
		id, page, err := t.pool.NewPage()
		if err != nil {
			return false, err
		}
		leaf := newLeafNode(page)
		leaf.Init(id, bufferpool.InvalidPageID, t.leafMax)
		leaf.Insert(key, value, t.cmp)
		t.pool.UnpinPage(id, true)
		t.rootID = id
		if err := t.persistRoot(); err != nil {
			return false, err
		}
		return true, nil
	}

	var anc ancestors
	id := t.rootID
	for {
		guard, err := t.pool.FetchPageGuard(id)
		if err != nil {
			anc.releaseAll()
			return false, err
		}
		guard.Page().TakeWriteLatch()
		anc.push(guard)

		h := header{guard.Page()}
		if h.IsLeaf() {
			break
		}
		id = h.asInternal().Lookup(key, t.cmp)
	}

	leafGuard := anc.last()
	leaf := newLeafNode(leafGuard.Page())
	if !leaf.Insert(key, value, t.cmp) {
		releaseWriteLatched(&anc, false)
		return false, nil
	}
	leafGuard.MarkDirty()

	if leaf.Size() <= t.leafMax {
		releaseWriteLatched(&anc, true)
		return true, nil
	}

	if err := t.propagateSplit(&anc); err != nil {
		return false, err
	}
	return true, nil
}

// releaseWriteLatched drops every guard in anc, applying dirty only to
// the last element; callers that mutated an ancestor above it mark that
// guard dirty themselves.
func releaseWriteLatched(anc *ancestors, dirty bool) {
	for i, g := range anc.guards {
		g.Page().ReleaseWriteLatch()
		if i == len(anc.guards)-1 && dirty {
			g.MarkDirty()
		}
		g.Release()
	}
	anc.guards = nil
}

// propagateSplit handles a leaf (or, recursively, internal) page found
// overflowing after an insert: split it, promote the separator into
// the parent held in anc, and keep going up until some ancestor
// absorbs the new entry without itself overflowing, or the root splits
// and a new root is created (spec §4.4.2, "Split" and "Cascading
// split").
func (t *Tree) propagateSplit(anc *ancestors) error {
	cur := anc.guards[len(anc.guards)-1]
	anc.guards = anc.guards[:len(anc.guards)-1]

	h := header{cur.Page()}
	var newID bufferpool.PageID
	var sep Key
	var err error
	if h.IsLeaf() {
		newID, sep, err = t.splitLeaf(cur)
	} else {
		newID, sep, err = t.splitInternal(cur)
	}
	if err != nil {
		cur.Page().ReleaseWriteLatch()
		cur.Release()
		return err
	}
	cur.MarkDirty()
	cur.Page().ReleaseWriteLatch()
	curID := cur.Page().ID()
	cur.Release()

	if len(anc.guards) == 0 {
		return t.newRoot(curID, sep, newID)
	}

	parentGuard := anc.guards[len(anc.guards)-1]
	parent := newInternalNode(parentGuard.Page())
	parent.Insert(sep, newID, t.cmp)
	if err := t.reparent(newID, parent.PageID()); err != nil {
		return err
	}

	if parent.Size() <= t.internalMax {
		parentGuard.MarkDirty()
		releaseWriteLatched(anc, true)
		return nil
	}
	return t.propagateSplit(anc)
}

// newRoot builds a fresh internal root over oldRoot and newRight after
// the previous root overflowed and split (spec §4.4.2, root split).
func (t *Tree) newRoot(oldRoot bufferpool.PageID, sep Key, newRight bufferpool.PageID) error {
	id, page, err := t.pool.NewPage()
	if err != nil {
		return err
	}
	root := newInternalNode(page)
	root.Init(id, bufferpool.InvalidPageID, t.internalMax)
	root.SetFirstChild(oldRoot)
	root.Insert(sep, newRight, t.cmp)
	t.pool.UnpinPage(id, true)

	if err := t.reparent(oldRoot, id); err != nil {
		return err
	}
	if err := t.reparent(newRight, id); err != nil {
		return err
	}

	t.rootID = id
	return t.persistRoot()
}

func (t *Tree) reparent(childID, parentID bufferpool.PageID) error {
	guard, err := t.pool.FetchPageGuard(childID)
	if err != nil {
		return err
	}
	h := header{guard.Page()}
	h.SetParentPageID(parentID)
	guard.MarkDirty()
	guard.Release()
	return nil
}

// splitLeaf moves the upper half of an overflowing leaf's entries into
// a new right sibling, relinking the sibling list around it (spec §4.4.2,
// mirroring BusTub's SplitLeaf: mid = size/2, the new leaf's first key
// is promoted as the separator).
func (t *Tree) splitLeaf(leftGuard *bufferpool.Guard) (bufferpool.PageID, Key, error) {
	left := newLeafNode(leftGuard.Page())

	rightID, rightPage, err := t.pool.NewPage()
	if err != nil {
		return 0, 0, err
	}
	right := newLeafNode(rightPage)
	right.Init(rightID, left.ParentPageID(), t.leafMax)

	n := left.Size()
	mid := n / 2
	for i := mid; i < n; i++ {
		right.appendEntry(left.KeyAt(i), left.ValueAt(i))
	}
	left.setSize(mid)

	oldNext := left.NextPageID()
	right.SetPrevPageID(left.PageID())
	right.SetNextPageID(oldNext)
	left.SetNextPageID(rightID)

	if oldNext != bufferpool.InvalidPageID {
		nextGuard, err := t.pool.FetchPageGuard(oldNext)
		if err != nil {
			t.pool.UnpinPage(rightID, true)
			return 0, 0, err
		}
		newLeafNode(nextGuard.Page()).SetPrevPageID(rightID)
		nextGuard.MarkDirty()
		nextGuard.Release()
	}

	separator := right.KeyAt(0)
	t.pool.UnpinPage(rightID, true)
	return rightID, separator, nil
}

// splitInternal moves the upper half of an overflowing internal node's
// children into a new right sibling, promoting the boundary key up to
// the caller (spec §4.4.2, mirroring BusTub's SplitInternal: mid =
// size/2+1, the promoted key is removed from both halves rather than
// duplicated, since an internal separator is not itself a search-result
// entry).
func (t *Tree) splitInternal(leftGuard *bufferpool.Guard) (bufferpool.PageID, Key, error) {
	left := newInternalNode(leftGuard.Page())

	rightID, rightPage, err := t.pool.NewPage()
	if err != nil {
		return 0, 0, err
	}
	right := newInternalNode(rightPage)
	right.Init(rightID, left.ParentPageID(), t.internalMax)

	n := left.Size()
	mid := n/2 + 1
	separator := left.KeyAt(mid)

	right.SetFirstChild(left.ValueAt(mid))
	for i := mid + 1; i <= n; i++ {
		right.appendChild(left.KeyAt(i), left.ValueAt(i))
	}
	left.setSize(mid - 1)

	for i := 0; i <= right.Size(); i++ {
		if err := t.reparent(right.ValueAt(i), rightID); err != nil {
			t.pool.UnpinPage(rightID, true)
			return 0, 0, err
		}
	}

	t.pool.UnpinPage(rightID, true)
	return rightID, separator, nil
}

// Remove deletes key, returning ErrKeyNotFound if it is absent (spec
// §4.4.3). An underfull node is first offered a steal from one sibling
// (the right one, or the left one for a parent's last child); only when
// that sibling cannot spare an entry is a merge with it performed,
// cascading up and potentially collapsing the root.
func (t *Tree) Remove(key Key) error {
	t.rootMu.Lock()
	defer t.rootMu.Unlock()

	if t.rootID == bufferpool.InvalidPageID {
		return ErrKeyNotFound
	}

	var anc ancestors
	id := t.rootID
	for {
		guard, err := t.pool.FetchPageGuard(id)
		if err != nil {
			anc.releaseAll()
			return err
		}
		guard.Page().TakeWriteLatch()
		anc.push(guard)

		h := header{guard.Page()}
		if h.IsLeaf() {
			break
		}
		internal := h.asInternal()
		id = internal.Lookup(key, t.cmp)
	}

	leafGuard := anc.last()
	leaf := newLeafNode(leafGuard.Page())
	idx, found := leaf.find(key, t.cmp)
	if !found {
		releaseWriteLatched(&anc, false)
		return ErrKeyNotFound
	}
	leaf.RemoveAt(idx)
	leafGuard.MarkDirty()

	isRoot := leafGuard.Page().ID() == t.rootID
	if idx == 0 && !isRoot {
		if leaf.Size() > 0 {
			fixLeftEdgeSeparator(&anc, leaf.KeyAt(0))
		} else {
			// An emptied leaf gets its new minimum from its right
			// sibling (by steal or merge) during rebalance.
			parent := newInternalNode(anc.guards[len(anc.guards)-2].Page())
			if pos := parent.positionOf(leafGuard.Page().ID()); pos < parent.Size() {
				fixLeftEdgeSeparator(&anc, parent.KeyAt(pos+1))
			}
		}
	}
	if isRoot || leaf.Size() >= minSize(t.leafMax) {
		releaseWriteLatched(&anc, true)
		return nil
	}
	return t.rebalance(&anc)
}

// fixLeftEdgeSeparator updates the separator key above a node whose
// minimum key just changed without the node itself underflowing (spec
// §4.4.3: "if its leftmost key changed, update the corresponding
// separator key in the first non-zero-position ancestor"). anc holds
// the write-latched chain from root to the changed node inclusive; the
// chain is walked upward past any ancestor the node occupies at
// position 0 of, since that ancestor's own minimum key changed too and
// carries no separator of its own to fix.
func fixLeftEdgeSeparator(anc *ancestors, newMin Key) {
	for i := len(anc.guards) - 2; i >= 0; i-- {
		parentGuard, childGuard := anc.guards[i], anc.guards[i+1]
		parent := newInternalNode(parentGuard.Page())
		pos := parent.positionOf(childGuard.Page().ID())
		if pos == 0 {
			continue
		}
		parent.setKeyAt(pos, newMin)
		parentGuard.MarkDirty()
		return
	}
}

// rebalance fixes up an underfull leaf (the last entry in anc) by
// stealing from a sibling, or merging with one, cascading the same
// treatment up through ancestors as needed (spec §4.4.3).
func (t *Tree) rebalance(anc *ancestors) error {
	cur := anc.guards[len(anc.guards)-1]
	anc.guards = anc.guards[:len(anc.guards)-1]

	if len(anc.guards) == 0 {
		// Underfull root: nothing to steal from or merge with. A leaf
		// root is always valid regardless of occupancy; an internal
		// root with zero keys collapses onto its one remaining child.
		h := header{cur.Page()}
		if h.IsInternal() && h.Size() == 0 {
			return t.collapseRoot(cur)
		}
		cur.Page().ReleaseWriteLatch()
		cur.Release()
		return nil
	}

	parentGuard := anc.guards[len(anc.guards)-1]
	parent := newInternalNode(parentGuard.Page())
	pos := parent.positionOf(cur.Page().ID())

	if (header{cur.Page()}).IsLeaf() {
		if err := t.rebalanceLeaf(cur, parent, pos); err != nil {
			return err
		}
	} else {
		if err := t.rebalanceInternal(cur, parent, pos); err != nil {
			return err
		}
	}

	if parentGuard.Page().ID() == t.rootID {
		if parent.Size() == 0 {
			anc.guards = anc.guards[:len(anc.guards)-1]
			return t.collapseRoot(parentGuard)
		}
		releaseWriteLatched(anc, true)
		return nil
	}
	if parent.Size() >= minSize(t.internalMax) {
		releaseWriteLatched(anc, true)
		return nil
	}
	return t.rebalance(anc)
}

// collapseRoot replaces an internal root left with zero keys (one
// remaining child after a merge) by that child, freeing the old root
// page (spec §4.4.3, "Root collapse").
func (t *Tree) collapseRoot(cur *bufferpool.Guard) error {
	onlyChild := newInternalNode(cur.Page()).ValueAt(0)
	cur.Page().ReleaseWriteLatch()
	rootID := cur.Page().ID()
	cur.Release()
	if _, err := t.pool.DeletePage(rootID); err != nil {
		return err
	}
	if err := t.reparent(onlyChild, bufferpool.InvalidPageID); err != nil {
		return err
	}
	t.rootID = onlyChild
	return t.persistRoot()
}

func (t *Tree) siblingGuard(parent InternalNode, pos int, dir int) (*bufferpool.Guard, error) {
	i := pos + dir
	if i < 0 || i > parent.Size() {
		return nil, nil
	}
	g, err := t.pool.FetchPageGuard(parent.ValueAt(i))
	if err != nil {
		return nil, err
	}
	g.Page().TakeWriteLatch()
	return g, nil
}

// rebalanceLeaf resolves an underfull leaf at slot pos of parent using
// one sibling (the right one, or the left one when this leaf is the
// last child, mirroring BusTub's StealSibling/Merge direction rules):
// it steals one entry if that sibling has spare capacity, otherwise it
// merges with it. The other sibling is not consulted.
func (t *Tree) rebalanceLeaf(curGuard *bufferpool.Guard, parent InternalNode, pos int) error {
	cur := newLeafNode(curGuard.Page())

	isLast := pos == parent.Size()
	primaryDir, fallbackDir := 1, -1
	if isLast {
		primaryDir, fallbackDir = -1, 1
	}

	sibGuard, err := t.siblingGuard(parent, pos, primaryDir)
	if err != nil {
		return err
	}
	if sibGuard == nil {
		sibGuard, err = t.siblingGuard(parent, pos, fallbackDir)
		if err != nil {
			return err
		}
		primaryDir = fallbackDir
	}
	if sibGuard == nil {
		curGuard.Page().ReleaseWriteLatch()
		curGuard.Release()
		return nil
	}
	sib := newLeafNode(sibGuard.Page())
	sibPos := pos + primaryDir

	minLeaf := minSize(t.leafMax)
	if sib.Size() > minLeaf {
		if primaryDir > 0 {
			// steal right sibling's first entry.
			k, v, _ := sib.StealFirst()
			cur.InsertLast(k, v)
			parent.setKeyAt(sibPos, sib.KeyAt(0))
		} else {
			// steal left sibling's last entry.
			k, v, _ := sib.StealLast()
			cur.InsertFirst(k, v)
			parent.setKeyAt(pos, k)
		}
		curGuard.MarkDirty()
		sibGuard.MarkDirty()
		curGuard.Page().ReleaseWriteLatch()
		curGuard.Release()
		sibGuard.Page().ReleaseWriteLatch()
		sibGuard.Release()
		return nil
	}

	// Merge. Always fold the right-hand leaf into the left-hand one so
	// the sibling list only ever loses its right member.
	var leftGuard, rightGuard *bufferpool.Guard
	var leftPos int
	if primaryDir > 0 {
		leftGuard, rightGuard, leftPos = curGuard, sibGuard, pos
	} else {
		leftGuard, rightGuard, leftPos = sibGuard, curGuard, sibPos
	}
	left := newLeafNode(leftGuard.Page())
	right := newLeafNode(rightGuard.Page())

	left.MergeFromRight(right)
	left.SetNextPageID(right.NextPageID())
	if right.NextPageID() != bufferpool.InvalidPageID {
		if err := t.fixPrevLink(right.NextPageID(), left.PageID()); err != nil {
			return err
		}
	}

	rightID := right.PageID()
	leftGuard.MarkDirty()
	leftGuard.Page().ReleaseWriteLatch()
	rightGuard.Page().ReleaseWriteLatch()
	leftGuard.Release()
	rightGuard.Release()

	parent.Remove(leftPos + 1)
	if _, err := t.pool.DeletePage(rightID); err != nil {
		return err
	}
	return nil
}

func (t *Tree) fixPrevLink(leafID, prevID bufferpool.PageID) error {
	g, err := t.pool.FetchPageGuard(leafID)
	if err != nil {
		return err
	}
	newLeafNode(g.Page()).SetPrevPageID(prevID)
	g.MarkDirty()
	g.Release()
	return nil
}

// rebalanceInternal resolves an underfull internal node the same way
// as rebalanceLeaf, but operating on (key, child) slots and reparenting
// any child pointer that moves between nodes (spec §4.4.3, internal
// steal/merge).
func (t *Tree) rebalanceInternal(curGuard *bufferpool.Guard, parent InternalNode, pos int) error {
	cur := newInternalNode(curGuard.Page())

	isLast := pos == parent.Size()
	primaryDir, fallbackDir := 1, -1
	if isLast {
		primaryDir, fallbackDir = -1, 1
	}

	sibGuard, err := t.siblingGuard(parent, pos, primaryDir)
	if err != nil {
		return err
	}
	if sibGuard == nil {
		sibGuard, err = t.siblingGuard(parent, pos, fallbackDir)
		if err != nil {
			return err
		}
		primaryDir = fallbackDir
	}
	if sibGuard == nil {
		curGuard.Page().ReleaseWriteLatch()
		curGuard.Release()
		return nil
	}
	sib := newInternalNode(sibGuard.Page())
	sibPos := pos + primaryDir

	minInternal := minSize(t.internalMax)
	if sib.Size() > minInternal {
		if primaryDir > 0 {
			// Pull right sibling's first child across, using the
			// parent's current separator (key at sibPos) as the join
			// key, then promote right sibling's new first key up.
			moved := sib.ValueAt(0)
			newSibSeparator := sib.KeyAt(1)
			sib.StealFirstChild()
			joinKey := parent.KeyAt(sibPos)
			cur.appendChild(joinKey, moved)
			parent.setKeyAt(sibPos, newSibSeparator)
			if err := t.reparent(moved, cur.PageID()); err != nil {
				return err
			}
		} else {
			k, v, _ := sib.StealLastChild()
			joinKey := parent.KeyAt(pos)
			cur.InsertFirstChild(v)
			cur.setKeyAt(1, joinKey)
			parent.setKeyAt(pos, k)
			if err := t.reparent(v, cur.PageID()); err != nil {
				return err
			}
		}
		curGuard.MarkDirty()
		sibGuard.MarkDirty()
		curGuard.Page().ReleaseWriteLatch()
		curGuard.Release()
		sibGuard.Page().ReleaseWriteLatch()
		sibGuard.Release()
		return nil
	}

	var leftGuard, rightGuard *bufferpool.Guard
	var leftPos int
	if primaryDir > 0 {
		leftGuard, rightGuard, leftPos = curGuard, sibGuard, pos
	} else {
		leftGuard, rightGuard, leftPos = sibGuard, curGuard, sibPos
	}
	left := newInternalNode(leftGuard.Page())
	right := newInternalNode(rightGuard.Page())
	separator := parent.KeyAt(leftPos + 1)

	for i := 0; i <= right.Size(); i++ {
		if err := t.reparent(right.ValueAt(i), left.PageID()); err != nil {
			return err
		}
	}
	left.MergeFromRight(right, separator)

	rightID := right.PageID()
	leftGuard.MarkDirty()
	leftGuard.Page().ReleaseWriteLatch()
	rightGuard.Page().ReleaseWriteLatch()
	leftGuard.Release()
	rightGuard.Release()

	parent.Remove(leftPos + 1)
	if _, err := t.pool.DeletePage(rightID); err != nil {
		return err
	}
	return nil
}

// Validate walks the whole tree checking structural invariants: strictly
// increasing keys within every leaf, parent pointers, and that every
// internal separator key equals the minimum key of the subtree to its
// right (SPEC_FULL, supplemented bulk-checker). It does not check
// occupancy bounds, leaf depth, or the leaf sibling links. It reports
// the first violation found via ErrTreeCorrupt.
func (t *Tree) Validate() error {
	t.rootMu.RLock()
	defer t.rootMu.RUnlock()

	if t.rootID == bufferpool.InvalidPageID {
		return nil
	}
	_, _, err := t.validateSubtree(t.rootID, bufferpool.InvalidPageID, true)
	return err
}

// validateSubtree returns the minimum and maximum keys found in the
// subtree rooted at id, for the caller to check against its own
// separator keys.
func (t *Tree) validateSubtree(id, expectParent bufferpool.PageID, isRoot bool) (Key, Key, error) {
	guard, err := t.pool.FetchPageGuard(id)
	if err != nil {
		return 0, 0, err
	}
	defer guard.Release()

	h := header{guard.Page()}
	if !isRoot && h.ParentPageID() != expectParent {
		return 0, 0, errors.WithMessage(ErrTreeCorrupt, "parent pointer mismatch")
	}

	if h.IsLeaf() {
		leaf := h.asLeaf()
		n := leaf.Size()
		if n == 0 {
			return 0, 0, nil
		}
		for i := 1; i < n; i++ {
			if t.cmp(leaf.KeyAt(i-1), leaf.KeyAt(i)) >= 0 {
				return 0, 0, errors.WithMessage(ErrTreeCorrupt, "leaf keys not strictly increasing")
			}
		}
		return leaf.KeyAt(0), leaf.KeyAt(n - 1), nil
	}

	internal := h.asInternal()
	n := internal.Size()
	var min, max Key
	for i := 0; i <= n; i++ {
		childMin, childMax, err := t.validateSubtree(internal.ValueAt(i), id, false)
		if err != nil {
			return 0, 0, err
		}
		if i == 0 {
			min = childMin
		}
		if i == n {
			max = childMax
		}
		if i > 0 && t.cmp(childMin, internal.KeyAt(i)) != 0 {
			return 0, 0, errors.WithMessage(ErrTreeCorrupt, "separator key mismatch")
		}
	}
	return min, max, nil
}
