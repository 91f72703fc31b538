package btree

import "github.com/yaaawww/bustub-private/bufferpool"

// ancestors tracks the write-latched, pinned chain of pages held during
// a single top-down descent, as spec §4.4.5 describes: a child is
// latched before its parent is released. Tree.Insert and Tree.Remove
// hold the whole rootID-to-leaf chain for the operation's duration
// rather than releasing safe ancestors early; the tree-wide rootMu
// write lock already serializes writers, so early release buys no
// extra concurrency here, only the risk of losing track of a real
// ancestor a cascading split or merge later needs.
//
// Grounded on tstore's BTree.Insert/Remove, which keep a []*BTreeNode
// stack of latched-and-pinned ancestors and unwind it the same way.
type ancestors struct {
	guards []*bufferpool.Guard
}

func (a *ancestors) push(g *bufferpool.Guard) {
	a.guards = append(a.guards, g)
}

// releaseAll drops every held ancestor, used on an error path or once
// an operation has fully finished with the chain.
func (a *ancestors) releaseAll() {
	for _, g := range a.guards {
		g.Release()
	}
	a.guards = nil
}

// last returns the most recently pushed guard (the leaf, once descent
// reaches one), or nil if empty.
func (a *ancestors) last() *bufferpool.Guard {
	if len(a.guards) == 0 {
		return nil
	}
	return a.guards[len(a.guards)-1]
}
