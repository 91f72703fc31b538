// Package btree implements a clustered B+ tree index over fixed-size
// keys and values, built entirely through a bufferpool.BufferPool: it
// never dereferences a child node directly, only ever by page id
// through Fetch/NewPage, mirroring the tstore B+ tree this package
// is grounded on (latch-crabbing descent, split/steal/merge bottom-up
// maintenance) but with the SQL-catalog coupling stripped out.
package btree

// Key is the tree's fixed-width sort key. Keeping it a plain int32
// (rather than a generic byte-string key as tstore's GenericKey
// supports) keeps on-disk entries a fixed 8 bytes, matching §6's
// packed-array layout without a separate variable-length key area.
type Key int32

// Value is the payload associated with a unique Key. Real clustered
// indexes store a record id; here it stands in for one.
type Value int32

// Comparator is the tree's injected strict-weak-order over keys (spec
// §4.4: "Comparison is via an injected strict-weak-order comparator").
// It returns a negative number if a < b, zero if equal, positive if
// a > b.
type Comparator func(a, b Key) int

// DefaultComparator orders keys by their natural integer value.
func DefaultComparator(a, b Key) int {
	return int(a) - int(b)
}
