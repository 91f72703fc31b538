package btree

import "github.com/pkg/errors"

// ErrKeyNotFound is returned by operations that require an existing
// key (e.g. Remove) when the key is absent. GetValue and Insert report
// absence/presence via a boolean instead, per spec §7.
var ErrKeyNotFound = errors.New("btree: key not found")

// ErrTreeCorrupt signals an on-disk invariant violation detected by
// Validate, or by Open when a fresh pool's first page does not land at
// bufferpool.HeaderPageID (spec §7, class 6: "Internal consistency
// failure" is unrecoverable, not retried).
var ErrTreeCorrupt = errors.New("btree: invariant violation")
