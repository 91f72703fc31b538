package bufferpool

import "github.com/pkg/errors"

// ErrPoolExhausted is returned by NewPage/FetchPage when every frame is
// either pinned or otherwise not a free-list/replacer candidate (spec
// §7, class 1: capacity exhaustion). Callers must propagate it without
// having mutated any state.
var ErrPoolExhausted = errors.New("buffer pool exhausted: no free or evictable frame")

// ErrPageNotResident names the condition of a page id not currently in
// the pool. FlushPage, UnpinPage and DeletePage report that condition
// through their boolean result and do not return this error.
var ErrPageNotResident = errors.New("page not resident in buffer pool")
