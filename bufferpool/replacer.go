package bufferpool

import "sync"

// replacerHistorySize is the K in LRU-K: the number of most recent
// accesses a frame's backward K-distance is computed from (spec §4.1).
const replacerHistorySize = 2

// LRUKReplacer chooses an eviction victim among evictable frames using
// the backward K-distance policy: the frame whose Kth-most-recent access
// is furthest in the past is evicted first, and frames with fewer than K
// recorded accesses are treated as having infinite distance (so among
// those, the one with the oldest *first* access loses), per spec §4.1.
//
// This replaces the clock-based policy the teacher originally used here
// (bufferpool.ClockReplacer/circularList): the ordering here tracks a
// short access history per frame instead of a single reference bit.
type LRUKReplacer struct {
	mu    sync.Mutex
	k     int
	clock uint64
	nodes map[FrameID]*replacerEntry
}

type replacerEntry struct {
	history     []uint64 // oldest-first, at most k entries
	firstAccess uint64
	evictable   bool
}

// NewLRUKReplacer constructs a replacer tracking up to capacity frames,
// each ranked by its K most recent accesses.
func NewLRUKReplacer(capacity int, k int) *LRUKReplacer {
	if k < 1 {
		k = 1
	}
	return &LRUKReplacer{
		k:     k,
		nodes: make(map[FrameID]*replacerEntry, capacity),
	}
}

// RecordAccess registers an access to frameID at the current logical
// timestamp, advancing the replacer's clock.
func (r *LRUKReplacer) RecordAccess(frameID FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clock++
	e, ok := r.nodes[frameID]
	if !ok {
		e = &replacerEntry{firstAccess: r.clock}
		r.nodes[frameID] = e
	}
	e.history = append(e.history, r.clock)
	if len(e.history) > r.k {
		e.history = e.history[len(e.history)-r.k:]
	}
}

// SetEvictable marks frameID as a candidate (or not) for eviction.
// Frames with pin_count > 0 must be marked non-evictable by the caller.
func (r *LRUKReplacer) SetEvictable(frameID FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.nodes[frameID]
	if !ok {
		e = &replacerEntry{firstAccess: r.clock}
		r.nodes[frameID] = e
	}
	e.evictable = evictable
}

// Evict selects and removes the highest-K-distance evictable frame.
// Ties among frames with fewer than K accesses (infinite distance) are
// broken by earliest first-recorded access. Returns ok=false if no
// frame is currently evictable.
func (r *LRUKReplacer) Evict() (frameID FrameID, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bestDistance := int64(-1)
	bestFirstAccess := uint64(0)
	found := false

	for fid, e := range r.nodes {
		if !e.evictable {
			continue
		}

		var distance int64
		if len(e.history) < r.k {
			distance = -1 // sentinel for +inf, compared via firstAccess below
		} else {
			distance = int64(r.clock - e.history[0])
		}

		switch {
		case !found:
			found = true
			frameID, bestDistance, bestFirstAccess = fid, distance, e.firstAccess
		case distance == -1 && bestDistance == -1:
			// both infinite: earlier first access wins
			if e.firstAccess < bestFirstAccess {
				frameID, bestFirstAccess = fid, e.firstAccess
			}
		case distance == -1:
			// current candidate has finite distance, this one is infinite
			frameID, bestDistance, bestFirstAccess = fid, distance, e.firstAccess
		case bestDistance == -1:
			// keep the infinite-distance candidate
		case distance > bestDistance:
			frameID, bestDistance, bestFirstAccess = fid, distance, e.firstAccess
		}
	}

	if !found {
		return 0, false
	}
	delete(r.nodes, frameID)
	return frameID, true
}

// Remove drops all replacer state for frameID, used when a frame is
// freed outside of the normal eviction path (e.g. DeletePage).
func (r *LRUKReplacer) Remove(frameID FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, frameID)
}

// Size reports the number of frames currently tracked (evictable or
// not) by the replacer.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// EvictableCount reports the number of tracked frames currently marked
// evictable, i.e. how many Evict() could choose among right now.
func (r *LRUKReplacer) EvictableCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.nodes {
		if e.evictable {
			n++
		}
	}
	return n
}
