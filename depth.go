package lazyslot

import "sync"

// depthRegistry tracks, per goroutine, how many lazy computations are
// currently unwinding on that goroutine's call stack. It is the process-wide
// analogue of thread-local storage: a goroutine that is in the middle of
// computing some slot has depth > 0, and a re-entrant read of a *different*
// in-flight slot may then return the forward value instead of blocking,
// which keeps mutually-recursive computation graphs deadlock-free.
//
// The registry is internal decision state for Slot.Get; raw depth values are
// not part of the public API.
type depthRegistry struct {
	mu     sync.Mutex
	counts map[int64]int
}

var initDepth = &depthRegistry{counts: make(map[int64]int)}

func (r *depthRegistry) enter(gid int64) {
	r.mu.Lock()
	r.counts[gid]++
	r.mu.Unlock()
}

// leave decrements the goroutine's counter, floored at zero so mismatched
// calls during exceptional unwinding cannot drive it negative. The entry is
// removed at zero; a goroutine that finished its top-level resolution leaves
// no residue behind.
func (r *depthRegistry) leave(gid int64) {
	r.mu.Lock()
	if r.counts[gid] <= 1 {
		delete(r.counts, gid)
	} else {
		r.counts[gid]--
	}
	r.mu.Unlock()
}

func (r *depthRegistry) depth(gid int64) int {
	r.mu.Lock()
	d := r.counts[gid]
	r.mu.Unlock()
	return d
}
