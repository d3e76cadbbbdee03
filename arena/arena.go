// Package arena provides the dense, id-indexed entity storage the
// network builds clips, bands, lanes and vehicles on top of.
//
// Each Arena[T] is a growable slice indexed by a non-zero uint32 id,
// plus a stack of freed ids for recycling. Id 0 is never issued and
// always means "none". Growth doubles the backing slice's capacity,
// mirroring the teacher runtime's region-doubling discipline but
// replaced here with a typed slice instead of a raw byte buffer, since
// every entity kind in this engine is a fixed Go struct, not an
// opaque payload.
package arena

import "fmt"

// Arena is a dense, id-indexed store for one entity kind T.
type Arena[T any] struct {
	slots   []T
	free    []uint32
	counter uint32
}

// New creates an empty arena with the given initial capacity hint.
func New[T any](capacityHint int) *Arena[T] {
	if capacityHint < 1 {
		capacityHint = 1
	}
	// slot 0 is reserved ("none"); pre-seed it so len(slots) tracks ids 1:1.
	slots := make([]T, 1, capacityHint+1)
	return &Arena[T]{slots: slots}
}

// Fetch allocates a fresh id, recycling a freed one if available, and
// returns it along with a pointer to its zero-valued slot for the
// caller to populate.
func (a *Arena[T]) Fetch() (uint32, *T) {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		var zero T
		a.slots[id] = zero
		return id, &a.slots[id]
	}
	a.counter++
	id := a.counter
	if int(id) < len(a.slots) {
		// grow always sizes slots to exactly the newest id + 1 and Release
		// leaves counter untouched, so a fresh id never falls below
		// len(slots); this branch is unreachable but kept for safety.
		var zero T
		a.slots[id] = zero
		return id, &a.slots[id]
	}
	a.grow(int(id) + 1)
	return id, &a.slots[id]
}

func (a *Arena[T]) grow(minLen int) {
	if minLen <= len(a.slots) {
		return
	}
	newCap := cap(a.slots)
	if newCap == 0 {
		newCap = 1
	}
	for newCap < minLen {
		newCap *= 2
	}
	grown := make([]T, minLen, newCap)
	copy(grown, a.slots)
	a.slots = grown
}

// Release returns an id to the free stack. The caller must not use the
// id again until it is reissued by Fetch.
func (a *Arena[T]) Release(id uint32) {
	if id == 0 || int(id) >= len(a.slots) {
		return
	}
	a.free = append(a.free, id)
}

// Get returns a pointer to the slot for id, or nil if id is out of
// range. It does not distinguish a live id from a freed one — callers
// that need liveness should track that themselves (the network package
// does, via each entity's own validity invariants).
func (a *Arena[T]) Get(id uint32) *T {
	if id == 0 || int(id) >= len(a.slots) {
		return nil
	}
	return &a.slots[id]
}

// Len returns the number of ids ever issued (including freed ones),
// i.e. the high-water mark of the counter.
func (a *Arena[T]) Len() int { return len(a.slots) - 1 }

// String renders basic occupancy stats, useful in debug logging.
func (a *Arena[T]) String() string {
	return fmt.Sprintf("arena{issued=%d free=%d cap=%d}", a.counter, len(a.free), cap(a.slots))
}
