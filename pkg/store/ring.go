package store

import (
	"fmt"

	"github.com/vibelab/vibrascope/pkg/capture"
)

// Ring tracks the cursors of a fixed-capacity circular log. It owns all
// slot arithmetic; nothing outside this type computes physical slots.
// While count < capacity the oldest cursor stays fixed and newest
// advances on append; at capacity both advance and the oldest entry is
// evicted.
type Ring struct {
	capacity int
	count    int
	oldest   int
	newest   int
}

// NewRing creates an empty ring with the given capacity
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{capacity: capacity}
}

// RestoreRing rebuilds a ring from persisted cursors. It returns false
// when the cursors are out of range or mutually inconsistent, in which
// case the caller must fall back to an empty ring.
func RestoreRing(capacity, count, oldest, newest int) (*Ring, bool) {
	if capacity < 1 || count < 0 || count > capacity {
		return nil, false
	}
	if oldest < 0 || oldest >= capacity || newest < 0 || newest >= capacity {
		return nil, false
	}
	if count > 0 && newest != (oldest+count-1)%capacity {
		return nil, false
	}
	return &Ring{capacity: capacity, count: count, oldest: oldest, newest: newest}, true
}

// Capacity returns the fixed number of physical slots
func (r *Ring) Capacity() int { return r.capacity }

// Count returns the number of live entries, in [0, capacity]
func (r *Ring) Count() int { return r.count }

// Oldest returns the physical slot of logical index 0
func (r *Ring) Oldest() int { return r.oldest }

// Newest returns the physical slot of logical index count-1
func (r *Ring) Newest() int { return r.newest }

// NextSlot returns the physical slot the next append will use, without
// advancing any cursor
func (r *Ring) NextSlot() int {
	return (r.oldest + r.count) % r.capacity
}

// Append advances the cursors for one new entry and returns the
// physical slot it occupies. evicted reports whether the previous
// oldest entry was overwritten.
func (r *Ring) Append() (slot int, evicted bool) {
	slot = r.NextSlot()
	if r.count < r.capacity {
		r.count++
	} else {
		r.oldest = (r.oldest + 1) % r.capacity
		evicted = true
	}
	r.newest = slot
	return slot, evicted
}

// Slot maps a logical index (0 = oldest, count-1 = newest) to its
// physical slot
func (r *Ring) Slot(logical int) (int, error) {
	if logical < 0 || logical >= r.count {
		return 0, capture.NewNotFoundError("ring.slot",
			fmt.Sprintf("logical index %d out of range [0, %d)", logical, r.count))
	}
	return (r.oldest + logical) % r.capacity, nil
}

// Reset empties the ring
func (r *Ring) Reset() {
	r.count = 0
	r.oldest = 0
	r.newest = 0
}
