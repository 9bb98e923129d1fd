// Package container implements container data structures.
package container

import (
	"sync"
	"sync/atomic"
)

// DefaultSegmentBits gives 1024 items per segment.
const DefaultSegmentBits = 10

// SegmentedArray is a segmented array with stable element addresses.
// Growth never moves an allocated element, so pointers returned by At stay
// valid for the lifetime of the array. Reads are lock-free.
type SegmentedArray[T any] struct {
	segments atomic.Pointer[[]*Segment[T]]
	mu       sync.Mutex // Protects growth
	bits     uint
	mask     uint32
}

// Segment is a fixed-size run of items.
type Segment[T any] struct {
	items []T
}

// NewSegmentedArray creates a new SegmentedArray with 1<<segmentBits items
// per segment. Non-positive values select DefaultSegmentBits.
func NewSegmentedArray[T any](segmentBits int) *SegmentedArray[T] {
	if segmentBits <= 0 || segmentBits > 24 {
		segmentBits = DefaultSegmentBits
	}
	sa := &SegmentedArray[T]{
		bits: uint(segmentBits),
		mask: uint32(1)<<segmentBits - 1,
	}
	segments := make([]*Segment[T], 0)
	sa.segments.Store(&segments)
	return sa
}

// SegmentLen returns the number of items per segment.
func (sa *SegmentedArray[T]) SegmentLen() int { return int(sa.mask) + 1 }

// Has reports whether the segment holding index is allocated.
func (sa *SegmentedArray[T]) Has(index uint32) bool {
	return sa.Lookup(index) != nil
}

// Lookup returns a pointer to the item at index, or nil when its segment
// has not been allocated.
func (sa *SegmentedArray[T]) Lookup(index uint32) *T {
	segments := *sa.segments.Load()
	segIdx := int(index >> sa.bits)
	if segIdx >= len(segments) || segments[segIdx] == nil {
		return nil
	}
	return &segments[segIdx].items[index&sa.mask]
}

// At returns a stable pointer to the item at index, allocating its segment
// if necessary.
func (sa *SegmentedArray[T]) At(index uint32) *T {
	// Fast path: segment exists
	if p := sa.Lookup(index); p != nil {
		return p
	}

	// Slow path: grow
	sa.mu.Lock()
	defer sa.mu.Unlock()

	// Check again under lock
	if p := sa.Lookup(index); p != nil {
		return p
	}

	segIdx := int(index >> sa.bits)
	current := *sa.segments.Load()
	newSegments := current
	if segIdx >= len(newSegments) {
		grown := make([]*Segment[T], segIdx+1)
		copy(grown, newSegments)
		newSegments = grown
	} else {
		// Copy so lock-free readers never observe a partially written slice.
		newSegments = append([]*Segment[T](nil), current...)
	}
	newSegments[segIdx] = &Segment[T]{items: make([]T, sa.mask+1)}

	// Publish new segments
	sa.segments.Store(&newSegments)
	return &newSegments[segIdx].items[index&sa.mask]
}

// Reset drops every segment.
func (sa *SegmentedArray[T]) Reset() {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	segments := make([]*Segment[T], 0)
	sa.segments.Store(&segments)
}
