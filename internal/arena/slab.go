package arena

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/mindex/internal/container"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrMaxSegmentsExceeded is returned when the slab exceeds the maximum number of segments.
	ErrMaxSegmentsExceeded = errors.New("arena: max segments exceeded")
	// ErrInvalidHandle is returned when a handle does not name a live slot.
	ErrInvalidHandle = errors.New("arena: invalid handle")
)

const (
	// DefaultSegmentBits gives 1024 records per segment.
	DefaultSegmentBits = container.DefaultSegmentBits
	// MaxSegments limits the number of segments to prevent excessive memory usage.
	MaxSegments = 1 << 16
)

// Stats tracks slab memory usage metrics.
//
// Note on semantics:
//   - SegmentsAllocated: total segments ever created
//   - BytesReserved: memory currently held by segments
//   - Live: slots currently handed out
//   - TotalAllocs: cumulative allocation count
type Stats struct {
	SegmentsAllocated uint64
	BytesReserved     uint64
	Live              uint64
	TotalAllocs       uint64
}

type atomicStats struct {
	SegmentsAllocated atomic.Uint64
	BytesReserved     atomic.Uint64
	TotalAllocs       atomic.Uint64
}

// Slab is a typed slab allocator.
type Slab[T any] struct {
	mu       sync.Mutex
	slots    *container.SegmentedArray[T]
	free     []uint32
	next     uint32 // next never-used handle
	live     *roaring.Bitmap
	segBytes int64
	stats    atomicStats
	acquirer MemoryAcquirer
}

// Option is a configuration option for Slab.
type Option func(*slabConfig)

type slabConfig struct {
	segmentBits int
	acquirer    MemoryAcquirer
}

// WithMemoryAcquirer sets the memory acquirer for the slab.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(c *slabConfig) {
		c.acquirer = acquirer
	}
}

// WithSegmentBits sets log2 of the number of records per segment.
func WithSegmentBits(bits int) Option {
	return func(c *slabConfig) {
		c.segmentBits = bits
	}
}

// New creates an empty Slab.
func New[T any](opts ...Option) *Slab[T] {
	cfg := slabConfig{segmentBits: DefaultSegmentBits}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Slab[T]{
		slots:    container.NewSegmentedArray[T](cfg.segmentBits),
		live:     roaring.New(),
		acquirer: cfg.acquirer,
		next:     1, // Reserve handle 0 as null
	}
	var zero T
	s.segBytes = int64(unsafe.Sizeof(zero)) * int64(s.slots.SegmentLen())
	return s
}

// Alloc hands out a zeroed slot and its handle. Handle 0 is never used.
func (s *Slab[T]) Alloc() (uint32, *T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var h uint32
	if n := len(s.free); n > 0 {
		h = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		h = s.next
		if !s.slots.Has(h) {
			if err := s.growLocked(h); err != nil {
				return 0, nil, err
			}
		}
		s.next++
	}

	p := s.slots.At(h)
	var zero T
	*p = zero
	s.live.Add(h)
	s.stats.TotalAllocs.Add(1)
	return h, p, nil
}

func (s *Slab[T]) growLocked(h uint32) error {
	segIdx := int(h) / s.slots.SegmentLen()
	if segIdx >= MaxSegments {
		return ErrMaxSegmentsExceeded
	}
	if s.acquirer != nil {
		if err := s.acquirer.AcquireMemory(s.segBytes); err != nil {
			return fmt.Errorf("arena: reserve segment %d: %w", segIdx, err)
		}
	}
	s.slots.At(h)
	s.stats.SegmentsAllocated.Add(1)
	s.stats.BytesReserved.Add(uint64(s.segBytes))
	return nil
}

// Get returns the slot for a live handle, or nil.
func (s *Slab[T]) Get(h uint32) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live.Contains(h) {
		return nil
	}
	return s.slots.Lookup(h)
}

// Free returns a slot to the free list. The slot is zeroed.
func (s *Slab[T]) Free(h uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live.Contains(h) {
		return ErrInvalidHandle
	}
	var zero T
	*s.slots.Lookup(h) = zero
	s.live.Remove(h)
	s.free = append(s.free, h)
	return nil
}

// Len returns the number of live slots.
func (s *Slab[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.live.GetCardinality())
}

// Live returns a snapshot of the live handles.
func (s *Slab[T]) Live() *roaring.Bitmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live.Clone()
}

// Stats returns a snapshot of slab usage.
func (s *Slab[T]) Stats() Stats {
	s.mu.Lock()
	live := s.live.GetCardinality()
	s.mu.Unlock()
	return Stats{
		SegmentsAllocated: s.stats.SegmentsAllocated.Load(),
		BytesReserved:     s.stats.BytesReserved.Load(),
		Live:              live,
		TotalAllocs:       s.stats.TotalAllocs.Load(),
	}
}

// Reset drops every segment and returns the reserved memory to the
// acquirer. Pointers and handles previously returned must no longer be used.
func (s *Slab[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	reserved := s.stats.BytesReserved.Swap(0)
	if s.acquirer != nil {
		s.acquirer.ReleaseMemory(int64(reserved))
	}
	s.slots.Reset()
	s.live.Clear()
	s.free = s.free[:0]
	s.next = 1
}
