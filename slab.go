package mindex

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/mindex/internal/arena"
)

// SlabStats reports slab usage.
type SlabStats = arena.Stats

// SlabOption configures a Slab.
type SlabOption func(*slabOptions)

type slabOptions struct {
	segmentBits int
}

// WithSegmentSize sets log2 of the records per slab segment. The default is
// 10, i.e. 1024 records.
func WithSegmentSize(bits int) SlabOption {
	return func(o *slabOptions) {
		o.segmentBits = bits
	}
}

// Slab allocates records of type T in segments with stable addresses. A pool
// configured WithAllocator returns records to the slab on default cleanup.
//
// Segments are charged against the registry memory limit.
type Slab[T any] struct {
	slab  *arena.Slab[T]
	hooks func(*T) *Hooks[T]
}

// NewSlab creates a slab for records of type T accounted against reg.
func NewSlab[T any, R Record[T]](reg *Registry, opts ...SlabOption) *Slab[T] {
	o := slabOptions{segmentBits: arena.DefaultSegmentBits}
	for _, opt := range opts {
		opt(&o)
	}

	aopts := []arena.Option{arena.WithSegmentBits(o.segmentBits)}
	if reg != nil && reg.rc != nil {
		aopts = append(aopts, arena.WithMemoryAcquirer(reg.rc))
	}
	return &Slab[T]{
		slab:  arena.New[T](aopts...),
		hooks: hooksOf[T, R](),
	}
}

// Alloc returns a zeroed record. It fails with ErrMemoryLimitExceeded when
// a new segment would exceed the registry memory limit.
func (s *Slab[T]) Alloc() (*T, error) {
	h, rec, err := s.slab.Alloc()
	if err != nil {
		return nil, err
	}
	s.hooks(rec).slot = h + 1
	return rec, nil
}

// Free returns rec to the slab. rec must have come from Alloc and must not
// be linked into any index.
func (s *Slab[T]) Free(rec *T) error {
	if rec == nil {
		return ErrNilRecord
	}
	h := s.hooks(rec)
	if h.linked != 0 {
		return fmt.Errorf("free: %w", ErrAlreadyLinked)
	}
	if h.slot == 0 || s.slab.Get(h.slot-1) != rec {
		return ErrInvalidHandle
	}
	return s.slab.Free(h.slot - 1)
}

// Len returns the number of records currently allocated.
func (s *Slab[T]) Len() int { return s.slab.Len() }

// Live returns a snapshot of the allocated slot handles.
func (s *Slab[T]) Live() *roaring.Bitmap { return s.slab.Live() }

// Stats returns a snapshot of slab usage.
func (s *Slab[T]) Stats() SlabStats { return s.slab.Stats() }

// Reset frees every record at once and returns the slab's reserved memory to
// the registry. Records previously allocated must be unlinked and must no
// longer be used.
func (s *Slab[T]) Reset() { s.slab.Reset() }
