package mindex

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/mindex/internal/arena"
	"github.com/hupe1980/mindex/internal/forest"
	"github.com/hupe1980/mindex/internal/resource"
)

var (
	// ErrDuplicatePool is returned when a pool name is already registered.
	ErrDuplicatePool = errors.New("pool already registered")
	// ErrPoolNotFound is returned when a name does not resolve to a pool of
	// the requested record type.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrPoolDropped is returned by operations on a dropped pool.
	ErrPoolDropped = errors.New("pool dropped")
	// ErrPoolNotEmpty is returned when dropping a pool that still holds records.
	ErrPoolNotEmpty = errors.New("pool not empty")
	// ErrInvalidIndex is returned for index numbers outside the valid range
	// or for index 0 on RegisterIndex.
	ErrInvalidIndex = errors.New("invalid index number")
	// ErrIndexInUse is returned when registering an already configured slot.
	ErrIndexInUse = errors.New("index already registered")
	// ErrIndexNotRegistered is returned when addressing an unconfigured slot.
	ErrIndexNotRegistered = errors.New("index not registered")
	// ErrMissingKey is returned when a tree index has no key comparator.
	ErrMissingKey = errors.New("tree index requires a key")
	// ErrDuplicateKey is returned when a tree index already holds an equal key.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrAlreadyLinked is returned when a record is already linked into an index.
	ErrAlreadyLinked = errors.New("record already linked")
	// ErrNotLinked is returned when a record is not linked into an index.
	ErrNotLinked = errors.New("record not linked")
	// ErrNoConstLookup is returned when an index key cannot compare immediates.
	ErrNoConstLookup = errors.New("index does not support constant lookups")
	// ErrNotOrdered is returned for ordered queries on FIFO or LIFO indexes.
	ErrNotOrdered = errors.New("index is not ordered")
	// ErrNilRecord is returned when a nil record is passed.
	ErrNilRecord = errors.New("nil record")
	// ErrMemoryLimitExceeded is returned when the slab cannot reserve memory.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
	// ErrInvalidHandle is returned when freeing a record its slab does not own.
	ErrInvalidHandle = arena.ErrInvalidHandle
)

// CorruptionError is the panic value raised when an index reaches a
// structurally impossible shape.
type CorruptionError = forest.CorruptionError

// IndexError reports a failure tied to one index of a pool.
//
// The original underlying error can be accessed via errors.Unwrap.
type IndexError struct {
	Pool  string
	Index int
	Op    string
	cause error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s %s[%d]: %v", e.Op, e.Pool, e.Index, e.cause)
}

func (e *IndexError) Unwrap() error { return e.cause }

// InsertError reports a multi-index insert that fell short.
//
// Accepted is the number of indexes that took the record before the
// failure. Under the Rollback policy those links have been undone.
type InsertError struct {
	Pool       string
	Index      int
	Accepted   int
	RolledBack bool
	cause      error
}

func (e *InsertError) Error() string {
	state := "kept"
	if e.RolledBack {
		state = "rolled back"
	}
	return fmt.Sprintf("insert %s: index %d rejected record after %d accepted (%s): %v",
		e.Pool, e.Index, e.Accepted, state, e.cause)
}

func (e *InsertError) Unwrap() error { return e.cause }

func indexErr(pool string, index int, op string, cause error) error {
	return &IndexError{Pool: pool, Index: index, Op: op, cause: cause}
}

// errorSlot holds the most recent failure, guarded independently of every
// pool and of the registry catalogue.
type errorSlot struct {
	mu  sync.Mutex
	err error
}

func (s *errorSlot) set(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *errorSlot) get() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *errorSlot) clear() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
}
