package mindex

import (
	"math/bits"
	"sync/atomic"

	"github.com/hupe1980/mindex/internal/forest"
)

// recordIDs hands out record identities. It is process-wide so records moved
// between registries never share an id.
var recordIDs atomic.Uint64

// MaxIndexes is the number of intrusive headers every record carries and
// therefore the maximum number of indexes per pool.
const MaxIndexes = 8

// Hooks is the intrusive bookkeeping a record embeds to join pool indexes.
//
//	type Order struct {
//	    mindex.Hooks[Order]
//	    ID       string
//	    Priority int
//	}
//
// The zero value is ready to use. Hooks must not be copied while the record
// is linked.
type Hooks[T any] struct {
	id     uint64
	slot   uint32 // slab handle + 1, 0 when not slab-allocated
	linked uint32 // bit i set while linked into index i
	hdr    [MaxIndexes]forest.Header[T]
}

// RecordHooks returns h. Embedding Hooks[T] in T makes *T a Record[T].
func (h *Hooks[T]) RecordHooks() *Hooks[T] { return h }

// ID returns the stable identity assigned when the record was first linked,
// or 0 if it never was.
func (h *Hooks[T]) ID() uint64 { return h.id }

// Linked reports whether the record is currently linked into index.
func (h *Hooks[T]) Linked(index int) bool {
	return index >= 0 && index < MaxIndexes && h.linked&(1<<index) != 0
}

// LinkCount returns how many indexes the record is linked into.
func (h *Hooks[T]) LinkCount() int { return bits.OnesCount32(h.linked) }

func (h *Hooks[T]) mark(index int)   { h.linked |= 1 << index }
func (h *Hooks[T]) unmark(index int) { h.linked &^= 1 << index }

// reset clears all links. Identity and slab slot are kept.
func (h *Hooks[T]) reset() {
	h.linked = 0
	for i := range h.hdr {
		h.hdr[i].Reset()
	}
}

// Record is satisfied by pointers to types embedding Hooks.
type Record[T any] interface {
	*T
	RecordHooks() *Hooks[T]
}

// hooksOf binds the Record accessor for T once, so the rest of the package
// only deals in *T.
func hooksOf[T any, R Record[T]]() func(*T) *Hooks[T] {
	return func(rec *T) *Hooks[T] { return R(rec).RecordHooks() }
}
