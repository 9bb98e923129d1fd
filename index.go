package mindex

import (
	"fmt"

	"github.com/hupe1980/mindex/internal/compare"
	"github.com/hupe1980/mindex/internal/forest"
)

// Structure selects the shape of an index.
type Structure int

const (
	// TreeIndex is an AVL tree ordered by the index key. Keys are unique.
	TreeIndex Structure = iota
	// FIFOIndex keeps arrival order and reads the oldest record first.
	FIFOIndex
	// LIFOIndex keeps reverse arrival order and reads the newest record first.
	LIFOIndex
)

func (s Structure) String() string {
	switch s {
	case TreeIndex:
		return "tree"
	case FIFOIndex:
		return "fifo"
	case LIFOIndex:
		return "lifo"
	default:
		return fmt.Sprintf("structure(%d)", int(s))
	}
}

// IndexSpec describes one index of a pool.
type IndexSpec[T any] struct {
	// Key orders a TreeIndex. Lists ignore it, except that a StringRefKey
	// still takes part in default cleanup.
	Key Key[T]
	// Structure selects tree, FIFO or LIFO. The zero value is TreeIndex.
	Structure Structure
	// Descending reverses the order of a TreeIndex.
	Descending bool
}

// Tree returns a spec for an ascending tree index on key.
func Tree[T any](key Key[T]) IndexSpec[T] {
	return IndexSpec[T]{Key: key}
}

// FIFO returns a spec for a first-in first-out list index.
func FIFO[T any]() IndexSpec[T] {
	return IndexSpec[T]{Structure: FIFOIndex}
}

// LIFO returns a spec for a last-in first-out list index.
func LIFO[T any]() IndexSpec[T] {
	return IndexSpec[T]{Structure: LIFOIndex}
}

// Desc returns a copy of s ordered descending.
func (s IndexSpec[T]) Desc() IndexSpec[T] {
	s.Descending = true
	return s
}

// index is the descriptor of one structural view of a pool.
type index[T any] struct {
	n          int
	structure  Structure
	descending bool
	key        Key[T]
	cmp        compare.Func[T]
	tree       *forest.Tree[T]
	list       *forest.List[T]
}

func newIndex[T any](n int, spec IndexSpec[T], hooks func(*T) *Hooks[T]) (*index[T], error) {
	hdr := func(rec *T) *forest.Header[T] { return &hooks(rec).hdr[n] }
	ix := &index[T]{
		n:          n,
		structure:  spec.Structure,
		descending: spec.Descending,
		key:        spec.Key,
	}

	switch spec.Structure {
	case TreeIndex:
		if spec.Key.IsZero() {
			return nil, ErrMissingKey
		}
		ix.cmp = spec.Key.cmp
		if spec.Descending {
			ix.cmp = compare.Reverse(ix.cmp)
		}
		ix.tree = forest.NewTree(forest.Compare[T](ix.cmp), hdr)
	case FIFOIndex:
		ix.list = forest.NewFIFO(hdr)
	case LIFOIndex:
		ix.list = forest.NewLIFO(hdr)
	default:
		return nil, fmt.Errorf("unknown structure %d", int(spec.Structure))
	}
	return ix, nil
}

func (ix *index[T]) ordered() bool { return ix.tree != nil }

func (ix *index[T]) len() int {
	if ix.tree != nil {
		return ix.tree.Len()
	}
	return ix.list.Len()
}

func (ix *index[T]) mods() uint64 {
	if ix.tree != nil {
		return ix.tree.Mods()
	}
	return ix.list.Mods()
}

func (ix *index[T]) link(rec *T) error {
	if ix.tree != nil {
		if !ix.tree.Insert(rec) {
			return ErrDuplicateKey
		}
		return nil
	}
	ix.list.Push(rec)
	return nil
}

func (ix *index[T]) unlink(rec *T) {
	if ix.tree != nil {
		ix.tree.Remove(rec)
		return
	}
	ix.list.Remove(rec)
}

// find returns the record matching probe. Lists return their head.
func (ix *index[T]) find(probe *T) *T {
	if ix.tree != nil {
		return ix.tree.Find(probe)
	}
	return ix.list.Head()
}

// constProbe builds the immediate-value comparator for v, honouring the
// index direction.
func (ix *index[T]) constProbe(v any) (compare.Probe[T], error) {
	if ix.tree == nil || ix.key.probe == nil {
		return nil, ErrNoConstLookup
	}
	p, err := ix.key.probe(v)
	if err != nil {
		return nil, err
	}
	if ix.descending {
		p = compare.ReverseProbe(p)
	}
	return p, nil
}

func (ix *index[T]) first() *T {
	if ix.tree != nil {
		return ix.tree.Min()
	}
	return ix.list.Head()
}

func (ix *index[T]) last() *T {
	if ix.tree != nil {
		return ix.tree.Max()
	}
	return ix.list.Tail()
}

func (ix *index[T]) clear() {
	if ix.tree != nil {
		ix.tree.Clear()
		return
	}
	ix.list.Clear()
}

func (ix *index[T]) check() error {
	if ix.tree != nil {
		return ix.tree.Check()
	}
	return ix.list.Check()
}

// each walks the index read-only. The walk must not mutate the index.
func (ix *index[T]) each(fn func(*T) bool) {
	if ix.tree != nil {
		c := ix.tree.NewCursor()
		for rec := c.Next(); rec != nil; rec = c.Next() {
			if !fn(rec) {
				return
			}
		}
		return
	}
	for rec := ix.list.Head(); rec != nil; rec = ix.list.Next(rec) {
		if !fn(rec) {
			return
		}
	}
}
