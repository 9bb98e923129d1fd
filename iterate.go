package mindex

import (
	"iter"
	"time"
)

// Action tells Iterate what to do with the record just visited.
type Action int

const (
	// Continue moves on to the next record.
	Continue Action = iota
	// DeleteAndContinue removes the record from every index, destroys it
	// and moves on.
	DeleteAndContinue
	// DeleteAndStop removes and destroys the record, then ends the walk.
	DeleteAndStop
	// Stop ends the walk.
	Stop
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case DeleteAndContinue:
		return "delete-and-continue"
	case DeleteAndStop:
		return "delete-and-stop"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

func (a Action) deletes() bool { return a == DeleteAndContinue || a == DeleteAndStop }
func (a Action) stops() bool   { return a == Stop || a == DeleteAndStop }

// Iterate walks index n in key order (trees) or read order (lists) and calls
// visit for every record. When visit asks for deletion the record is
// unlinked from every index of the pool and then destroyed exactly once with
// cleanup, or the pool destructor, or the default cleanup.
//
// The walk survives deletions, including those that rotate the tree: the
// next record is located before the current one is unlinked and the cursor
// re-descends from the root toward it. visit may also mutate the pool
// itself; the walk then continues after the current key. On a list whose
// visitor unlinks both the current record and its successor, the walk
// continues after the last visited record that is still linked, or from the
// head when that record is gone too.
func (p *Pool[T]) Iterate(n int, visit func(rec *T) Action, cleanup func(*T)) error {
	ix, err := p.index(n)
	if err != nil {
		return p.fail(err)
	}
	if visit == nil {
		return nil
	}

	start := time.Now()
	var visited, deleted int
	if ix.ordered() {
		visited, deleted = p.iterateTree(ix, visit, cleanup)
	} else {
		visited, deleted = p.iterateList(ix, visit, cleanup)
	}
	p.metrics.RecordIterate(visited, deleted, time.Since(start))
	return nil
}

// take unlinks rec from the pool. Records the visitor already removed are
// left alone and reported as not taken.
func (p *Pool[T]) take(rec *T) bool {
	if !p.Contains(rec) {
		return false
	}
	p.unlinkAll(rec)
	return true
}

func (p *Pool[T]) iterateTree(ix *index[T], visit func(*T) Action, cleanup func(*T)) (visited, deleted int) {
	c := ix.tree.NewCursor()
	for rec := c.Next(); rec != nil; rec = c.Next() {
		mods := ix.mods()
		act := visit(rec)
		visited++

		if ix.mods() != mods {
			// The visitor reshaped the tree; rebuild the stack past rec.
			c.SeekAfter(rec)
		}
		if act.deletes() {
			locator := c.Peek()
			taken := p.take(rec)
			if !c.Resume(locator) {
				c.SeekAfter(rec)
			}
			// Cleanup may recycle rec, so it runs after the cursor is rebuilt.
			if taken {
				p.destroy(rec, cleanup)
				deleted++
			}
			if act.stops() {
				return
			}
			continue
		}
		if act.stops() {
			return
		}
	}
	return
}

func (p *Pool[T]) iterateList(ix *index[T], visit func(*T) Action, cleanup func(*T)) (visited, deleted int) {
	// prev is the last visited record still linked after its visit.
	var prev *T
	for rec := ix.list.Head(); rec != nil; {
		next := ix.list.Next(rec)
		mods := ix.mods()
		act := visit(rec)
		visited++

		if ix.mods() != mods {
			switch {
			case p.hooks(rec).Linked(ix.n):
				next = ix.list.Next(rec)
			case next == nil || !p.hooks(next).Linked(ix.n):
				next = p.resumeList(ix, prev)
			}
		}
		if act.deletes() && p.take(rec) {
			p.destroy(rec, cleanup)
			deleted++
		} else if p.hooks(rec).Linked(ix.n) {
			prev = rec
		}
		if act.stops() {
			return
		}
		rec = next
	}
	return
}

// resumeList returns where a list walk continues once both the current
// record and its successor were unlinked by the visitor: after prev, or at
// the head when prev is gone as well.
func (p *Pool[T]) resumeList(ix *index[T], prev *T) *T {
	if prev != nil && p.hooks(prev).Linked(ix.n) {
		return ix.list.Next(prev)
	}
	return ix.list.Head()
}

// All returns a read-only iterator over index n in order. The pool must not
// be mutated while ranging; use Iterate for that. An unknown index yields
// nothing.
func (p *Pool[T]) All(n int) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		ix, err := p.index(n)
		if err != nil {
			return
		}
		ix.each(yield)
	}
}

// Descend walks index n in reverse order until visit returns false.
func (p *Pool[T]) Descend(n int, visit func(rec *T) bool) error {
	ix, err := p.index(n)
	if err != nil {
		return p.fail(err)
	}
	if ix.ordered() {
		c := ix.tree.NewReverseCursor()
		for rec := c.Next(); rec != nil && visit(rec); rec = c.Next() {
		}
		return nil
	}
	for rec := ix.list.Tail(); rec != nil && visit(rec); rec = ix.list.Prev(rec) {
	}
	return nil
}

// Range walks tree index n from the first key not before from up to and
// including to, until visit returns false. A nil bound is open.
func (p *Pool[T]) Range(n int, from, to *T, visit func(rec *T) bool) error {
	ix, err := p.index(n)
	if err != nil {
		return p.fail(err)
	}
	if !ix.ordered() {
		return p.fail(indexErr(p.name, n, "range", ErrNotOrdered))
	}

	c := ix.tree.NewCursor()
	if from != nil {
		c.Seek(from)
	}
	for rec := c.Next(); rec != nil; rec = c.Next() {
		if to != nil && ix.cmp(rec, to) > 0 {
			return nil
		}
		if !visit(rec) {
			return nil
		}
	}
	return nil
}
