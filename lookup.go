package mindex

import (
	"time"
)

// Get returns the record of index n whose key equals probe's key, or nil.
// For FIFO and LIFO indexes probe is ignored and the head is returned.
func (p *Pool[T]) Get(n int, probe *T) (*T, error) {
	start := time.Now()
	ix, err := p.index(n)
	if err != nil {
		return nil, p.fail(err)
	}
	if ix.ordered() && probe == nil {
		return nil, p.fail(ErrNilRecord)
	}
	rec := ix.find(probe)
	p.metrics.RecordLookup(rec != nil, time.Since(start))
	return rec, nil
}

// GetConst looks a record up by an immediate key value instead of a probe
// record. Integer keys accept any Go integer type, string keys accept
// string (and *string for StringRefKey). Custom keys need WithConst.
func (p *Pool[T]) GetConst(n int, v any) (*T, error) {
	start := time.Now()
	rec, err := p.getConst(n, v)
	if err != nil {
		return nil, p.fail(err)
	}
	p.metrics.RecordLookup(rec != nil, time.Since(start))
	return rec, nil
}

func (p *Pool[T]) getConst(n int, v any) (*T, error) {
	ix, err := p.index(n)
	if err != nil {
		return nil, err
	}
	probe, err := ix.constProbe(v)
	if err != nil {
		return nil, indexErr(p.name, n, "get", err)
	}
	return ix.tree.FindFunc(probe), nil
}

// GetNeighbor searches tree index n for probe. On an exact hit match is the
// record and before/after are nil. Otherwise match is nil and before/after
// are the nearest records ordered before and after probe in the index
// direction; either is nil at the ends.
func (p *Pool[T]) GetNeighbor(n int, probe *T) (match, before, after *T, err error) {
	start := time.Now()
	ix, err := p.index(n)
	if err != nil {
		return nil, nil, nil, p.fail(err)
	}
	if !ix.ordered() {
		return nil, nil, nil, p.fail(indexErr(p.name, n, "neighbor", ErrNotOrdered))
	}
	if probe == nil {
		return nil, nil, nil, p.fail(ErrNilRecord)
	}
	match, before, after = ix.tree.Neighbor(probe)
	p.metrics.RecordLookup(match != nil, time.Since(start))
	return match, before, after, nil
}

// GetNeighborConst is GetNeighbor addressed by an immediate key value.
func (p *Pool[T]) GetNeighborConst(n int, v any) (match, before, after *T, err error) {
	start := time.Now()
	ix, err := p.index(n)
	if err != nil {
		return nil, nil, nil, p.fail(err)
	}
	probe, err := ix.constProbe(v)
	if err != nil {
		return nil, nil, nil, p.fail(indexErr(p.name, n, "neighbor", err))
	}
	match, before, after = ix.tree.NeighborFunc(probe)
	p.metrics.RecordLookup(match != nil, time.Since(start))
	return match, before, after, nil
}

// Min returns the first record of index n: the smallest key of a tree (the
// largest when descending), or the head of a list.
func (p *Pool[T]) Min(n int) (*T, error) {
	ix, err := p.index(n)
	if err != nil {
		return nil, p.fail(err)
	}
	return ix.first(), nil
}

// Max returns the last record of index n.
func (p *Pool[T]) Max(n int) (*T, error) {
	ix, err := p.index(n)
	if err != nil {
		return nil, p.fail(err)
	}
	return ix.last(), nil
}
