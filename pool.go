package mindex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Pool is a named collection of records of type T with up to MaxIndexes
// indexes. Every record must embed Hooks[T].
//
// Single calls perform no locking of pool content. Callers that mutate a
// pool from several goroutines, or need several calls to appear atomic,
// hold the pool lock (Lock/Unlock or Do) around the sequence.
type Pool[T any] struct {
	mu      sync.Mutex
	name    string
	reg     *Registry
	hooks   func(*T) *Hooks[T]
	indexes [MaxIndexes]*index[T]
	count   int // registered indexes
	records int // records linked into at least one index
	opts    poolOptions[T]
	logger  *Logger
	metrics MetricsCollector

	markedForDrop atomic.Bool
	dropped       atomic.Bool
}

// Name returns the registered pool name.
func (p *Pool[T]) Name() string { return p.name }

// Len returns the number of records linked into at least one index.
func (p *Pool[T]) Len() int { return p.records }

// IndexLen returns the number of records linked into index n, or 0 if n is
// not registered.
func (p *Pool[T]) IndexLen(n int) int {
	ix, err := p.index(n)
	if err != nil {
		return 0
	}
	return ix.len()
}

// IndexCount returns the number of registered indexes. A full Insert
// returns this value.
func (p *Pool[T]) IndexCount() int { return p.count }

// Policy returns the shortfall policy of the pool.
func (p *Pool[T]) Policy() ShortfallPolicy { return p.opts.policy }

// Lock acquires the pool lock. It blocks until the lock is available.
func (p *Pool[T]) Lock() { p.mu.Lock() }

// Unlock releases the pool lock.
func (p *Pool[T]) Unlock() { p.mu.Unlock() }

// Do runs fn while holding the pool lock.
func (p *Pool[T]) Do(fn func(p *Pool[T]) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p)
}

// MarkForDrop flags the pool for deferred teardown by Registry.Gc.
func (p *Pool[T]) MarkForDrop() { p.markedForDrop.Store(true) }

// MarkedForDrop reports whether MarkForDrop was called.
func (p *Pool[T]) MarkedForDrop() bool { return p.markedForDrop.Load() }

// Dropped reports whether the pool has left its registry.
func (p *Pool[T]) Dropped() bool { return p.dropped.Load() }

func (p *Pool[T]) fail(err error) error {
	if err != nil {
		p.reg.lastErr.set(err)
	}
	return err
}

func (p *Pool[T]) index(n int) (*index[T], error) {
	if n < 0 || n >= MaxIndexes {
		return nil, indexErr(p.name, n, "lookup", ErrInvalidIndex)
	}
	ix := p.indexes[n]
	if ix == nil {
		return nil, indexErr(p.name, n, "lookup", ErrIndexNotRegistered)
	}
	return ix, nil
}

// RegisterIndex adds index n to the pool. Index 0 is created by
// RegisterPool; n must lie in [1, MaxIndexes) and be unused. Records already
// in the pool are linked into the new index; if one of them is rejected the
// registration fails and the pool is left unchanged.
func (p *Pool[T]) RegisterIndex(n int, spec IndexSpec[T]) (int, error) {
	ctx := context.Background()
	err := p.registerIndex(n, spec)
	p.logger.LogRegister(ctx, p.name, n, spec.Structure.String(), err)
	if err != nil {
		return -1, p.fail(err)
	}
	return n, nil
}

func (p *Pool[T]) registerIndex(n int, spec IndexSpec[T]) error {
	if p.dropped.Load() {
		return ErrPoolDropped
	}
	if n <= 0 || n >= MaxIndexes {
		return indexErr(p.name, n, "register", ErrInvalidIndex)
	}
	if p.indexes[n] != nil {
		return indexErr(p.name, n, "register", ErrIndexInUse)
	}
	ix, err := newIndex(n, spec, p.hooks)
	if err != nil {
		return indexErr(p.name, n, "register", err)
	}

	// Back-fill existing records.
	recs := p.collect()
	for i, rec := range recs {
		if err := ix.link(rec); err != nil {
			for _, done := range recs[:i] {
				ix.unlink(done)
			}
			return indexErr(p.name, n, "register", err)
		}
	}
	for _, rec := range recs {
		p.hooks(rec).mark(n)
	}

	p.indexes[n] = ix
	p.count++
	return nil
}

// linkOne links rec into ix and keeps the membership bookkeeping.
func (p *Pool[T]) linkOne(ix *index[T], rec *T, h *Hooks[T]) error {
	if h.Linked(ix.n) {
		return ErrAlreadyLinked
	}
	if err := ix.link(rec); err != nil {
		return err
	}
	if h.linked == 0 {
		p.records++
	}
	h.mark(ix.n)
	return nil
}

func (p *Pool[T]) unlinkOne(ix *index[T], rec *T, h *Hooks[T]) bool {
	if !h.Linked(ix.n) {
		return false
	}
	ix.unlink(rec)
	h.unmark(ix.n)
	if h.linked == 0 {
		p.records--
	}
	return true
}

// unlinkAll removes rec from every index it is linked into.
func (p *Pool[T]) unlinkAll(rec *T) {
	h := p.hooks(rec)
	for _, ix := range p.indexes {
		if ix != nil {
			p.unlinkOne(ix, rec, h)
		}
	}
}

func (p *Pool[T]) identify(h *Hooks[T]) {
	if h.id == 0 {
		h.id = recordIDs.Add(1)
	}
}

// Insert links rec into every registered index in index order and returns
// how many accepted it. A return value equal to IndexCount means full
// success; anything less is a logical failure.
//
// Under the Rollback policy the first rejection unlinks rec from every index
// that had accepted it, so the record is never left partially linked, and
// an *InsertError is returned. Under the Accept policy the remaining indexes
// are still tried and an error is returned only if none accepted.
func (p *Pool[T]) Insert(rec *T) (int, error) {
	start := time.Now()
	accepted, err := p.insert(rec)
	p.metrics.RecordInsert(accepted, time.Since(start), err)
	p.logger.LogInsert(context.Background(), p.name, accepted, p.count, err)
	return accepted, p.fail(err)
}

func (p *Pool[T]) insert(rec *T) (int, error) {
	if rec == nil {
		return 0, ErrNilRecord
	}
	if p.dropped.Load() {
		return 0, ErrPoolDropped
	}
	h := p.hooks(rec)
	p.identify(h)

	var (
		done     [MaxIndexes]*index[T]
		accepted int
		firstErr *InsertError
	)
	for _, ix := range p.indexes {
		if ix == nil {
			continue
		}
		err := p.linkOne(ix, rec, h)
		if err == nil {
			done[accepted] = ix
			accepted++
			continue
		}

		if p.opts.policy == Rollback {
			if accepted > 0 {
				for i := accepted - 1; i >= 0; i-- {
					p.unlinkOne(done[i], rec, h)
				}
				p.metrics.RecordRollback(accepted)
				p.logger.LogRollback(context.Background(), p.name, ix.n, accepted)
			}
			return accepted, &InsertError{
				Pool:       p.name,
				Index:      ix.n,
				Accepted:   accepted,
				RolledBack: true,
				cause:      err,
			}
		}
		if firstErr == nil {
			firstErr = &InsertError{Pool: p.name, Index: ix.n, cause: err}
		}
	}

	if accepted == 0 && firstErr != nil {
		return 0, firstErr
	}
	return accepted, nil
}

// InsertOne links rec into index n only.
func (p *Pool[T]) InsertOne(n int, rec *T) error {
	if rec == nil {
		return p.fail(ErrNilRecord)
	}
	if p.dropped.Load() {
		return p.fail(ErrPoolDropped)
	}
	ix, err := p.index(n)
	if err != nil {
		return p.fail(err)
	}
	h := p.hooks(rec)
	p.identify(h)
	if err := p.linkOne(ix, rec, h); err != nil {
		return p.fail(indexErr(p.name, n, "insert", err))
	}
	return nil
}

// Delete finds the record matching probe on index n and removes it from
// every index of the pool. For list indexes probe is ignored and the head
// is removed: the oldest record of a FIFO, the newest of a LIFO.
//
// The record is returned still owned by the caller; nothing is destroyed.
// A missing key yields (nil, nil).
func (p *Pool[T]) Delete(n int, probe *T) (*T, error) {
	start := time.Now()
	ix, err := p.index(n)
	if err != nil {
		return nil, p.fail(err)
	}
	if ix.ordered() && probe == nil {
		return nil, p.fail(ErrNilRecord)
	}
	rec := ix.find(probe)
	if rec != nil {
		p.unlinkAll(rec)
	}
	p.metrics.RecordDelete(rec != nil, time.Since(start))
	p.logger.LogDelete(context.Background(), p.name, n, rec != nil)
	return rec, nil
}

// DeleteConst is Delete addressed by an immediate key value.
func (p *Pool[T]) DeleteConst(n int, v any) (*T, error) {
	start := time.Now()
	rec, err := p.getConst(n, v)
	if err != nil {
		return nil, p.fail(err)
	}
	if rec != nil {
		p.unlinkAll(rec)
	}
	p.metrics.RecordDelete(rec != nil, time.Since(start))
	p.logger.LogDelete(context.Background(), p.name, n, rec != nil)
	return rec, nil
}

// DeleteOne unlinks rec from index n only.
func (p *Pool[T]) DeleteOne(n int, rec *T) error {
	if rec == nil {
		return p.fail(ErrNilRecord)
	}
	ix, err := p.index(n)
	if err != nil {
		return p.fail(err)
	}
	if !p.unlinkOne(ix, rec, p.hooks(rec)) {
		return p.fail(indexErr(p.name, n, "delete", ErrNotLinked))
	}
	return nil
}

// Remove unlinks rec from every index it is linked into.
func (p *Pool[T]) Remove(rec *T) error {
	if rec == nil {
		return p.fail(ErrNilRecord)
	}
	if p.hooks(rec).linked == 0 {
		return p.fail(ErrNotLinked)
	}
	p.unlinkAll(rec)
	return nil
}

// Contains reports whether rec is linked into at least one index.
func (p *Pool[T]) Contains(rec *T) bool {
	return rec != nil && p.hooks(rec).linked != 0
}

// Move deletes the record matching probe on index n of src and inserts it
// into dst without reallocating it. If dst rejects the record it is put back
// into src and the insert error is returned.
func Move[T any](dst, src *Pool[T], n int, probe *T) (*T, error) {
	rec, err := src.Delete(n, probe)
	if err != nil || rec == nil {
		return nil, err
	}
	if _, err := dst.Insert(rec); err != nil {
		if _, rerr := src.Insert(rec); rerr != nil {
			return rec, src.fail(errors.Join(err, fmt.Errorf("restore into %s: %w", src.name, rerr)))
		}
		return nil, err
	}
	return rec, nil
}

// collect returns every record linked into any index exactly once.
func (p *Pool[T]) collect() []*T {
	if p.records == 0 {
		return nil
	}
	seen := roaring64.New()
	recs := make([]*T, 0, p.records)
	for _, ix := range p.indexes {
		if ix == nil {
			continue
		}
		ix.each(func(rec *T) bool {
			id := p.hooks(rec).id
			if !seen.Contains(id) {
				seen.Add(id)
				recs = append(recs, rec)
			}
			return true
		})
	}
	return recs
}

// detachAll unlinks every record at once by clearing the anchors and
// resetting the hooks, and returns the records.
func (p *Pool[T]) detachAll() []*T {
	recs := p.collect()
	for _, ix := range p.indexes {
		if ix != nil {
			ix.clear()
		}
	}
	for _, rec := range recs {
		p.hooks(rec).reset()
	}
	p.records = 0
	return recs
}

// destroy runs the cleanup for a record that has left every index.
func (p *Pool[T]) destroy(rec *T, fn func(*T)) {
	switch {
	case fn != nil:
		fn(rec)
	case p.opts.destructor != nil:
		p.opts.destructor(rec)
	default:
		p.defaultCleanup(rec)
	}
}

// defaultCleanup drops by-reference key buffers and returns the record to
// the pool allocator, if any.
func (p *Pool[T]) defaultCleanup(rec *T) {
	for _, ix := range p.indexes {
		if ix != nil && ix.key.release != nil {
			ix.key.release(rec)
		}
	}
	if p.opts.allocator != nil {
		if err := p.opts.allocator.Free(rec); err != nil {
			p.logger.LogFree(context.Background(), p.name, p.hooks(rec).id, err)
		}
	}
}

// Flush destroys every record exactly once and clears all index anchors.
// destructor may be nil, in which case the pool destructor or the default
// cleanup runs. It returns the number of records destroyed.
func (p *Pool[T]) Flush(destructor func(*T)) int {
	start := time.Now()
	recs := p.detachAll()
	for _, rec := range recs {
		p.destroy(rec, destructor)
	}
	p.metrics.RecordFlush(len(recs), time.Since(start))
	p.logger.LogFlush(context.Background(), p.name, len(recs), nil)
	return len(recs)
}

// teardownBatch is the number of records destroyed per rate limiter grant.
const teardownBatch = 256

// sweep flushes the pool under its lock with paced destruction and marks it
// dropped. It is used by Registry.Gc and Registry.Clean.
func (p *Pool[T]) sweep(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	recs := p.detachAll()
	p.dropped.Store(true)

	destroyed := 0
	for len(recs) > 0 {
		batch := recs[:min(teardownBatch, len(recs))]
		if err := p.reg.rc.AcquireTeardown(ctx, len(batch)); err != nil {
			p.logger.LogFlush(ctx, p.name, destroyed, err)
			return destroyed, err
		}
		for _, rec := range batch {
			p.destroy(rec, nil)
		}
		destroyed += len(batch)
		recs = recs[len(batch):]
	}
	p.metrics.RecordFlush(destroyed, time.Since(start))
	p.logger.LogFlush(ctx, p.name, destroyed, nil)
	return destroyed, nil
}

func (p *Pool[T]) detach() { p.dropped.Store(true) }

// Check verifies every index: AVL balance and ordering for trees, links for
// lists, and that membership bits agree with the structures. It is linear in
// the pool size and intended for tests and debugging.
func (p *Pool[T]) Check() error {
	for _, ix := range p.indexes {
		if ix == nil {
			continue
		}
		if err := ix.check(); err != nil {
			return indexErr(p.name, ix.n, "check", err)
		}
		var bad error
		ix.each(func(rec *T) bool {
			if !p.hooks(rec).Linked(ix.n) {
				bad = indexErr(p.name, ix.n, "check", errors.New("linked record without membership bit"))
				return false
			}
			return true
		})
		if bad != nil {
			return bad
		}
	}
	if got := len(p.collect()); got != p.records {
		return fmt.Errorf("check %s: %d unique records reachable, counter says %d", p.name, got, p.records)
	}
	return nil
}
