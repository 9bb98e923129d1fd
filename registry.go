package mindex

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/mindex/internal/resource"
)

// PoolHandle is the type-erased view of a pool held by a Registry.
type PoolHandle interface {
	Name() string
	Len() int
	IndexCount() int
	MarkForDrop()
	MarkedForDrop() bool
	Dropped() bool

	sweep(ctx context.Context) (int, error)
	detach()
}

// Registry is a catalogue of named pools.
//
// The registry lock only guards the catalogue. It is never held while a
// pool lock is taken by the caller, so pool operations and registry
// operations do not contend.
type Registry struct {
	mu      sync.RWMutex
	pools   map[string]PoolHandle
	lastErr errorSlot

	logger  *Logger
	metrics MetricsCollector
	rc      *resource.Controller
}

// NewRegistry creates an empty registry.
func NewRegistry(optFns ...Option) *Registry {
	opts := options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.logger == nil {
		opts.logger = NoopLogger()
	}
	if opts.metricsCollector == nil {
		opts.metricsCollector = &NoopMetricsCollector{}
	}

	return &Registry{
		pools:   make(map[string]PoolHandle),
		logger:  opts.logger,
		metrics: opts.metricsCollector,
		rc:      resource.NewController(opts.resources),
	}
}

// LastError returns the error of the most recent failing call on any pool
// of the registry, or nil.
func (r *Registry) LastError() error { return r.lastErr.get() }

// ClearError resets the last-error slot.
func (r *Registry) ClearError() { r.lastErr.clear() }

// MemoryUsage returns the bytes currently reserved by slabs of the registry.
func (r *Registry) MemoryUsage() int64 { return r.rc.MemoryUsage() }

// Names returns the registered pool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.pools))
	for name := range r.pools {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Pool returns the pool registered under name regardless of its record type.
func (r *Registry) Pool(name string) (PoolHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[name]
	return p, ok
}

// RegisterPool creates a pool named name whose index 0 is described by spec.
func RegisterPool[T any, R Record[T]](r *Registry, name string, spec IndexSpec[T], opts ...PoolOption[T]) (*Pool[T], error) {
	ctx := context.Background()

	p := &Pool[T]{
		name:    name,
		reg:     r,
		hooks:   hooksOf[T, R](),
		logger:  r.logger,
		metrics: r.metrics,
	}
	for _, opt := range opts {
		opt(&p.opts)
	}

	ix, err := newIndex(0, spec, p.hooks)
	if err != nil {
		err = indexErr(name, 0, "register", err)
		r.logger.LogRegister(ctx, name, 0, spec.Structure.String(), err)
		r.lastErr.set(err)
		return nil, err
	}
	p.indexes[0] = ix
	p.count = 1

	r.mu.Lock()
	if _, ok := r.pools[name]; ok {
		r.mu.Unlock()
		err := fmt.Errorf("register %q: %w", name, ErrDuplicatePool)
		r.logger.LogRegister(ctx, name, 0, spec.Structure.String(), err)
		r.lastErr.set(err)
		return nil, err
	}
	r.pools[name] = p
	r.mu.Unlock()

	r.logger.LogRegister(ctx, name, 0, spec.Structure.String(), nil)
	return p, nil
}

// FindPool returns the pool registered under name if it holds records of
// type T.
func FindPool[T any](r *Registry, name string) (*Pool[T], bool) {
	h, ok := r.Pool(name)
	if !ok {
		return nil, false
	}
	p, ok := h.(*Pool[T])
	return p, ok
}

// DropPool removes an empty pool from the registry. Records are never
// touched; a pool that still holds records is rejected with ErrPoolNotEmpty.
// Flush it first, or use MarkForDrop and Gc.
func (r *Registry) DropPool(p PoolHandle) error {
	err := r.drop(p)
	name := ""
	if p != nil {
		name = p.Name()
	}
	r.logger.LogDrop(context.Background(), name, err)
	if err != nil {
		r.lastErr.set(err)
	}
	return err
}

func (r *Registry) drop(p PoolHandle) error {
	if p == nil {
		return ErrPoolNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.pools[p.Name()]; !ok || cur != p {
		return fmt.Errorf("drop %q: %w", p.Name(), ErrPoolNotFound)
	}
	if p.Len() != 0 {
		return fmt.Errorf("drop %q: %w", p.Name(), ErrPoolNotEmpty)
	}
	delete(r.pools, p.Name())
	p.detach()
	return nil
}

// Gc flushes and drops every pool marked with MarkForDrop and returns the
// number of pools dropped. Each swept pool's lock is taken, so the caller
// must not hold it.
func (r *Registry) Gc(ctx context.Context) (int, error) {
	return r.sweep(ctx, true)
}

// Clean flushes and drops every pool, or only the marked ones when gcOnly is
// set. Records are destroyed with each pool's destructor or default cleanup.
func (r *Registry) Clean(ctx context.Context, gcOnly bool) error {
	_, err := r.sweep(ctx, gcOnly)
	return err
}

func (r *Registry) sweep(ctx context.Context, gcOnly bool) (int, error) {
	r.mu.Lock()
	var victims []PoolHandle
	for name, p := range r.pools {
		if gcOnly && !p.MarkedForDrop() {
			continue
		}
		victims = append(victims, p)
		delete(r.pools, name)
	}
	r.mu.Unlock()

	var records atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.rc.TeardownWorkers())
	for _, p := range victims {
		g.Go(func() error {
			if err := r.rc.AcquireTeardownWorker(gctx); err != nil {
				return err
			}
			defer r.rc.ReleaseTeardownWorker()

			n, err := p.sweep(gctx)
			records.Add(int64(n))
			r.logger.LogDrop(gctx, p.Name(), err)
			if err != nil {
				return fmt.Errorf("sweep %q: %w", p.Name(), err)
			}
			return nil
		})
	}

	err := g.Wait()
	r.logger.LogGc(ctx, gcOnly, len(victims), int(records.Load()), err)
	if err != nil {
		r.lastErr.set(err)
	}
	return len(victims), err
}
