// Package pool manages a bounded pool of reusable database connection
// handles shared across concurrent callers. Checkout hands out a validated,
// non-stale handle (oldest idle first), checkin reclaims it through the
// backend adapter's reuse policy, and the maintenance operations evict
// handles that are dead, stale, or leaked.
package pool

import (
	"container/heap"
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guileen/dbpool/logger"
)

// Pool hands out connection handles created through a backend Adapter. It
// is safe for concurrent use by multiple goroutines. A handle is owned
// exclusively by its caller between Checkout and Put; the pool never gives
// the same handle to two callers at once.
type Pool struct {
	config  Config
	adapter Adapter

	// mu guards idle, inUse and reserved. It is held only for in-memory
	// bookkeeping; adapter calls run with the lock released.
	mu    sync.Mutex
	idle  idleHeap
	inUse map[string]inUseEntry

	// reserved counts handles that are in neither registry but still
	// claim capacity: connects in flight and popped idle handles whose
	// validation probes run with the lock released.
	reserved int

	stats Stats
}

// New creates a Pool that obtains connections through adapter.
func New(config Config, adapter Adapter) *Pool {
	if config.MaxConnections < 0 {
		config.MaxConnections = 0
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultConfig().RetryInterval
	}

	return &Pool{
		config:  config,
		adapter: adapter,
		inUse:   make(map[string]inUseEntry),
	}
}

// jitteredNow returns the current time minus a random sub-millisecond
// offset, so timestamps assigned in the same instant still order the idle
// heap randomly instead of herding load onto one handle.
func jitteredNow() time.Time {
	return time.Now().Add(-time.Duration(rand.Int64N(int64(time.Millisecond))))
}

// Checkout hands out one validated handle, preferring the oldest idle one.
// When every handle is checked out and the pool is at MaxConnections it
// fails immediately with ErrPoolExhausted (wrapped in a *PoolError); Get is
// the waiting variant. Adapter connect failures are wrapped and propagated
// unchanged underneath.
func (p *Pool) Checkout(ctx context.Context) (*Handle, error) {
	p.mu.Lock()

	for p.idle.Len() > 0 {
		entry := heap.Pop(&p.idle).(idleEntry)
		// The popped handle belongs to nobody until it is re-registered,
		// so the adapter probes run without the lock. It keeps claiming
		// capacity in the meantime, or a concurrent Checkout would see a
		// free slot and connect past MaxConnections.
		p.reserved++
		p.mu.Unlock()

		if p.adapter.IsClosed(ctx, entry.handle.raw) {
			// Already dead; it needs no close call.
			atomic.AddUint64(&p.stats.DeadDiscarded, 1)
			logger.Debug("discarded dead idle handle", logger.HandleID(entry.handle.id))
			p.mu.Lock()
			p.reserved--
			continue
		}

		now := time.Now()
		if p.config.StaleTimeout > 0 && now.Sub(entry.returnedAt) > p.config.StaleTimeout {
			atomic.AddUint64(&p.stats.StaleClosed, 1)
			p.closeHandle(entry.handle, "stale idle handle")
			p.mu.Lock()
			p.reserved--
			continue
		}

		p.mu.Lock()
		p.reserved--
		p.inUse[entry.handle.id] = inUseEntry{
			createdAt:    entry.returnedAt,
			handle:       entry.handle,
			checkedOutAt: now,
		}
		p.mu.Unlock()
		atomic.AddUint64(&p.stats.Hits, 1)
		return entry.handle, nil
	}

	// No idle handle survived validation; create one if capacity allows.
	if p.config.MaxConnections > 0 && len(p.inUse)+p.reserved >= p.config.MaxConnections {
		p.mu.Unlock()
		atomic.AddUint64(&p.stats.Exhausted, 1)
		return nil, &PoolError{Op: "checkout", Err: ErrPoolExhausted}
	}

	// Reserve capacity before releasing the lock so concurrent checkouts
	// cannot overshoot MaxConnections while this connect is in flight.
	p.reserved++
	p.mu.Unlock()

	raw, err := p.adapter.Connect(ctx)

	p.mu.Lock()
	p.reserved--
	if err != nil {
		p.mu.Unlock()
		atomic.AddUint64(&p.stats.ConnectErrors, 1)
		return nil, &PoolError{Op: "connect", Err: err}
	}

	handle := newHandle(raw)
	p.inUse[handle.id] = inUseEntry{
		createdAt:    jitteredNow(),
		handle:       handle,
		checkedOutAt: time.Now(),
	}
	p.mu.Unlock()

	atomic.AddUint64(&p.stats.Misses, 1)
	logger.Debug("created pooled handle", logger.HandleID(handle.id))
	return handle, nil
}

// Get wraps Checkout in a retry loop: whenever the pool is exhausted or the
// backend connect fails, it sleeps RetryInterval and tries again until
// WaitTimeout elapses or ctx is cancelled, then surfaces the last error.
// A WaitTimeout of 0 fails immediately; WaitForever retries until ctx is
// done.
func (p *Pool) Get(ctx context.Context) (*Handle, error) {
	if p.config.WaitTimeout == 0 {
		return p.Checkout(ctx)
	}

	var deadline time.Time
	if p.config.WaitTimeout > 0 {
		deadline = time.Now().Add(p.config.WaitTimeout)
	}

	for {
		handle, err := p.Checkout(ctx)
		if err == nil {
			return handle, nil
		}

		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, &PoolError{Op: "get", Err: ctx.Err()}
		case <-time.After(p.config.RetryInterval):
		}
	}
}

// Put returns a checked-out handle to the pool. A handle the pool is not
// tracking is ignored, so duplicate release calls are safe. Put never
// fails: a handle that is stale or refused by the adapter is closed and
// discarded instead.
func (p *Pool) Put(handle *Handle) {
	if handle == nil {
		return
	}

	p.mu.Lock()
	entry, ok := p.inUse[handle.id]
	if !ok {
		p.mu.Unlock()
		return
	}
	delete(p.inUse, handle.id)
	p.mu.Unlock()

	if p.config.StaleTimeout > 0 && time.Since(entry.createdAt) > p.config.StaleTimeout {
		atomic.AddUint64(&p.stats.StaleClosed, 1)
		p.closeHandle(handle, "stale handle on checkin")
		return
	}

	if !p.adapter.CanReuse(context.Background(), handle.raw) {
		atomic.AddUint64(&p.stats.ReuseRefused, 1)
		p.closeHandle(handle, "adapter refused reuse")
		return
	}

	p.mu.Lock()
	heap.Push(&p.idle, idleEntry{returnedAt: jitteredNow(), handle: handle})
	p.mu.Unlock()
}

// ManualClose discards a checked-out handle without recycling it. Use it
// when the caller knows the connection is unusable and a Put would only
// hand the problem to the next checkout.
func (p *Pool) ManualClose(handle *Handle) {
	if handle == nil {
		return
	}

	p.mu.Lock()
	delete(p.inUse, handle.id)
	p.mu.Unlock()

	p.closeHandle(handle, "manual close")
}

// CloseIdle closes every handle currently in the idle registry.
func (p *Pool) CloseIdle() {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, entry := range idle {
		p.closeHandle(entry.handle, "close idle")
	}
}

// CloseStale force-closes every in-use handle checked out more than age
// ago and stops tracking it, returning the number closed. It is a safety
// valve against callers that never check their handle back in.
func (p *Pool) CloseStale(age time.Duration) int {
	cutoff := time.Now().Add(-age)

	var stale []*Handle
	p.mu.Lock()
	for id, entry := range p.inUse {
		if entry.checkedOutAt.Before(cutoff) {
			stale = append(stale, entry.handle)
			delete(p.inUse, id)
		}
	}
	p.mu.Unlock()

	for _, handle := range stale {
		p.closeHandle(handle, "stale in-use handle")
	}
	return len(stale)
}

// CloseAll closes every idle and in-use handle and empties both registries.
// It is meant for shutdown: handles still held by other goroutines become
// unusable underneath them.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	inUse := p.inUse
	p.inUse = make(map[string]inUseEntry)
	p.mu.Unlock()

	for _, entry := range idle {
		p.closeHandle(entry.handle, "close all")
	}
	for _, entry := range inUse {
		p.closeHandle(entry.handle, "close all")
	}
}

// Stats returns a snapshot of pool counters and registry sizes.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	idle := p.idle.Len()
	inUse := len(p.inUse)
	p.mu.Unlock()

	return Stats{
		Hits:          atomic.LoadUint64(&p.stats.Hits),
		Misses:        atomic.LoadUint64(&p.stats.Misses),
		Exhausted:     atomic.LoadUint64(&p.stats.Exhausted),
		ConnectErrors: atomic.LoadUint64(&p.stats.ConnectErrors),
		StaleClosed:   atomic.LoadUint64(&p.stats.StaleClosed),
		ReuseRefused:  atomic.LoadUint64(&p.stats.ReuseRefused),
		DeadDiscarded: atomic.LoadUint64(&p.stats.DeadDiscarded),
		Idle:          idle,
		InUse:         inUse,
	}
}

// closeHandle discards a handle for good. Close failures are logged and
// swallowed; the handle is being thrown away either way.
func (p *Pool) closeHandle(handle *Handle, reason string) {
	if err := p.adapter.Close(handle.raw); err != nil {
		logger.Warn("closing pooled handle failed",
			logger.HandleID(handle.id), logger.String("reason", reason), logger.ErrorField(err))
		return
	}
	logger.Debug("closed pooled handle", logger.HandleID(handle.id), logger.String("reason", reason))
}
