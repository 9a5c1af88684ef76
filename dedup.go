package adminapi

import (
	"context"
	"sync"
	"time"
)

// dedupStaleAfter bounds how long a pending record may sit unsettled before
// the sweep reclaims it. Reclaims are a safety net for transports that never
// settle; settlement removal is the normal path. The window is deliberately
// fixed and independent of the retry configuration.
const dedupStaleAfter = 30 * time.Second

// PendingCall is one outstanding coalesced call. Waiters block on done and
// then observe the single shared envelope.
type PendingCall struct {
	done      chan struct{}
	startedAt time.Time

	mu      sync.Mutex
	resp    *Response
	waiters int
}

// Wait blocks until the owning call settles or ctx is canceled.
func (p *PendingCall) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		resp := p.resp
		p.mu.Unlock()
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Deduplicator coalesces concurrent calls sharing a request signature into a
// single underlying call. For N concurrent callers issued before the first
// settles, exactly one executes; all N observe the same envelope, success or
// failure alike.
type Deduplicator struct {
	mu      sync.Mutex
	pending map[string]*PendingCall

	logger  Logger
	metrics *MetricsCollector
}

// NewDeduplicator returns an empty tracker.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{pending: make(map[string]*PendingCall)}
}

// GetOrCreate returns an existing pending record (owner=false) or registers
// a new one (owner=true). Registration happens before the owner's work
// starts, closing the race window for near-simultaneous callers.
func (d *Deduplicator) GetOrCreate(key string) (*PendingCall, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sweepLocked(time.Now())

	if p, ok := d.pending[key]; ok {
		p.mu.Lock()
		p.waiters++
		p.mu.Unlock()
		return p, false
	}

	p := &PendingCall{
		done:      make(chan struct{}),
		startedAt: time.Now(),
		waiters:   1,
	}
	d.pending[key] = p
	return p, true
}

// Complete settles the record and releases all waiters. The record is
// removed immediately so a subsequent identical call starts fresh.
func (d *Deduplicator) Complete(key string, resp *Response) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if !ok {
		return
	}

	p.mu.Lock()
	p.resp = resp
	p.mu.Unlock()
	close(p.done)
}

// Len reports the number of outstanding records.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// sweepLocked reclaims records older than the staleness window. A reclaim
// means an owner never settled, so it is logged and counted.
func (d *Deduplicator) sweepLocked(now time.Time) {
	for key, p := range d.pending {
		age := now.Sub(p.startedAt)
		if age < dedupStaleAfter {
			continue
		}
		delete(d.pending, key)
		if d.logger != nil {
			d.logger.Warn("reclaimed stale in-flight record", "key", key, "age", age)
		}
		if d.metrics != nil {
			d.metrics.RecordDedupSweep()
		}
	}
}
