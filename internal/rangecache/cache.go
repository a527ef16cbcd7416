// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rangecache coalesces byte ranges that are known ahead of time into
// fewer, larger reads against a slow backing store, issues those reads
// concurrently, and serves the registered ranges out of the fetched buffers.
package rangecache

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/googlecloudplatform/rangecache/internal/locker"
	"github.com/googlecloudplatform/rangecache/internal/logger"
	"github.com/googlecloudplatform/rangecache/internal/workerpool"
	"github.com/googlecloudplatform/rangecache/metrics"
	"github.com/googlecloudplatform/rangecache/tracing"
	"github.com/jacobsa/timeutil"
	"golang.org/x/sync/errgroup"
)

// Store is the backing store the cache reads from. It is never written to.
type Store interface {
	// ReadRange returns exactly length bytes starting at offset.
	ReadRange(ctx context.Context, offset, length int64) ([]byte, error)
}

type Config struct {
	Options Options

	// WorkerPool runs fetches. Nil means one goroutine per fetch. A pool
	// supplied here is not stopped by Close.
	WorkerPool workerpool.WorkerPool

	// Nil handles disable metrics and tracing.
	MetricHandle metrics.MetricHandle
	TraceHandle  tracing.TraceHandle

	// Clock measures fetch and wait latencies. Nil means the real clock.
	Clock timeutil.Clock
}

// ReadRangeCache is safe for concurrent use. Cache calls whose ranges could
// overlap must be serialized by the caller; every other combination of calls
// may run concurrently.
type ReadRangeCache struct {
	store        Store
	opts         Options
	pool         workerpool.WorkerPool
	ownsPool     bool
	metricHandle metrics.MetricHandle
	traceHandle  tracing.TraceHandle
	clock        timeutil.Clock

	mu locker.RWLocker
	// Sorted by span offset and pairwise non-overlapping. Replaced, never
	// mutated in place, so a reader holding the old slice stays consistent.
	//
	// GUARDED_BY(mu)
	entries []*entry
	// GUARDED_BY(mu)
	closed bool

	// Counts fetches that have been claimed but not completed. Only
	// incremented with mu held and closed false.
	inflight  sync.WaitGroup
	closeOnce sync.Once
}

// New returns a cache over store with default collaborators.
func New(store Store, opts Options) (*ReadRangeCache, error) {
	return NewWithConfig(store, Config{Options: opts})
}

func NewWithConfig(store Store, config Config) (*ReadRangeCache, error) {
	if store == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	if err := config.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	c := &ReadRangeCache{
		store:        store,
		opts:         config.Options,
		pool:         config.WorkerPool,
		metricHandle: config.MetricHandle,
		traceHandle:  config.TraceHandle,
		clock:        config.Clock,
	}
	if c.pool == nil {
		c.pool = workerpool.NewGoRoutineWorkerPool()
		c.pool.Start()
		c.ownsPool = true
	}
	if c.metricHandle == nil {
		c.metricHandle = metrics.NewNoopMetrics()
	}
	if c.traceHandle == nil {
		c.traceHandle = tracing.NewNoopTracer()
	}
	if c.clock == nil {
		c.clock = timeutil.RealClock()
	}
	c.mu = locker.NewRW("ReadRangeCache", c.checkInvariants)
	return c, nil
}

// checkInvariants panics if the entry set is malformed.
//
// LOCKS_REQUIRED(c.mu)
func (c *ReadRangeCache) checkInvariants() {
	for i, e := range c.entries {
		if i > 0 && c.entries[i-1].span.End() > e.span.Offset {
			panic(fmt.Sprintf("entries %v and %v overlap or are out of order", c.entries[i-1].span, e.span))
		}
		if len(e.subranges) == 0 || e.subranges[0].Offset != e.span.Offset {
			panic(fmt.Sprintf("entry %v does not start with a subrange", e.span))
		}
		oversized := false
		for j, r := range e.subranges {
			if !e.span.Contains(r) {
				panic(fmt.Sprintf("entry %v does not contain subrange %v", e.span, r))
			}
			if j > 0 && e.subranges[j-1].End() > r.Offset {
				panic(fmt.Sprintf("subranges %v and %v of entry %v overlap", e.subranges[j-1], r, e.span))
			}
			oversized = oversized || r == e.span
		}
		if e.span.Length > c.opts.RangeSizeLimit && !oversized {
			panic(fmt.Sprintf("merged entry %v exceeds range size limit %d", e.span, c.opts.RangeSizeLimit))
		}
	}
}

////////////////////////////////////////////////////////////////////////
// Registration
////////////////////////////////////////////////////////////////////////

// Cache registers ranges for later retrieval. Nearby ranges are coalesced
// into combined ranges and, unless the cache is lazy, a fetch is started for
// each new combined range. Cache never waits for I/O.
//
// Zero-length ranges are ignored. A range with a negative offset or length,
// or one that overlaps another range of the same call or any range
// registered earlier, fails the whole call with *ContractViolationError and
// registers nothing.
func (c *ReadRangeCache) Cache(ctx context.Context, ranges []ByteRange) error {
	ctx, span := c.traceHandle.StartSpan(ctx, tracing.SpanRegister)
	defer c.traceHandle.EndSpan(span)

	sorted, err := validateNew(ranges)
	if err != nil {
		c.traceHandle.RecordError(span, err)
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCacheClosed
	}

	attachments, rest, err := c.placeAgainstExisting(sorted)
	if err != nil {
		c.mu.Unlock()
		c.traceHandle.RecordError(span, err)
		return err
	}

	old := c.entries
	combined := coalesce(rest, c.opts.HoleSizeLimit, c.opts.RangeSizeLimit, func(cur, next ByteRange) bool {
		// Never grow over an existing entry.
		return nextEntryOffset(old, cur.End()) > next.Offset
	})

	for _, a := range attachments {
		a.entry.attach(a.r)
	}
	created := make([]*entry, len(combined))
	for i, cr := range combined {
		created[i] = newEntry(cr)
	}
	if len(created) > 0 {
		entries := make([]*entry, 0, len(old)+len(created))
		entries = append(entries, old...)
		entries = append(entries, created...)
		slices.SortFunc(entries, func(a, b *entry) int {
			return compareOffset(a.span, b.span)
		})
		c.entries = entries
	}

	var toFetch []*entry
	if !c.opts.Lazy {
		for _, e := range created {
			if e.claim() {
				c.inflight.Add(1)
				toFetch = append(toFetch, e)
			}
		}
	}
	c.mu.Unlock()

	c.metricHandle.CacheRegisteredRangeCount(int64(len(sorted)))
	c.metricHandle.CacheCombinedRangeCount(int64(len(created)))
	for _, e := range toFetch {
		c.schedule(ctx, e, false)
	}
	return nil
}

// ValidateRanges returns the error Cache would return for ranges on an empty
// cache.
func ValidateRanges(ranges []ByteRange) error {
	_, err := validateNew(ranges)
	return err
}

// validateNew drops zero-length ranges, sorts the rest by offset and checks
// them against each other.
func validateNew(ranges []ByteRange) ([]ByteRange, error) {
	sorted := make([]ByteRange, 0, len(ranges))
	for _, r := range ranges {
		switch {
		case r.Offset < 0:
			return nil, &ContractViolationError{Range: r, Reason: "negative offset"}
		case r.Length < 0:
			return nil, &ContractViolationError{Range: r, Reason: "negative length"}
		case r.Offset > math.MaxInt64-r.Length:
			return nil, &ContractViolationError{Range: r, Reason: "end overflows int64"}
		case r.Length > 0:
			sorted = append(sorted, r)
		}
	}
	slices.SortFunc(sorted, compareOffset)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].End() > sorted[i].Offset {
			return nil, &ContractViolationError{Range: sorted[i], Conflict: sorted[i-1], Reason: "overlaps range in the same call"}
		}
	}
	return sorted, nil
}

type attachment struct {
	entry *entry
	r     ByteRange
}

// placeAgainstExisting checks sorted against the registered ranges. Ranges
// that fall inside the span of an existing entry are returned as
// attachments; the rest need new entries.
//
// LOCKS_REQUIRED(c.mu)
func (c *ReadRangeCache) placeAgainstExisting(sorted []ByteRange) (attachments []attachment, rest []ByteRange, err error) {
	for _, r := range sorted {
		var home *entry
		for i := c.firstEntryEndingAfter(r.Offset); i < len(c.entries) && c.entries[i].span.Offset < r.End(); i++ {
			e := c.entries[i]
			for _, s := range e.subranges {
				if s.Overlaps(r) {
					return nil, nil, &ContractViolationError{Range: r, Conflict: s, Reason: "overlaps registered range"}
				}
			}
			// A span begins and ends with a subrange, so touching it without
			// overlapping a subrange means r sits in one of its holes.
			if e.span.Contains(r) {
				home = e
			}
		}
		if home != nil {
			attachments = append(attachments, attachment{entry: home, r: r})
		} else {
			rest = append(rest, r)
		}
	}
	return attachments, rest, nil
}

// firstEntryEndingAfter returns the index of the first entry whose span
// ends after off.
//
// LOCKS_REQUIRED(c.mu)
func (c *ReadRangeCache) firstEntryEndingAfter(off int64) int {
	return sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].span.End() > off
	})
}

// nextEntryOffset returns the offset of the first entry starting at or after
// off, or math.MaxInt64 if there is none.
func nextEntryOffset(entries []*entry, off int64) int64 {
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].span.Offset >= off
	})
	if i == len(entries) {
		return math.MaxInt64
	}
	return entries[i].span.Offset
}

func (c *ReadRangeCache) schedule(ctx context.Context, e *entry, urgent bool) {
	priority := metrics.FetchPriorityNormal
	if urgent {
		priority = metrics.FetchPriorityUrgent
	}
	c.pool.Schedule(urgent, &fetchTask{
		cache:    c,
		entry:    e,
		ctx:      context.WithoutCancel(ctx),
		priority: priority,
	})
}

////////////////////////////////////////////////////////////////////////
// Retrieval
////////////////////////////////////////////////////////////////////////

// lookup finds the entry containing r, starting its fetch if the cache is
// lazy and nobody has yet.
func (c *ReadRangeCache) lookup(ctx context.Context, r ByteRange) (*entry, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrCacheClosed
	}
	i := sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].span.Offset > r.Offset
	}) - 1
	if i < 0 || !c.entries[i].span.Contains(r) {
		c.mu.RUnlock()
		return nil, &OutOfRangeError{Range: r}
	}
	e := c.entries[i]
	start := c.opts.Lazy && e.claim()
	if start {
		c.inflight.Add(1)
	}
	c.mu.RUnlock()

	if start {
		c.schedule(ctx, e, true)
	}
	return e, nil
}

// await blocks until the entry containing r has been fetched or ctx is
// done. Cancelling ctx abandons the wait, not the fetch.
func (c *ReadRangeCache) await(ctx context.Context, r ByteRange) (*entry, error) {
	if r.Offset < 0 || r.Length < 0 {
		return nil, &ContractViolationError{Range: r, Reason: "negative offset or length"}
	}
	// Such a range cannot lie within any registered range, and End would wrap.
	if r.Offset > math.MaxInt64-r.Length {
		return nil, &OutOfRangeError{Range: r}
	}
	e, err := c.lookup(ctx, r)
	if err != nil {
		return nil, err
	}

	select {
	case <-e.done:
	default:
		start := c.clock.Now()
		select {
		case <-e.done:
			c.metricHandle.CacheWaitLatency(ctx, c.clock.Now().Sub(start))
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if e.err != nil {
		return nil, e.err
	}
	return e, nil
}

func (c *ReadRangeCache) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Read returns the bytes of r, waiting for its fetch if needed. r must lie
// within a registered combined range, else *OutOfRangeError is returned. A
// failed fetch yields the *BackingStoreError recorded for it.
//
// The result aliases the fetched buffer and must not be modified.
func (c *ReadRangeCache) Read(ctx context.Context, r ByteRange) ([]byte, error) {
	if r.Length == 0 && r.Offset >= 0 {
		if c.isClosed() {
			return nil, ErrCacheClosed
		}
		return []byte{}, nil
	}

	ctx, span := c.traceHandle.StartSpan(ctx, tracing.SpanRead)
	defer c.traceHandle.EndSpan(span)
	c.traceHandle.SetRangeAttributes(span, r.Offset, r.Length)

	e, err := c.await(ctx, r)
	if err != nil {
		c.traceHandle.RecordError(span, err)
		return nil, err
	}
	lo := r.Offset - e.span.Offset
	hi := lo + r.Length
	c.metricHandle.CacheReadBytesCount(r.Length)
	return e.data[lo:hi:hi], nil
}

// Wait blocks until r could be read without blocking, and returns the error
// Read would return.
func (c *ReadRangeCache) Wait(ctx context.Context, r ByteRange) error {
	if r.Length == 0 && r.Offset >= 0 {
		if c.isClosed() {
			return ErrCacheClosed
		}
		return nil
	}

	ctx, span := c.traceHandle.StartSpan(ctx, tracing.SpanWait)
	defer c.traceHandle.EndSpan(span)

	_, err := c.await(ctx, r)
	c.traceHandle.RecordError(span, err)
	return err
}

// WaitFor waits on all of ranges concurrently and returns the first error.
func (c *ReadRangeCache) WaitFor(ctx context.Context, ranges []ByteRange) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range ranges {
		g.Go(func() error {
			return c.Wait(gctx, r)
		})
	}
	return g.Wait()
}

// Entries returns a snapshot of the combined ranges in offset order.
func (c *ReadRangeCache) Entries() []CombinedRange {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CombinedRange, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.snapshot()
	}
	return out
}

// Close rejects further calls with ErrCacheClosed and waits for every
// in-flight fetch to finish. Buffers already returned by Read stay valid.
// The store is not closed. Close is idempotent.
func (c *ReadRangeCache) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		start := c.clock.Now()
		c.inflight.Wait()
		if c.ownsPool {
			c.pool.Stop()
		}
		logger.Debugf("ReadRangeCache closed after waiting %v for in-flight fetches", c.clock.Now().Sub(start))
	})
	return nil
}
