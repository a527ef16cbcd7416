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

package rangecache

import (
	"context"

	"github.com/google/uuid"
	"github.com/googlecloudplatform/rangecache/internal/logger"
	"github.com/googlecloudplatform/rangecache/internal/storage"
	"github.com/googlecloudplatform/rangecache/internal/workerpool"
	"github.com/googlecloudplatform/rangecache/metrics"
	"github.com/googlecloudplatform/rangecache/tracing"
)

type fetchTask struct {
	workerpool.Task
	cache *ReadRangeCache
	entry *entry

	// ctx carries the values of the call that triggered the fetch but is never
	// cancelled; a fetch always runs to completion.
	ctx      context.Context
	priority string
}

// Execute implements the workerpool.Task interface. It reads the entry's
// span from the store and publishes the bytes, or the failure, to every
// waiter on the entry.
func (t *fetchTask) Execute() {
	c, e := t.cache, t.entry
	defer c.inflight.Done()

	id := uuid.New()
	ctx, span := c.traceHandle.StartSpanLink(t.ctx, tracing.SpanFetch)
	c.traceHandle.SetRangeAttributes(span, e.span.Offset, e.span.Length)
	logger.Tracef("Fetch %s: <- %v (%s)", id, e.span, t.priority)
	c.metricHandle.CacheFetchCount(1, t.priority)
	start := c.clock.Now()

	data, err := c.store.ReadRange(ctx, e.span.Offset, e.span.Length)
	if err == nil && int64(len(data)) != e.span.Length {
		err = &storage.ShortReadError{Offset: e.span.Offset, Length: e.span.Length, Got: int64(len(data))}
	}

	latency := c.clock.Now().Sub(start)
	if err != nil {
		err = &BackingStoreError{Span: e.span, Err: err}
		logger.Debugf("Fetch %s: -> %v failed after %v: %v", id, e.span, latency, err)
		c.traceHandle.RecordError(span, err)
		c.metricHandle.CacheFetchLatency(ctx, latency, metrics.FetchStatusFailed)
		data = nil
	} else {
		logger.Tracef("Fetch %s: -> %v Ok(%v)", id, e.span, latency)
		c.metricHandle.CacheFetchBytesCount(int64(len(data)))
		c.metricHandle.CacheFetchLatency(ctx, latency, metrics.FetchStatusSuccessful)
	}
	c.traceHandle.EndSpan(span)
	e.complete(data, err)
}
