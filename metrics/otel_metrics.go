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

package metrics

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/googlecloudplatform/rangecache/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const logInterval = 5 * time.Minute

var (
	unrecognizedAttr atomic.Value

	cacheFetchCountPriorityNormalAttrSet        = metric.WithAttributeSet(attribute.NewSet(attribute.String("priority", FetchPriorityNormal)))
	cacheFetchCountPriorityUrgentAttrSet        = metric.WithAttributeSet(attribute.NewSet(attribute.String("priority", FetchPriorityUrgent)))
	cacheFetchLatencyStatusSuccessfulAttrSet    = metric.WithAttributeSet(attribute.NewSet(attribute.String("status", FetchStatusSuccessful)))
	cacheFetchLatencyStatusFailedAttrSet        = metric.WithAttributeSet(attribute.NewSet(attribute.String("status", FetchStatusFailed)))
	storeRequestCountMethodReadRangeAttrSet     = metric.WithAttributeSet(attribute.NewSet(attribute.String("store_method", StoreMethodReadRange)))
	storeRequestCountMethodSizeAttrSet          = metric.WithAttributeSet(attribute.NewSet(attribute.String("store_method", StoreMethodSize)))
	storeRequestLatenciesMethodReadRangeAttrSet = metric.WithAttributeSet(attribute.NewSet(attribute.String("store_method", StoreMethodReadRange)))
	storeRequestLatenciesMethodSizeAttrSet      = metric.WithAttributeSet(attribute.NewSet(attribute.String("store_method", StoreMethodSize)))
)

type histogramRecord struct {
	ctx        context.Context
	instrument metric.Int64Histogram
	value      int64
	attributes metric.RecordOption
}

type otelMetrics struct {
	ch chan histogramRecord
	wg *sync.WaitGroup

	cacheRegisteredRangeCountAtomic        *atomic.Int64
	cacheCombinedRangeCountAtomic          *atomic.Int64
	cacheFetchCountPriorityNormalAtomic    *atomic.Int64
	cacheFetchCountPriorityUrgentAtomic    *atomic.Int64
	cacheFetchBytesCountAtomic             *atomic.Int64
	cacheReadBytesCountAtomic              *atomic.Int64
	storeRequestCountMethodReadRangeAtomic *atomic.Int64
	storeRequestCountMethodSizeAtomic      *atomic.Int64
	storeReadBytesCountAtomic              *atomic.Int64

	cacheFetchLatency     metric.Int64Histogram
	cacheWaitLatency      metric.Int64Histogram
	storeRequestLatencies metric.Int64Histogram
}

func (o *otelMetrics) CacheRegisteredRangeCount(inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric cache/registered_range_count received a negative increment: %d", inc)
		return
	}
	o.cacheRegisteredRangeCountAtomic.Add(inc)
}

func (o *otelMetrics) CacheCombinedRangeCount(inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric cache/combined_range_count received a negative increment: %d", inc)
		return
	}
	o.cacheCombinedRangeCountAtomic.Add(inc)
}

func (o *otelMetrics) CacheFetchCount(inc int64, priority string) {
	if inc < 0 {
		logger.Errorf("Counter metric cache/fetch_count received a negative increment: %d", inc)
		return
	}
	switch priority {
	case FetchPriorityNormal:
		o.cacheFetchCountPriorityNormalAtomic.Add(inc)
	case FetchPriorityUrgent:
		o.cacheFetchCountPriorityUrgentAtomic.Add(inc)
	default:
		updateUnrecognizedAttribute(priority)
	}
}

func (o *otelMetrics) CacheFetchBytesCount(inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric cache/fetch_bytes_count received a negative increment: %d", inc)
		return
	}
	o.cacheFetchBytesCountAtomic.Add(inc)
}

func (o *otelMetrics) CacheFetchLatency(ctx context.Context, latency time.Duration, status string) {
	var record histogramRecord
	switch status {
	case FetchStatusSuccessful:
		record = histogramRecord{ctx: ctx, instrument: o.cacheFetchLatency, value: latency.Milliseconds(), attributes: cacheFetchLatencyStatusSuccessfulAttrSet}
	case FetchStatusFailed:
		record = histogramRecord{ctx: ctx, instrument: o.cacheFetchLatency, value: latency.Milliseconds(), attributes: cacheFetchLatencyStatusFailedAttrSet}
	default:
		updateUnrecognizedAttribute(status)
		return
	}
	o.enqueue(record)
}

func (o *otelMetrics) CacheReadBytesCount(inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric cache/read_bytes_count received a negative increment: %d", inc)
		return
	}
	o.cacheReadBytesCountAtomic.Add(inc)
}

func (o *otelMetrics) CacheWaitLatency(ctx context.Context, latency time.Duration) {
	o.enqueue(histogramRecord{ctx: ctx, instrument: o.cacheWaitLatency, value: latency.Microseconds()})
}

func (o *otelMetrics) StoreRequestCount(inc int64, method string) {
	if inc < 0 {
		logger.Errorf("Counter metric store/request_count received a negative increment: %d", inc)
		return
	}
	switch method {
	case StoreMethodReadRange:
		o.storeRequestCountMethodReadRangeAtomic.Add(inc)
	case StoreMethodSize:
		o.storeRequestCountMethodSizeAtomic.Add(inc)
	default:
		updateUnrecognizedAttribute(method)
	}
}

func (o *otelMetrics) StoreRequestLatencies(ctx context.Context, latency time.Duration, method string) {
	var record histogramRecord
	switch method {
	case StoreMethodReadRange:
		record = histogramRecord{ctx: ctx, instrument: o.storeRequestLatencies, value: latency.Milliseconds(), attributes: storeRequestLatenciesMethodReadRangeAttrSet}
	case StoreMethodSize:
		record = histogramRecord{ctx: ctx, instrument: o.storeRequestLatencies, value: latency.Milliseconds(), attributes: storeRequestLatenciesMethodSizeAttrSet}
	default:
		updateUnrecognizedAttribute(method)
		return
	}
	o.enqueue(record)
}

func (o *otelMetrics) StoreReadBytesCount(inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric store/read_bytes_count received a negative increment: %d", inc)
		return
	}
	o.storeReadBytesCountAtomic.Add(inc)
}

// enqueue hands the record to the recording workers, dropping it when they
// fall behind.
func (o *otelMetrics) enqueue(record histogramRecord) {
	select {
	case o.ch <- record:
	default:
	}
}

// NewOTelMetrics registers the instruments on the global meter provider and
// starts the given number of histogram recording workers.
func NewOTelMetrics(ctx context.Context, workers int, bufferSize int) (*otelMetrics, error) {
	ch := make(chan histogramRecord, bufferSize)
	var wg sync.WaitGroup
	startSampledLogging(ctx)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range ch {
				if record.attributes != nil {
					record.instrument.Record(record.ctx, record.value, record.attributes)
				} else {
					record.instrument.Record(record.ctx, record.value)
				}
			}
		}()
	}
	meter := otel.Meter("rangecache")

	var cacheRegisteredRangeCountAtomic,
		cacheCombinedRangeCountAtomic,
		cacheFetchCountPriorityNormalAtomic,
		cacheFetchCountPriorityUrgentAtomic,
		cacheFetchBytesCountAtomic,
		cacheReadBytesCountAtomic,
		storeRequestCountMethodReadRangeAtomic,
		storeRequestCountMethodSizeAtomic,
		storeReadBytesCountAtomic atomic.Int64

	_, err0 := meter.Int64ObservableCounter("cache/registered_range_count",
		metric.WithDescription("The cumulative number of byte ranges registered with the cache."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &cacheRegisteredRangeCountAtomic)
			return nil
		}))

	_, err1 := meter.Int64ObservableCounter("cache/combined_range_count",
		metric.WithDescription("The cumulative number of combined ranges created by coalescing."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &cacheCombinedRangeCountAtomic)
			return nil
		}))

	_, err2 := meter.Int64ObservableCounter("cache/fetch_count",
		metric.WithDescription("The cumulative number of combined range fetches, by priority."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &cacheFetchCountPriorityNormalAtomic, cacheFetchCountPriorityNormalAttrSet)
			conditionallyObserve(obsrv, &cacheFetchCountPriorityUrgentAtomic, cacheFetchCountPriorityUrgentAttrSet)
			return nil
		}))

	_, err3 := meter.Int64ObservableCounter("cache/fetch_bytes_count",
		metric.WithDescription("The cumulative number of bytes fetched for combined ranges."),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &cacheFetchBytesCountAtomic)
			return nil
		}))

	cacheFetchLatency, err4 := meter.Int64Histogram("cache/fetch_latency",
		metric.WithDescription("The distribution of combined range fetch latencies, by status."),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 5000, 10000, 20000, 50000, 100000))

	_, err5 := meter.Int64ObservableCounter("cache/read_bytes_count",
		metric.WithDescription("The cumulative number of bytes returned to readers."),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &cacheReadBytesCountAtomic)
			return nil
		}))

	cacheWaitLatency, err6 := meter.Int64Histogram("cache/wait_latency",
		metric.WithDescription("The distribution of time readers spent blocked on a fetch."),
		metric.WithUnit("us"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 5000, 10000, 20000, 50000, 100000, 200000, 500000, 1000000))

	_, err7 := meter.Int64ObservableCounter("store/request_count",
		metric.WithDescription("The cumulative number of requests sent to the backing store, by method."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &storeRequestCountMethodReadRangeAtomic, storeRequestCountMethodReadRangeAttrSet)
			conditionallyObserve(obsrv, &storeRequestCountMethodSizeAtomic, storeRequestCountMethodSizeAttrSet)
			return nil
		}))

	storeRequestLatencies, err8 := meter.Int64Histogram("store/request_latencies",
		metric.WithDescription("The distribution of backing store request latencies, by method."),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 5000, 10000, 20000, 50000, 100000))

	_, err9 := meter.Int64ObservableCounter("store/read_bytes_count",
		metric.WithDescription("The cumulative number of bytes read from the backing store."),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &storeReadBytesCountAtomic)
			return nil
		}))

	errs := []error{err0, err1, err2, err3, err4, err5, err6, err7, err8, err9}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &otelMetrics{
		ch:                                     ch,
		wg:                                     &wg,
		cacheRegisteredRangeCountAtomic:        &cacheRegisteredRangeCountAtomic,
		cacheCombinedRangeCountAtomic:          &cacheCombinedRangeCountAtomic,
		cacheFetchCountPriorityNormalAtomic:    &cacheFetchCountPriorityNormalAtomic,
		cacheFetchCountPriorityUrgentAtomic:    &cacheFetchCountPriorityUrgentAtomic,
		cacheFetchBytesCountAtomic:             &cacheFetchBytesCountAtomic,
		cacheReadBytesCountAtomic:              &cacheReadBytesCountAtomic,
		storeRequestCountMethodReadRangeAtomic: &storeRequestCountMethodReadRangeAtomic,
		storeRequestCountMethodSizeAtomic:      &storeRequestCountMethodSizeAtomic,
		storeReadBytesCountAtomic:              &storeReadBytesCountAtomic,
		cacheFetchLatency:                      cacheFetchLatency,
		cacheWaitLatency:                       cacheWaitLatency,
		storeRequestLatencies:                  storeRequestLatencies,
	}, nil
}

// Close stops the histogram recording workers after they drain the queue.
func (o *otelMetrics) Close() {
	close(o.ch)
	o.wg.Wait()
}

func conditionallyObserve(obsrv metric.Int64Observer, counter *atomic.Int64, obsrvOptions ...metric.ObserveOption) {
	if val := counter.Load(); val > 0 {
		obsrv.Observe(val, obsrvOptions...)
	}
}

func updateUnrecognizedAttribute(newValue string) {
	unrecognizedAttr.CompareAndSwap("", newValue)
}

// startSampledLogging starts a goroutine that logs unrecognized attributes periodically.
func startSampledLogging(ctx context.Context) {
	// Init the atomic.Value
	unrecognizedAttr.Store("")

	go func() {
		ticker := time.NewTicker(logInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logUnrecognizedAttribute()
			}
		}
	}()
}

// logUnrecognizedAttribute retrieves and logs any unrecognized attributes.
func logUnrecognizedAttribute() {
	if currentAttr := unrecognizedAttr.Swap("").(string); currentAttr != "" {
		logger.Tracef("Attribute %s is not declared", currentAttr)
	}
}
