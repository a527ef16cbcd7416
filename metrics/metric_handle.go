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
	"time"
)

const (
	FetchStatusSuccessful = "successful"
	FetchStatusFailed     = "failed"
)

const (
	FetchPriorityNormal = "normal"
	FetchPriorityUrgent = "urgent"
)

const (
	StoreMethodReadRange = "ReadRange"
	StoreMethodSize      = "Size"
)

// MetricHandle records the metrics of the range cache and of the backing
// stores it reads from.
type MetricHandle interface {
	// CacheRegisteredRangeCount - The cumulative number of byte ranges registered with the cache.
	CacheRegisteredRangeCount(inc int64)

	// CacheCombinedRangeCount - The cumulative number of combined ranges created by coalescing.
	CacheCombinedRangeCount(inc int64)

	// CacheFetchCount - The cumulative number of combined range fetches, by priority.
	CacheFetchCount(inc int64, priority string)

	// CacheFetchBytesCount - The cumulative number of bytes fetched for combined ranges.
	CacheFetchBytesCount(inc int64)

	// CacheFetchLatency - The distribution of combined range fetch latencies, by status.
	CacheFetchLatency(ctx context.Context, latency time.Duration, status string)

	// CacheReadBytesCount - The cumulative number of bytes returned to readers.
	CacheReadBytesCount(inc int64)

	// CacheWaitLatency - The distribution of time readers spent blocked on a fetch.
	CacheWaitLatency(ctx context.Context, latency time.Duration)

	// StoreRequestCount - The cumulative number of requests sent to the backing store, by method.
	StoreRequestCount(inc int64, method string)

	// StoreRequestLatencies - The distribution of backing store request latencies, by method.
	StoreRequestLatencies(ctx context.Context, latency time.Duration, method string)

	// StoreReadBytesCount - The cumulative number of bytes read from the backing store.
	StoreReadBytesCount(inc int64)
}
