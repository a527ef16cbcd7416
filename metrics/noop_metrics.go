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

type noopMetrics struct{}

func (*noopMetrics) CacheRegisteredRangeCount(inc int64) {}

func (*noopMetrics) CacheCombinedRangeCount(inc int64) {}

func (*noopMetrics) CacheFetchCount(inc int64, priority string) {}

func (*noopMetrics) CacheFetchBytesCount(inc int64) {}

func (*noopMetrics) CacheFetchLatency(ctx context.Context, latency time.Duration, status string) {}

func (*noopMetrics) CacheReadBytesCount(inc int64) {}

func (*noopMetrics) CacheWaitLatency(ctx context.Context, latency time.Duration) {}

func (*noopMetrics) StoreRequestCount(inc int64, method string) {}

func (*noopMetrics) StoreRequestLatencies(ctx context.Context, latency time.Duration, method string) {
}

func (*noopMetrics) StoreReadBytesCount(inc int64) {}

func NewNoopMetrics() MetricHandle {
	var n noopMetrics
	return &n
}
