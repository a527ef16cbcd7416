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

	"github.com/stretchr/testify/mock"
)

type MockMetricHandle struct {
	mock.Mock
}

func (m *MockMetricHandle) CacheRegisteredRangeCount(inc int64) {
	m.Called(inc)
}

func (m *MockMetricHandle) CacheCombinedRangeCount(inc int64) {
	m.Called(inc)
}

func (m *MockMetricHandle) CacheFetchCount(inc int64, priority string) {
	m.Called(inc, priority)
}

func (m *MockMetricHandle) CacheFetchBytesCount(inc int64) {
	m.Called(inc)
}

func (m *MockMetricHandle) CacheFetchLatency(ctx context.Context, latency time.Duration, status string) {
	m.Called(ctx, latency, status)
}

func (m *MockMetricHandle) CacheReadBytesCount(inc int64) {
	m.Called(inc)
}

func (m *MockMetricHandle) CacheWaitLatency(ctx context.Context, latency time.Duration) {
	m.Called(ctx, latency)
}

func (m *MockMetricHandle) StoreRequestCount(inc int64, method string) {
	m.Called(inc, method)
}

func (m *MockMetricHandle) StoreRequestLatencies(ctx context.Context, latency time.Duration, method string) {
	m.Called(ctx, latency, method)
}

func (m *MockMetricHandle) StoreReadBytesCount(inc int64) {
	m.Called(inc)
}
