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

package monitor

import (
	"context"
	"time"

	"github.com/googlecloudplatform/rangecache/internal/storage"
	"github.com/googlecloudplatform/rangecache/metrics"
	"github.com/googlecloudplatform/rangecache/tracing"
)

// NewMonitoringObject returns an object that records request counts,
// latencies, bytes read and a trace span for every call to the wrapped
// object.
func NewMonitoringObject(wrapped storage.Object, metricHandle metrics.MetricHandle, traceHandle tracing.TraceHandle) storage.Object {
	return &monitoringObject{
		wrapped:      wrapped,
		metricHandle: metricHandle,
		traceHandle:  traceHandle,
	}
}

type monitoringObject struct {
	wrapped      storage.Object
	metricHandle metrics.MetricHandle
	traceHandle  tracing.TraceHandle
}

// recordRequest records a request and its latency.
func (mo *monitoringObject) recordRequest(ctx context.Context, method string, start time.Time) {
	mo.metricHandle.StoreRequestCount(1, method)
	mo.metricHandle.StoreRequestLatencies(ctx, time.Since(start), method)
}

func (mo *monitoringObject) Name() string {
	return mo.wrapped.Name()
}

func (mo *monitoringObject) Size(ctx context.Context) (int64, error) {
	startTime := time.Now()
	size, err := mo.wrapped.Size(ctx)
	mo.recordRequest(ctx, metrics.StoreMethodSize, startTime)
	return size, err
}

func (mo *monitoringObject) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	ctx, span := mo.traceHandle.StartSpan(ctx, tracing.SpanReadRange)
	defer mo.traceHandle.EndSpan(span)
	mo.traceHandle.SetRangeAttributes(span, offset, length)

	startTime := time.Now()
	data, err := mo.wrapped.ReadRange(ctx, offset, length)
	mo.recordRequest(ctx, metrics.StoreMethodReadRange, startTime)
	if err != nil {
		mo.traceHandle.RecordError(span, err)
		return nil, err
	}
	mo.metricHandle.StoreReadBytesCount(int64(len(data)))
	return data, nil
}

func (mo *monitoringObject) Close() error {
	return mo.wrapped.Close()
}
