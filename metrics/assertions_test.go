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
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// collect returns the aggregation exported under name. All instruments of this
// package live in a single meter scope.
func collect(t *testing.T, ctx context.Context, reader *metric.ManualReader, name string) metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name == name {
			return m.Data
		}
	}
	require.FailNow(t, "metric not exported", name)
	return nil
}

// pointFor picks the data point whose attributes equal attrs.
func pointFor[P interface{ attributes() attribute.Set }](t *testing.T, name string, points []P, attrs attribute.Set) P {
	t.Helper()
	for _, p := range points {
		if got := p.attributes(); got.Equals(&attrs) {
			return p
		}
	}
	require.FailNow(t, "no data point", "%s has no point for %s", name, attrs.Encoded(attribute.DefaultEncoder()))
	var zero P
	return zero
}

type sumPoint metricdata.DataPoint[int64]

func (p sumPoint) attributes() attribute.Set { return p.Attributes }

type histogramPoint metricdata.HistogramDataPoint[int64]

func (p histogramPoint) attributes() attribute.Set { return p.Attributes }

func assertCounter(t *testing.T, ctx context.Context, reader *metric.ManualReader, name string, attrs attribute.Set, want int64) {
	t.Helper()
	sum, ok := collect(t, ctx, reader, name).(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", name)
	points := make([]sumPoint, len(sum.DataPoints))
	for i, dp := range sum.DataPoints {
		points[i] = sumPoint(dp)
	}
	require.Equal(t, want, pointFor(t, name, points, attrs).Value, "%s", name)
}

func assertHistogramCount(t *testing.T, ctx context.Context, reader *metric.ManualReader, name string, attrs attribute.Set, want uint64) {
	t.Helper()
	hist, ok := collect(t, ctx, reader, name).(metricdata.Histogram[int64])
	require.True(t, ok, "%s is not an int64 histogram", name)
	points := make([]histogramPoint, len(hist.DataPoints))
	for i, dp := range hist.DataPoints {
		points[i] = histogramPoint(dp)
	}
	require.Equal(t, want, pointFor(t, name, points, attrs).Count, "%s", name)
}
