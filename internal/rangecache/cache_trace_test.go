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
	"errors"
	"testing"

	"github.com/googlecloudplatform/rangecache/internal/storage/fake"
	"github.com/googlecloudplatform/rangecache/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanNamed(spans []sdktrace.ReadOnlySpan, name string) []sdktrace.ReadOnlySpan {
	var out []sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == name {
			out = append(out, s)
		}
	}
	return out
}

func TestCacheFetchSpansAreLinkedToRegistration(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	object := fake.NewObject("object", fake.Content(4096))
	object.FailReadAt(1000, errors.New("boom"))
	cache, err := NewWithConfig(object, Config{Options: scenarioOptions, TraceHandle: tracing.NewOTelTracer()})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Cache(ctx, []ByteRange{{0, 50}, {1000, 50}}))
	_, err = cache.Read(ctx, ByteRange{0, 50})
	require.NoError(t, err)
	assert.Error(t, cache.Wait(ctx, ByteRange{1000, 50}))
	require.NoError(t, cache.Close())

	spans := recorder.Ended()
	register := spanNamed(spans, tracing.SpanRegister)
	require.Len(t, register, 1)
	fetches := spanNamed(spans, tracing.SpanFetch)
	require.Len(t, fetches, 2)
	var failed int
	for _, f := range fetches {
		require.Len(t, f.Links(), 1)
		assert.Equal(t, register[0].SpanContext().TraceID(), f.Links()[0].SpanContext.TraceID())
		assert.NotEqual(t, register[0].SpanContext().TraceID(), f.SpanContext().TraceID())
		if f.Status().Code == codes.Error {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Len(t, spanNamed(spans, tracing.SpanRead), 1)
	waits := spanNamed(spans, tracing.SpanWait)
	require.Len(t, waits, 1)
	assert.Equal(t, codes.Error, waits[0].Status().Code)
}
