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


package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// noopTraceHandle hands out spans that record nothing and leaves ctx as is.
// The cache falls back to it when tracing is off.
type noopTraceHandle struct{}

var _ TraceHandle = noopTraceHandle{}

func NewNoopTracer() TraceHandle {
	return noopTraceHandle{}
}

func (noopTraceHandle) StartSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

func (noopTraceHandle) StartSpanLink(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

func (noopTraceHandle) EndSpan(trace.Span) {}

func (noopTraceHandle) RecordError(trace.Span, error) {}

func (noopTraceHandle) SetRangeAttributes(trace.Span, int64, int64) {}
