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
	"testing"

	"github.com/googlecloudplatform/rangecache/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupTracingDisabled(t *testing.T) {
	c := &cfg.Config{}

	shutdown := SetupTracing(context.Background(), c)

	assert.Nil(t, shutdown)
}

func TestSetupTracingStdout(t *testing.T) {
	c := &cfg.Config{Monitoring: cfg.MonitoringConfig{
		ExperimentalTracingMode:          cfg.TracingModeStdout,
		ExperimentalTracingSamplingRatio: 1,
	}}

	shutdown := SetupTracing(context.Background(), c)

	require.NotNil(t, shutdown)
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	assert.NoError(t, shutdown(context.Background()))
}
