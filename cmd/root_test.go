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

package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/googlecloudplatform/rangecache/cfg"
	"github.com/googlecloudplatform/rangecache/internal/rangecache"
	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getInvocation(t *testing.T, args []string) (*invocation, error) {
	t.Helper()
	var inv *invocation
	cmd, err := NewRootCmd(func(_ context.Context, i *invocation) error {
		inv = i
		return nil
	})
	require.NoError(t, err)
	cmd.SetArgs(args)
	if err = cmd.Execute(); err != nil {
		return nil, err
	}
	return inv, nil
}

func TestInvalidConfig(t *testing.T) {
	_, err := getInvocation(t, []string{"--config-file=testdata/invalid_config.yaml", "fake://obj"})

	if assert.NotNil(t, err) {
		expectedErr := &mapstructure.Error{}
		assert.ErrorAs(t, err, &expectedErr)
	}
}

func TestConfigFileThatFailsValidation(t *testing.T) {
	_, err := getInvocation(t, []string{"--config-file=testdata/invalid_limits.yaml", "fake://obj"})

	assert.ErrorContains(t, err, "range-size-limit")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := getInvocation(t, []string{"--config-file=testdata/nofile.yaml", "fake://obj"})

	assert.ErrorContains(t, err, "reading the config file")
}

func TestEmptyConfigFile(t *testing.T) {
	inv, err := getInvocation(t, []string{"--config-file=testdata/empty_file.yaml", "fake://obj"})

	require.NoError(t, err)
	assert.Equal(t, cfg.ByteSize(cfg.DefaultHoleSizeLimit), inv.config.Cache.HoleSizeLimit)
}

func TestValidConfig(t *testing.T) {
	inv, err := getInvocation(t, []string{"--config-file=testdata/valid_config.yaml", "fake://obj"})

	require.NoError(t, err)
	c := inv.config
	assert.Equal(t, cfg.ByteSize(1024), c.Cache.HoleSizeLimit)
	assert.Equal(t, cfg.ByteSize(64*1024), c.Cache.RangeSizeLimit)
	assert.True(t, c.Cache.Lazy)
	assert.Equal(t, cfg.DebugLogSeverity, c.Logging.Severity)
	assert.Equal(t, cfg.JSONLogFormat, c.Logging.Format)
	assert.Equal(t, int64(4), c.Fetch.NormalWorkers)
	assert.Equal(t, int64(2), c.Fetch.PriorityWorkers)
	assert.Equal(t, int64(4*cfg.QueuedFetchesPerWorker), c.Fetch.MaxQueuedFetches)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	inv, err := getInvocation(t, []string{"--config-file=testdata/valid_config.yaml", "--lazy=false", "--hole-size-limit=2KiB", "fake://obj"})

	require.NoError(t, err)
	assert.False(t, inv.config.Cache.Lazy)
	assert.Equal(t, cfg.ByteSize(2048), inv.config.Cache.HoleSizeLimit)
	assert.Equal(t, cfg.ByteSize(64*1024), inv.config.Cache.RangeSizeLimit)
}

func TestDefaultFetchWorkers(t *testing.T) {
	inv, err := getInvocation(t, []string{"fake://obj"})

	require.NoError(t, err)
	assert.LessOrEqual(t, int64(cfg.MinNormalWorkers), inv.config.Fetch.NormalWorkers)
	assert.LessOrEqual(t, int64(1), inv.config.Fetch.PriorityWorkers)
}

func TestPositionalArgs(t *testing.T) {
	inv, err := getInvocation(t, []string{"--output=out.bin", "gs://bucket/object", "0:50", "100:50"})

	require.NoError(t, err)
	assert.Equal(t, "gs://bucket/object", inv.objectURL)
	assert.Equal(t, "out.bin", inv.output)
	assert.Equal(t, []rangecache.ByteRange{{Offset: 0, Length: 50}, {Offset: 100, Length: 50}}, inv.ranges)
}

func TestRangesFileIsAppended(t *testing.T) {
	inv, err := getInvocation(t, []string{"--ranges-file=testdata/ranges.yaml", "fake://obj", "0:50"})

	require.NoError(t, err)
	assert.Equal(t, []rangecache.ByteRange{{Offset: 0, Length: 50}, {Offset: 1000, Length: 50}, {Offset: 2000, Length: 10}}, inv.ranges)
}

func TestCobraArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectError bool
	}{
		{
			name:        "No object",
			args:        []string{},
			expectError: true,
		},
		{
			name:        "Object without ranges is okay",
			args:        []string{"fake://obj"},
			expectError: false,
		},
		{
			name:        "Malformed range",
			args:        []string{"fake://obj", "10"},
			expectError: true,
		},
		{
			name:        "Non numeric offset",
			args:        []string{"fake://obj", "a:10"},
			expectError: true,
		},
		{
			name:        "Non numeric length",
			args:        []string{"fake://obj", "10:b"},
			expectError: true,
		},
		{
			name:        "Unknown field in ranges file",
			args:        []string{"--ranges-file=testdata/bad_ranges.yaml", "fake://obj"},
			expectError: true,
		},
		{
			name:        "Missing ranges file",
			args:        []string{"--ranges-file=testdata/nofile.yaml", "fake://obj"},
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := getInvocation(t, tc.args)

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVersionFlag(t *testing.T) {
	cmd, err := NewRootCmd(func(context.Context, *invocation) error { return nil })
	require.NoError(t, err)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Go version")
}
