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
	"testing"

	"github.com/googlecloudplatform/rangecache/internal/rangecache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteRange(t *testing.T) {
	r, err := parseByteRange("100:50")

	require.NoError(t, err)
	assert.Equal(t, rangecache.ByteRange{Offset: 100, Length: 50}, r)
}

func TestParseByteRangeKeepsNegativeValuesForTheCache(t *testing.T) {
	r, err := parseByteRange("-1:5")

	require.NoError(t, err)
	assert.Equal(t, rangecache.ByteRange{Offset: -1, Length: 5}, r)
}

func TestParseByteRangeErrors(t *testing.T) {
	for _, s := range []string{"", "10", "a:1", "1:b", "1:2:3"} {
		_, err := parseByteRange(s)

		assert.Error(t, err, "input %q", s)
	}
}

func TestReadRangesFile(t *testing.T) {
	ranges, err := readRangesFile("testdata/ranges.yaml")

	require.NoError(t, err)
	assert.Equal(t, []rangecache.ByteRange{{Offset: 1000, Length: 50}, {Offset: 2000, Length: 10}}, ranges)
}

func TestReadEmptyRangesFile(t *testing.T) {
	ranges, err := readRangesFile("testdata/empty_file.yaml")

	require.NoError(t, err)
	assert.Empty(t, ranges)
}
