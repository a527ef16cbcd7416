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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteRange(t *testing.T) {
	r := ByteRange{Offset: 100, Length: 50}

	assert.Equal(t, int64(150), r.End())
	assert.Equal(t, "100:50", r.String())
	assert.True(t, r.Contains(r))
	assert.True(t, r.Contains(ByteRange{Offset: 110, Length: 10}))
	assert.True(t, r.Contains(ByteRange{Offset: 150, Length: 0}))
	assert.False(t, r.Contains(ByteRange{Offset: 99, Length: 10}))
	assert.False(t, r.Contains(ByteRange{Offset: 140, Length: 11}))
	assert.False(t, r.Contains(ByteRange{Offset: 100, Length: math.MaxInt64}))
	assert.False(t, r.Contains(ByteRange{Offset: 140, Length: math.MaxInt64 - 100}))
	assert.Equal(t, r, ByteRange{Offset: 100, Length: 50})
}

func TestByteRangeOverlaps(t *testing.T) {
	tests := []struct {
		name  string
		a, b  ByteRange
		wants bool
	}{
		{"identical", ByteRange{0, 100}, ByteRange{0, 100}, true},
		{"partial", ByteRange{0, 100}, ByteRange{50, 100}, true},
		{"nested", ByteRange{0, 100}, ByteRange{10, 10}, true},
		{"adjacent", ByteRange{0, 100}, ByteRange{100, 10}, false},
		{"disjoint", ByteRange{0, 100}, ByteRange{200, 10}, false},
		{"empty_inside", ByteRange{0, 100}, ByteRange{50, 0}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wants, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.wants, tc.b.Overlaps(tc.a))
		})
	}
}
