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
	"fmt"
)

// ByteRange is a contiguous span of bytes in a backing store.
type ByteRange struct {
	Offset int64 `yaml:"offset"`
	Length int64 `yaml:"length"`
}

// End returns the offset one past the last byte of r.
func (r ByteRange) End() int64 {
	return r.Offset + r.Length
}

// Contains reports whether other lies entirely within r. Both ranges must
// have non-negative fields; other's end may overflow int64.
func (r ByteRange) Contains(other ByteRange) bool {
	return r.Offset <= other.Offset &&
		other.Length <= r.Length &&
		other.Offset-r.Offset <= r.Length-other.Length
}

// Overlaps reports whether r and other share at least one byte.
func (r ByteRange) Overlaps(other ByteRange) bool {
	return r.Offset < other.End() && other.Offset < r.End()
}

// String formats r as OFFSET:LENGTH.
func (r ByteRange) String() string {
	return fmt.Sprintf("%d:%d", r.Offset, r.Length)
}
