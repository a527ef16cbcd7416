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
	"cmp"
	"slices"
)

type FetchState int

const (
	NotStarted FetchState = iota
	InFlight
	Ready
	Failed
)

func (s FetchState) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case InFlight:
		return "InFlight"
	case Ready:
		return "Ready"
	case Failed:
		return "Failed"
	}
	return "Unknown"
}

func (s FetchState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CombinedRange is one physical read covering one or more registered ranges.
type CombinedRange struct {
	Span      ByteRange   `yaml:"span"`
	Subranges []ByteRange `yaml:"subranges"`
	State     FetchState  `yaml:"state"`
}

func compareOffset(a, b ByteRange) int {
	return cmp.Compare(a.Offset, b.Offset)
}

// CoalesceRanges merges ranges into combined ranges. Ranges are visited in
// offset order; each is folded into the current combined range when the gap
// before it is at most holeSizeLimit and the result spans at most
// rangeSizeLimit bytes. Zero-length ranges are skipped. The ranges must not
// overlap each other.
func CoalesceRanges(ranges []ByteRange, holeSizeLimit, rangeSizeLimit int64) []CombinedRange {
	sorted := make([]ByteRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Length != 0 {
			sorted = append(sorted, r)
		}
	}
	slices.SortFunc(sorted, compareOffset)
	return coalesce(sorted, holeSizeLimit, rangeSizeLimit, nil)
}

// coalesce runs the merge walk over ranges sorted by offset. canJoin, when
// set, can veto a merge that the limits would otherwise allow.
func coalesce(sorted []ByteRange, holeSizeLimit, rangeSizeLimit int64, canJoin func(cur, next ByteRange) bool) []CombinedRange {
	if len(sorted) == 0 {
		return nil
	}

	var out []CombinedRange
	cur := CombinedRange{Span: sorted[0], Subranges: []ByteRange{sorted[0]}}
	for _, next := range sorted[1:] {
		gap := next.Offset - cur.Span.End()
		newLen := next.End() - cur.Span.Offset
		if gap <= holeSizeLimit && newLen <= rangeSizeLimit && (canJoin == nil || canJoin(cur.Span, next)) {
			cur.Span.Length = newLen
			cur.Subranges = append(cur.Subranges, next)
			continue
		}
		out = append(out, cur)
		cur = CombinedRange{Span: next, Subranges: []ByteRange{next}}
	}
	return append(out, cur)
}
