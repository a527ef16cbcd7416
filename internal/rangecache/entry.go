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
	"slices"
	"sync"
)

// entry owns one combined range and the single fetch that fills it.
type entry struct {
	// Immutable after creation.
	span ByteRange

	// GUARDED_BY(ReadRangeCache.mu)
	subranges []ByteRange

	mu sync.Mutex
	// GUARDED_BY(mu)
	state FetchState
	// Set once before done is closed; read-only afterwards.
	data []byte
	err  error

	// Closed exactly once, when state leaves InFlight.
	done chan struct{}
}

func newEntry(cr CombinedRange) *entry {
	return &entry{
		span:      cr.Span,
		subranges: cr.Subranges,
		state:     NotStarted,
		done:      make(chan struct{}),
	}
}

// claim moves the entry from NotStarted to InFlight. Exactly one caller ever
// gets true, and that caller must run the fetch.
func (e *entry) claim() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != NotStarted {
		return false
	}
	e.state = InFlight
	return true
}

// complete publishes the fetch result and wakes every waiter.
func (e *entry) complete(data []byte, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = Failed
		e.err = err
	} else {
		e.state = Ready
		e.data = data
	}
	close(e.done)
}

func (e *entry) fetchState() FetchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// attach records r as covered by e. r must lie within e.span.
func (e *entry) attach(r ByteRange) {
	i, _ := slices.BinarySearchFunc(e.subranges, r, compareOffset)
	e.subranges = slices.Insert(e.subranges, i, r)
}

func (e *entry) snapshot() CombinedRange {
	return CombinedRange{
		Span:      e.span,
		Subranges: slices.Clone(e.subranges),
		State:     e.fetchState(),
	}
}
