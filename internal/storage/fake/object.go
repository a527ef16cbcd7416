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

package fake

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/googlecloudplatform/rangecache/internal/storage"
)

// Read records one ReadRange call.
type Read struct {
	Offset int64
	Length int64
}

// Object is an in-memory storage.Object for tests. It counts and records
// reads, and can be told to fail, slow down or hold reads until released.
type Object struct {
	name    string
	content []byte

	mu       sync.Mutex
	reads    []Read
	readErr  error
	failAt   map[int64]error
	latency  time.Duration
	gate     chan struct{}
	started  chan Read
	closed   bool
	inFlight int
	maxInFl  int
}

func NewObject(name string, content []byte) *Object {
	return &Object{
		name:    name,
		content: content,
		failAt:  make(map[int64]error),
	}
}

// Content returns n deterministic bytes that differ at nearby offsets.
func Content(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

// SetReadError makes every subsequent read fail with err.
func (o *Object) SetReadError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.readErr = err
}

// FailReadAt makes reads starting at offset fail with err.
func (o *Object) FailReadAt(offset int64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failAt[offset] = err
}

func (o *Object) SetLatency(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.latency = d
}

// Block holds every subsequent read until Unblock is called.
func (o *Object) Block() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gate == nil {
		o.gate = make(chan struct{})
	}
}

func (o *Object) Unblock() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gate != nil {
		close(o.gate)
		o.gate = nil
	}
}

// NotifyStarted returns a channel that receives every read as it begins.
// The channel is buffered; reads never block on it.
func (o *Object) NotifyStarted(capacity int) <-chan Read {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = make(chan Read, capacity)
	return o.started
}

func (o *Object) ReadCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.reads)
}

// Reads returns the recorded reads sorted by offset.
func (o *Object) Reads() []Read {
	o.mu.Lock()
	defer o.mu.Unlock()
	reads := slices.Clone(o.reads)
	slices.SortFunc(reads, func(a, b Read) int {
		return int(a.Offset - b.Offset)
	})
	return reads
}

// MaxConcurrentReads reports the highest number of reads observed in flight
// at the same time.
func (o *Object) MaxConcurrentReads() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.maxInFl
}

func (o *Object) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

func (o *Object) Name() string {
	return o.name
}

func (o *Object) Size(context.Context) (int64, error) {
	return int64(len(o.content)), nil
}

func (o *Object) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	r := Read{Offset: offset, Length: length}
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, fmt.Errorf("read %s after close", o.name)
	}
	o.reads = append(o.reads, r)
	o.inFlight++
	o.maxInFl = max(o.maxInFl, o.inFlight)
	readErr, gate, latency := o.readErr, o.gate, o.latency
	if err, ok := o.failAt[offset]; ok {
		readErr = err
	}
	if o.started != nil {
		select {
		case o.started <- r:
		default:
		}
	}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight--
		o.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if readErr != nil {
		return nil, readErr
	}

	size := int64(len(o.content))
	if offset < 0 || length < 0 || offset+length > size {
		return nil, &storage.ShortReadError{Offset: offset, Length: length, Got: max(0, min(size-offset, length))}
	}
	return slices.Clone(o.content[offset : offset+length]), nil
}

func (o *Object) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}
