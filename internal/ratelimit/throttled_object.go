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

package ratelimit

import (
	"context"

	"github.com/googlecloudplatform/rangecache/internal/storage"
)

// NewThrottledObject returns an object that limits the rate at which it calls
// the wrapped object using opThrottle, and limits the bandwidth with which it
// reads from the wrapped object using egressThrottle. Either throttle may be
// nil, meaning unlimited.
func NewThrottledObject(
	opThrottle Throttle,
	egressThrottle Throttle,
	wrapped storage.Object) storage.Object {
	return &throttledObject{
		opThrottle:     opThrottle,
		egressThrottle: egressThrottle,
		wrapped:        wrapped,
	}
}

type throttledObject struct {
	opThrottle     Throttle
	egressThrottle Throttle
	wrapped        storage.Object
}

func (o *throttledObject) Name() string {
	return o.wrapped.Name()
}

func (o *throttledObject) Size(ctx context.Context) (int64, error) {
	return o.wrapped.Size(ctx)
}

func (o *throttledObject) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	// Wait for permission to call through.
	if o.opThrottle != nil {
		if err := o.opThrottle.Wait(ctx, 1); err != nil {
			return nil, err
		}
	}

	// A range may be larger than the egress bucket, so acquire its bytes in
	// capacity-sized pieces.
	if o.egressThrottle != nil {
		remaining := uint64(length)
		capacity := o.egressThrottle.Capacity()
		for remaining > 0 {
			n := min(remaining, capacity)
			if err := o.egressThrottle.Wait(ctx, n); err != nil {
				return nil, err
			}
			remaining -= n
		}
	}

	return o.wrapped.ReadRange(ctx, offset, length)
}

func (o *throttledObject) Close() error {
	return o.wrapped.Close()
}
