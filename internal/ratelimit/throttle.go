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
	"fmt"

	"golang.org/x/time/rate"
)

// Throttle paces fetches against a backing store, either per request or per
// byte. Implementations are safe for concurrent use.
type Throttle interface {
	// Capacity is the largest token count a single Wait may ask for.
	Capacity() uint64

	// Wait takes tokens from the bucket, sleeping until they are available.
	// It fails if tokens exceeds Capacity or ctx ends first.
	Wait(ctx context.Context, tokens uint64) error
}

// tokenBucket is a Throttle backed by a rate.Limiter.
type tokenBucket struct {
	limiter *rate.Limiter
}

// NewThrottle refills at rateHz tokens per second into a bucket holding at
// most capacity tokens.
func NewThrottle(rateHz float64, capacity int) Throttle {
	return &tokenBucket{limiter: rate.NewLimiter(rate.Limit(rateHz), capacity)}
}

func (b *tokenBucket) Capacity() uint64 {
	return uint64(b.limiter.Burst())
}

func (b *tokenBucket) Wait(ctx context.Context, tokens uint64) error {
	if tokens > b.Capacity() {
		return fmt.Errorf("requested %d tokens from a bucket of %d", tokens, b.Capacity())
	}
	return b.limiter.WaitN(ctx, int(tokens))
}
