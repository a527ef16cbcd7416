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
	"fmt"
	"math"
	"time"
)

// ChooseLimiterCapacity picks a token bucket capacity for limiting to rateHz
// averaged over window. A full bucket lets a burst through at the start of
// any window, so the capacity is kept at a small fraction of the events the
// window allows. With the factor of 50 used here the observed rate in any
// window stays within 2% of rateHz.
func ChooseLimiterCapacity(
	rateHz float64,
	window time.Duration) (capacity uint64, err error) {
	if !(rateHz > 0 && rateHz < math.MaxFloat64) {
		err = fmt.Errorf("Illegal rate: %f", rateHz)
		return
	}

	if window <= 0 {
		err = fmt.Errorf("Illegal window: %v", window)
		return
	}

	const factor = 50
	capacityFloat := math.Floor(window.Seconds() * rateHz / factor)
	if !(capacityFloat > 0 && capacityFloat < float64(math.MaxUint32)) {
		err = fmt.Errorf(
			"Can't use a token bucket to limit to %f Hz over a window of %v (result is a capacity of %f)",
			rateHz,
			window,
			capacityFloat)
		return
	}

	capacity = uint64(capacityFloat)
	return
}

// NewThrottleForRate returns a Throttle limiting to rateHz over window.
func NewThrottleForRate(rateHz float64, window time.Duration) (Throttle, error) {
	capacity, err := ChooseLimiterCapacity(rateHz, window)
	if err != nil {
		return nil, fmt.Errorf("choosing capacity: %w", err)
	}
	return NewThrottle(rateHz, int(capacity)), nil
}
