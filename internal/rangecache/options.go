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
	"math"

	"github.com/googlecloudplatform/rangecache/internal/util"
)

const (
	// DefaultHoleSizeLimit is the largest gap between two ranges that still
	// gets merged into one read.
	DefaultHoleSizeLimit int64 = 8192

	// DefaultRangeSizeLimit caps the span of a combined range.
	DefaultRangeSizeLimit int64 = 32 * 1024 * 1024
)

// Options controls how ranges are coalesced and when they are fetched.
type Options struct {
	// HoleSizeLimit is the maximum number of unrequested bytes between two
	// ranges for them to be read together.
	HoleSizeLimit int64

	// RangeSizeLimit bounds the span of a range produced by merging. A single
	// registered range larger than this is still read as one unit.
	RangeSizeLimit int64

	// Lazy defers each fetch until the first Read or Wait touching it.
	Lazy bool
}

func DefaultOptions() Options {
	return Options{
		HoleSizeLimit:  DefaultHoleSizeLimit,
		RangeSizeLimit: DefaultRangeSizeLimit,
	}
}

func LazyDefaultOptions() Options {
	o := DefaultOptions()
	o.Lazy = true
	return o
}

func (o Options) Validate() error {
	if o.HoleSizeLimit < 0 {
		return fmt.Errorf("hole size limit must be non-negative, got %d", o.HoleSizeLimit)
	}
	if o.RangeSizeLimit <= o.HoleSizeLimit {
		return fmt.Errorf("range size limit (%d) must be larger than hole size limit (%d)", o.RangeSizeLimit, o.HoleSizeLimit)
	}
	return nil
}

// OptionsFromNetworkMetrics derives coalescing limits from the latency and
// throughput of the backing store.
//
// The hole limit is the number of bytes that could have been transferred
// while waiting for the first byte of a new request: reading a hole that
// size costs the same as issuing another request. The range limit is the
// request size at which transfer time makes up idealUtilization of the
// request's total time, i.e.
//
//	size = ttfb * bandwidth * f / (1 - f)
//
// capped at maxIdealRequestSizeMiB.
func OptionsFromNetworkMetrics(
	ttfbMillis int64,
	bandwidthMiBPerSec int64,
	idealUtilization float64,
	maxIdealRequestSizeMiB int64) (Options, error) {
	if ttfbMillis <= 0 {
		return Options{}, fmt.Errorf("time to first byte must be positive, got %dms", ttfbMillis)
	}
	if bandwidthMiBPerSec <= 0 {
		return Options{}, fmt.Errorf("bandwidth must be positive, got %d MiB/s", bandwidthMiBPerSec)
	}
	if !(idealUtilization > 0 && idealUtilization < 1) {
		return Options{}, fmt.Errorf("ideal bandwidth utilization must be in (0, 1), got %v", idealUtilization)
	}
	if maxIdealRequestSizeMiB <= 0 {
		return Options{}, fmt.Errorf("max ideal request size must be positive, got %d MiB", maxIdealRequestSizeMiB)
	}

	ttfbSecs := float64(ttfbMillis) / 1000
	bandwidth := float64(util.MiBsToBytes(bandwidthMiBPerSec))
	maxRequest := float64(util.MiBsToBytes(maxIdealRequestSizeMiB))

	hole := ttfbSecs * bandwidth
	rng := math.Min(ttfbSecs*idealUtilization/(1-idealUtilization)*bandwidth, maxRequest)

	o := Options{
		HoleSizeLimit:  int64(math.Round(hole)),
		RangeSizeLimit: int64(math.Round(rng)),
	}
	if err := o.Validate(); err != nil {
		return Options{}, fmt.Errorf("network metrics yield unusable limits: %w", err)
	}
	return o, nil
}
