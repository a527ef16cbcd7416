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

package wiring

import (
	"github.com/googlecloudplatform/rangecache/cfg"
	"github.com/googlecloudplatform/rangecache/internal/rangecache"
	"github.com/googlecloudplatform/rangecache/internal/workerpool"
)

// CacheOptions returns the coalescing options in c. When a time to first
// byte is configured the limits are derived from the network metrics and the
// explicit hole and range sizes are ignored.
func CacheOptions(c *cfg.CacheConfig) (rangecache.Options, error) {
	var opts rangecache.Options
	if nm := c.NetworkMetrics; nm.TimeToFirstByteMs != 0 {
		var err error
		opts, err = rangecache.OptionsFromNetworkMetrics(
			nm.TimeToFirstByteMs,
			nm.BandwidthMibPerSec,
			nm.IdealBandwidthUtilization,
			nm.MaxIdealRequestSizeMib)
		if err != nil {
			return rangecache.Options{}, err
		}
	} else {
		opts = rangecache.Options{
			HoleSizeLimit:  c.HoleSizeLimit.Int64(),
			RangeSizeLimit: c.RangeSizeLimit.Int64(),
		}
	}
	opts.Lazy = c.Lazy
	if err := opts.Validate(); err != nil {
		return rangecache.Options{}, err
	}
	return opts, nil
}

// NewWorkerPool returns a started pool sized by c. Without worker counts the
// pool is sized from the CPU count. The caller stops it.
func NewWorkerPool(c *cfg.FetchConfig) (workerpool.WorkerPool, error) {
	maxQueued := c.MaxQueuedFetches
	if maxQueued <= 0 {
		maxQueued = cfg.QueuedFetchesPerWorker
	}
	if c.PriorityWorkers <= 0 || c.NormalWorkers <= 0 {
		return workerpool.NewStaticWorkerPoolForCurrentCPU(maxQueued)
	}
	pool, err := workerpool.NewStaticWorkerPool(uint32(c.PriorityWorkers), uint32(c.NormalWorkers), maxQueued)
	if err != nil {
		return nil, err
	}
	pool.Start()
	return pool, nil
}
