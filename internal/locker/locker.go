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

// Package locker provides mutexes that can check invariants on every lock
// transition and report locks held for too long.
package locker

import "sync/atomic"

var (
	gEnableInvariantsCheck atomic.Bool
	gEnableDebugMessages   atomic.Bool
)

// EnableInvariantsCheck makes lockers created afterwards run their check
// function after acquiring and before releasing the lock.
func EnableInvariantsCheck() {
	gEnableInvariantsCheck.Store(true)
}

// EnableDebugMessages makes lockers created afterwards log when a write lock
// is held for longer than the deadlock threshold.
func EnableDebugMessages() {
	gEnableDebugMessages.Store(true)
}

// Reset restores the defaults. Used by tests.
func Reset() {
	gEnableInvariantsCheck.Store(false)
	gEnableDebugMessages.Store(false)
}
