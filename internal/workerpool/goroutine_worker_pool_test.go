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

package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoRoutineWorkerPool_StopWaitsForTasks(t *testing.T) {
	pool := NewGoRoutineWorkerPool()
	pool.Start()
	var count atomic.Int64
	release := make(chan struct{})

	for i := 0; i < 20; i++ {
		pool.Schedule(i%3 == 0, taskFunc(func() {
			<-release
			count.Add(1)
		}))
	}
	close(release)
	pool.Stop()

	assert.Equal(t, int64(20), count.Load())
}
