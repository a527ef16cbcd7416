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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummyTask struct {
	executed atomic.Bool
}

func (d *dummyTask) Execute() {
	d.executed.Store(true)
}

// blockingTask parks its worker until release is closed.
type blockingTask struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingTask() *blockingTask {
	return &blockingTask{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingTask) Execute() {
	close(b.started)
	<-b.release
}

func TestNewStaticWorkerPool_Success(t *testing.T) {
	tests := []struct {
		name               string
		priorityWorker     uint32
		normalWorker       uint32
		maxQueuedTasks     int64
		expectedPriorityCh int
		expectedNormalCh   int
	}{
		{
			name:           "worker-based size is smaller",
			priorityWorker: 2,
			normalWorker:   1,
			maxQueuedTasks: 2000,
			// priority: min(2*200, 2000) = 400
			// normal: min(1*5000, 2000) = 2000
			expectedPriorityCh: 400,
			expectedNormalCh:   2000,
		},
		{
			name:           "global cap is smaller",
			priorityWorker: 50,
			normalWorker:   10,
			maxQueuedTasks: 200,
			// priority: min(50*200, 200) = 200
			// normal: min(10*5000, 200) = 200
			expectedPriorityCh: 200,
			expectedNormalCh:   200,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pool, err := NewStaticWorkerPool(tc.priorityWorker, tc.normalWorker, tc.maxQueuedTasks)

			assert.NoError(t, err)
			assert.NotNil(t, pool)
			assert.Equal(t, tc.priorityWorker, pool.priorityWorker)
			assert.Equal(t, tc.normalWorker, pool.normalWorker)
			assert.Equal(t, tc.expectedPriorityCh, cap(pool.priorityCh))
			assert.Equal(t, tc.expectedNormalCh, cap(pool.normalCh))
			pool.Stop() // Clean up
		})
	}
}

func TestNewStaticWorkerPool_Failure(t *testing.T) {
	tests := []struct {
		name           string
		priorityWorker uint32
		normalWorker   uint32
		maxQueuedTasks int64
	}{
		{"zero workers", 0, 0, 10},
		{"zero normal workers", 1, 0, 10},
		{"zero priority workers", 0, 1, 10},
		{"zero queue", 1, 1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pool, err := NewStaticWorkerPool(tc.priorityWorker, tc.normalWorker, tc.maxQueuedTasks)

			assert.Error(t, err)
			assert.Nil(t, pool)
		})
	}
}

func TestStaticWorkerPool_Start(t *testing.T) {
	pool, err := NewStaticWorkerPool(2, 3, 5)
	require.NoError(t, err)
	require.NotNil(t, pool)

	pool.Start()
	defer pool.Stop()

	// Add a task in the channel and later see, that channel will be empty after execution.
	dt := &dummyTask{}
	pool.priorityCh <- dt
	assert.Eventually(t, dt.executed.Load, time.Second, time.Millisecond, "Task was not executed in time.")
	assert.Equal(t, 0, len(pool.priorityCh), "Priority channel should be empty after task execution.")
}

func TestStaticWorkerPool_SchedulePriorityTask(t *testing.T) {
	pool, err := NewStaticWorkerPool(2, 3, 5)
	require.NoError(t, err)
	pool.Start()
	defer pool.Stop()

	dt := &dummyTask{}
	pool.Schedule(true, dt)

	assert.Eventually(t, dt.executed.Load, time.Second, time.Millisecond, "Task was not executed in time.")
}

func TestStaticWorkerPool_ScheduleNormalTask(t *testing.T) {
	pool, err := NewStaticWorkerPool(2, 3, 5)
	require.NoError(t, err)
	pool.Start()
	defer pool.Stop()

	dt := &dummyTask{}
	pool.Schedule(false, dt)

	require.Eventually(t, dt.executed.Load, time.Second, time.Millisecond, "Normal task was not executed in time.")
}

func TestStaticWorkerPool_PriorityWorkerServesUrgentWhileNormalBusy(t *testing.T) {
	pool, err := NewStaticWorkerPool(1, 1, 5)
	require.NoError(t, err)
	pool.Start()
	defer pool.Stop()
	busy := newBlockingTask()
	pool.Schedule(false, busy)
	<-busy.started
	defer close(busy.release)

	dt := &dummyTask{}
	pool.Schedule(true, dt)

	assert.Eventually(t, dt.executed.Load, time.Second, time.Millisecond, "Urgent task waited behind normal work.")
}

func TestStaticWorkerPool_ScheduleNeverBlocksWhenQueueFull(t *testing.T) {
	pool, err := NewStaticWorkerPool(1, 1, 1)
	require.NoError(t, err)
	pool.Start()
	busy := newBlockingTask()
	pool.Schedule(false, busy)
	<-busy.started
	tasks := make([]*dummyTask, 10)

	scheduled := make(chan struct{})
	go func() {
		for i := range tasks {
			tasks[i] = &dummyTask{}
			pool.Schedule(false, tasks[i])
		}
		close(scheduled)
	}()

	select {
	case <-scheduled:
	case <-time.After(time.Second):
		t.Fatal("Schedule blocked on a full queue")
	}
	close(busy.release)
	pool.Stop()
	for _, task := range tasks {
		assert.True(t, task.executed.Load())
	}
}

func TestStaticWorkerPool_HighNumberOfTasks(t *testing.T) {
	pool, err := NewStaticWorkerPool(5, 10, 15)
	require.NoError(t, err)
	pool.Start()
	var wg sync.WaitGroup
	var count atomic.Int64

	for i := range 100 {
		wg.Add(1)
		pool.Schedule(i%2 == 0, taskFunc(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	pool.Stop()

	assert.Equal(t, int64(100), count.Load())
}

type taskFunc func()

func (f taskFunc) Execute() { f() }

func TestStaticWorkerPool_ScheduleAfterStop(t *testing.T) {
	pool, err := NewStaticWorkerPool(2, 3, 5)
	require.NoError(t, err)
	pool.Start()

	pool.Stop()

	assert.Panics(t, func() { pool.Schedule(true, &dummyTask{}) }, "Should panic when scheduling after stop.")
}

func TestStaticWorkerPool_Stop(t *testing.T) {
	pool, err := NewStaticWorkerPool(2, 3, 5)
	require.NoError(t, err)
	pool.Start()

	pool.Stop()
	pool.Stop() // idempotent

	assert.Panics(t, func() { pool.stop <- true }, "stop channel is not closed.")
	assert.Panics(t, func() { pool.normalCh <- &dummyTask{} }, "normalCh channel is not closed.")
	assert.Panics(t, func() { pool.priorityCh <- &dummyTask{} }, "priorityCh channel is not closed.")
}

func Test_newStaticWorkerPoolForCurrentCPU(t *testing.T) {
	testCases := []struct {
		name                    string
		maxQueuedTasks          int64
		mockNumCPU              func() int
		expectedPriorityWorkers uint32
		expectedNormalWorkers   uint32
	}{
		{
			name:           "low CPU count, workers not capped",
			maxQueuedTasks: 100,
			mockNumCPU:     func() int { return 2 },
			// totalWorkers = 3*2=6. priority=ceil(0.1*6)=1, normal=5.
			expectedPriorityWorkers: 1,
			expectedNormalWorkers:   5,
		},
		{
			name:           "high CPU count, workers capped by queue size",
			maxQueuedTasks: 50,
			mockNumCPU:     func() int { return 100 },
			// totalWorkers = 3*100=300, capped to 50. priority=ceil(0.1*50)=5, normal=45.
			expectedPriorityWorkers: 5,
			expectedNormalWorkers:   45,
		},
		{
			name:           "tiny queue still gets one worker of each kind",
			maxQueuedTasks: 1,
			mockNumCPU:     func() int { return 8 },
			// totalWorkers = max(min(24, 1), 2) = 2. priority=1, normal=1.
			expectedPriorityWorkers: 1,
			expectedNormalWorkers:   1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool, err := newStaticWorkerPoolForCurrentCPU(tc.maxQueuedTasks, tc.mockNumCPU)

			require.NoError(t, err)
			require.NotNil(t, pool)
			defer pool.Stop()
			staticPool, ok := pool.(*staticWorkerPool)
			require.True(t, ok, "The returned pool should be of type *staticWorkerPool")
			assert.Equal(t, tc.expectedPriorityWorkers, staticPool.priorityWorker)
			assert.Equal(t, tc.expectedNormalWorkers, staticPool.normalWorker)
			dt := &dummyTask{}
			pool.Schedule(true, dt)
			assert.Eventually(t, dt.executed.Load, time.Second, time.Millisecond, "Task was not executed in time.")
		})
	}
}
