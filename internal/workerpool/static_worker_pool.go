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
	"fmt"
	"runtime"
	"sync"

	"github.com/googlecloudplatform/rangecache/internal/logger"
)

const (
	priorityQueuePerWorker = 200
	normalQueuePerWorker   = 5000
)

// staticWorkerPool runs a fixed number of goroutines. Priority workers only
// serve urgent tasks so that a reader blocked on data is never queued behind
// read-ahead work; normal workers serve both queues.
type staticWorkerPool struct {
	priorityWorker uint32
	normalWorker   uint32

	priorityCh chan Task
	normalCh   chan Task
	stop       chan bool

	// Workers.
	wg sync.WaitGroup

	// Guards stopped and orders handoff registration against Stop.
	mu      sync.RWMutex
	stopped bool
	// Goroutines waiting to enqueue into a full channel.
	handoffs sync.WaitGroup
}

// NewStaticWorkerPool creates a pool with the given worker counts. Each queue
// holds up to maxQueuedTasks tasks, further capped per worker.
func NewStaticWorkerPool(priorityWorker uint32, normalWorker uint32, maxQueuedTasks int64) (*staticWorkerPool, error) {
	if priorityWorker == 0 || normalWorker == 0 {
		return nil, fmt.Errorf("invalid worker count: priority=%d normal=%d, both must be positive", priorityWorker, normalWorker)
	}
	if maxQueuedTasks <= 0 {
		return nil, fmt.Errorf("invalid maxQueuedTasks: %d", maxQueuedTasks)
	}

	return &staticWorkerPool{
		priorityWorker: priorityWorker,
		normalWorker:   normalWorker,
		priorityCh:     make(chan Task, min(int64(priorityWorker)*priorityQueuePerWorker, maxQueuedTasks)),
		normalCh:       make(chan Task, min(int64(normalWorker)*normalQueuePerWorker, maxQueuedTasks)),
		stop:           make(chan bool),
	}, nil
}

// NewStaticWorkerPoolForCurrentCPU sizes the pool from the CPU count and
// starts it.
func NewStaticWorkerPoolForCurrentCPU(maxQueuedTasks int64) (WorkerPool, error) {
	return newStaticWorkerPoolForCurrentCPU(maxQueuedTasks, runtime.NumCPU)
}

func newStaticWorkerPoolForCurrentCPU(maxQueuedTasks int64, numCPU func() int) (WorkerPool, error) {
	totalWorkers := int64(3 * numCPU())
	if totalWorkers > maxQueuedTasks {
		totalWorkers = maxQueuedTasks
	}
	totalWorkers = max(totalWorkers, 2)
	priorityWorkers := (totalWorkers + 9) / 10
	normalWorkers := totalWorkers - priorityWorkers

	pool, err := NewStaticWorkerPool(uint32(priorityWorkers), uint32(normalWorkers), maxQueuedTasks)
	if err != nil {
		return nil, err
	}
	pool.Start()
	return pool, nil
}

func (swp *staticWorkerPool) Start() {
	for i := uint32(0); i < swp.priorityWorker; i++ {
		swp.wg.Add(1)
		go swp.do(true)
	}
	for i := uint32(0); i < swp.normalWorker; i++ {
		swp.wg.Add(1)
		go swp.do(false)
	}
	logger.Debugf("workerpool: started %d priority and %d normal workers", swp.priorityWorker, swp.normalWorker)
}

// Stop waits for pending handoffs, lets the workers drain both queues and
// then closes the channels.
func (swp *staticWorkerPool) Stop() {
	swp.mu.Lock()
	if swp.stopped {
		swp.mu.Unlock()
		return
	}
	swp.stopped = true
	swp.mu.Unlock()

	swp.handoffs.Wait()
	close(swp.stop)
	swp.wg.Wait()

	close(swp.priorityCh)
	close(swp.normalCh)
}

func (swp *staticWorkerPool) Schedule(urgent bool, task Task) {
	ch := swp.normalCh
	if urgent {
		ch = swp.priorityCh
	}

	swp.mu.RLock()
	defer swp.mu.RUnlock()
	if swp.stopped {
		panic("workerpool: Schedule called after Stop")
	}

	select {
	case ch <- task:
	default:
		// Queue full; hand off without blocking the caller.
		swp.handoffs.Add(1)
		go func() {
			defer swp.handoffs.Done()
			ch <- task
		}()
	}
}

func (swp *staticWorkerPool) do(priority bool) {
	defer swp.wg.Done()

	if priority {
		// This worker serves only the priority channel.
		for {
			select {
			case task := <-swp.priorityCh:
				task.Execute()
			case <-swp.stop:
				drain(swp.priorityCh)
				return
			}
		}
	}

	for {
		// Prefer urgent work when both queues are ready.
		select {
		case task := <-swp.priorityCh:
			task.Execute()
			continue
		default:
		}

		select {
		case task := <-swp.priorityCh:
			task.Execute()
		case task := <-swp.normalCh:
			task.Execute()
		case <-swp.stop:
			drain(swp.priorityCh)
			drain(swp.normalCh)
			return
		}
	}
}

func drain(ch chan Task) {
	for {
		select {
		case task := <-ch:
			task.Execute()
		default:
			return
		}
	}
}
