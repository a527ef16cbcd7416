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

import "sync"

// goRoutineWorkerPool runs every task on its own goroutine. Urgency is
// ignored since nothing is ever queued.
type goRoutineWorkerPool struct {
	wg sync.WaitGroup
}

// NewGoRoutineWorkerPool returns a ready to use pool; Start is a no-op.
func NewGoRoutineWorkerPool() WorkerPool {
	return &goRoutineWorkerPool{}
}

func (p *goRoutineWorkerPool) Start() {}

func (p *goRoutineWorkerPool) Stop() {
	p.wg.Wait()
}

func (p *goRoutineWorkerPool) Schedule(_ bool, task Task) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		task.Execute()
	}()
}
