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

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// AsyncLogger queues log lines and writes them to the underlying writer
// from a single goroutine so that logging never waits on disk I/O. Lines
// are dropped when the queue is full.
type AsyncLogger struct {
	w       io.WriteCloser
	lines   chan []byte
	wg      sync.WaitGroup
	closeMu sync.RWMutex
	closed  bool
}

// NewAsyncLogger starts the writer goroutine.
func NewAsyncLogger(w io.WriteCloser, bufferSize int) *AsyncLogger {
	a := &AsyncLogger{
		w:     w,
		lines: make(chan []byte, bufferSize),
	}
	a.wg.Add(1)
	go a.loop()
	return a
}

func (a *AsyncLogger) loop() {
	defer a.wg.Done()
	for line := range a.lines {
		if _, err := a.w.Write(line); err != nil {
			fmt.Fprintf(os.Stderr, "asynclogger: write failed: %v\n", err)
		}
	}
}

// Write queues a copy of p. It never blocks.
func (a *AsyncLogger) Write(p []byte) (int, error) {
	a.closeMu.RLock()
	defer a.closeMu.RUnlock()
	if a.closed {
		return 0, os.ErrClosed
	}

	line := make([]byte, len(p))
	copy(line, p)
	select {
	case a.lines <- line:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close drains the queue and closes the underlying writer.
func (a *AsyncLogger) Close() error {
	a.closeMu.Lock()
	if a.closed {
		a.closeMu.Unlock()
		return nil
	}
	a.closed = true
	close(a.lines)
	a.closeMu.Unlock()

	a.wg.Wait()
	return a.w.Close()
}
