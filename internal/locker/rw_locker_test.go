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

package locker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRWIsPlainMutexByDefault(t *testing.T) {
	Reset()

	l := NewRW("plain", func() { t.Fatal("check must not run") })

	_, ok := l.(*sync.RWMutex)
	assert.True(t, ok)
	l.Lock()
	l.Unlock()
}

func TestNewRWRunsCheckOnEveryTransition(t *testing.T) {
	Reset()
	EnableInvariantsCheck()
	defer Reset()
	calls := 0

	l := NewRW("checked", func() { calls++ })
	l.Lock()
	l.Unlock()
	l.RLock()
	l.RUnlock()

	assert.Equal(t, 4, calls)
}

func TestNewRWCheckPanicPropagates(t *testing.T) {
	Reset()
	EnableInvariantsCheck()
	defer Reset()

	l := NewRW("broken", func() { panic("invariant violated") })

	assert.Panics(t, func() { l.Lock() })
}

func TestNewRWDebuggerWrapsChecker(t *testing.T) {
	Reset()
	EnableInvariantsCheck()
	EnableDebugMessages()
	defer Reset()
	calls := 0

	l := NewRW("debugged", func() { calls++ })
	d, ok := l.(*rwDebugger)
	l.Lock()
	holder := d.holder
	l.Unlock()

	assert.True(t, ok)
	assert.Contains(t, holder, "TestNewRWDebuggerWrapsChecker")
	assert.Empty(t, d.holder)
	assert.Nil(t, d.timer)
	assert.Equal(t, 2, calls)
}
