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

package fake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/googlecloudplatform/rangecache/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRangeReturnsCopy(t *testing.T) {
	obj := NewObject("obj", Content(100))

	data, err := obj.ReadRange(context.Background(), 10, 5)
	require.NoError(t, err)
	data[0] = 0xff

	again, err := obj.ReadRange(context.Background(), 10, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 11, 12, 13, 14}, again)
	assert.Equal(t, []Read{{10, 5}, {10, 5}}, obj.Reads())
	assert.Equal(t, 2, obj.ReadCount())
}

func TestReadRangePastEnd(t *testing.T) {
	obj := NewObject("obj", Content(10))

	_, err := obj.ReadRange(context.Background(), 8, 5)

	var sre *storage.ShortReadError
	require.ErrorAs(t, err, &sre)
	assert.Equal(t, int64(2), sre.Got)
}

func TestInjectedErrors(t *testing.T) {
	obj := NewObject("obj", Content(100))
	boom := errors.New("boom")
	obj.FailReadAt(50, boom)

	_, err := obj.ReadRange(context.Background(), 50, 5)
	assert.ErrorIs(t, err, boom)
	_, err = obj.ReadRange(context.Background(), 0, 5)
	assert.NoError(t, err)

	obj.SetReadError(boom)
	_, err = obj.ReadRange(context.Background(), 0, 5)
	assert.ErrorIs(t, err, boom)
}

func TestBlockHoldsReadsUntilUnblock(t *testing.T) {
	obj := NewObject("obj", Content(100))
	started := obj.NotifyStarted(4)
	obj.Block()
	var wg sync.WaitGroup
	wg.Add(2)
	for _, off := range []int64{0, 50} {
		go func() {
			defer wg.Done()
			_, err := obj.ReadRange(context.Background(), off, 10)
			assert.NoError(t, err)
		}()
	}

	<-started
	<-started
	assert.Equal(t, 2, obj.MaxConcurrentReads())
	obj.Unblock()
	wg.Wait()
	assert.Equal(t, 2, obj.ReadCount())
}

func TestBlockedReadHonoursContext(t *testing.T) {
	obj := NewObject("obj", Content(100))
	obj.Block()
	defer obj.Unblock()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := obj.ReadRange(ctx, 0, 10)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLatencyDelaysReadsAndHonoursContext(t *testing.T) {
	obj := NewObject("obj", Content(100))
	obj.SetLatency(20 * time.Millisecond)

	start := time.Now()
	_, err := obj.ReadRange(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = obj.ReadRange(ctx, 0, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadAfterClose(t *testing.T) {
	obj := NewObject("obj", Content(10))
	require.NoError(t, obj.Close())

	_, err := obj.ReadRange(context.Background(), 0, 1)

	assert.Error(t, err)
	assert.True(t, obj.Closed())
}
