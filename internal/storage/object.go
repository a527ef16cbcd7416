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

package storage

import (
	"context"
)

// Object is a read-only, randomly addressable blob in a backing store.
type Object interface {
	// Name identifies the object in log lines and errors.
	Name() string

	// Size returns the length of the object in bytes.
	Size(ctx context.Context) (int64, error)

	// ReadRange returns exactly length bytes starting at offset. The returned
	// slice is owned by the caller. Reads that run past the end of the object
	// fail with *ShortReadError.
	ReadRange(ctx context.Context, offset, length int64) ([]byte, error)

	Close() error
}
