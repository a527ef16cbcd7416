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

package rangecache

import (
	"errors"
	"fmt"
)

// ErrCacheClosed is returned by every operation on a closed cache.
var ErrCacheClosed = errors.New("rangecache: cache is closed")

// A *ContractViolationError is returned when registered ranges are malformed
// or overlap each other. Nothing from the offending call is registered.
type ContractViolationError struct {
	Range ByteRange
	// Conflict is the range Range overlaps, if any. Zero-length otherwise.
	Conflict ByteRange
	Reason   string
}

func (e *ContractViolationError) Error() string {
	if e.Conflict.Length == 0 {
		return fmt.Sprintf("rangecache.ContractViolationError: range %v: %s", e.Range, e.Reason)
	}
	return fmt.Sprintf("rangecache.ContractViolationError: range %v: %s %v", e.Range, e.Reason, e.Conflict)
}

// An *OutOfRangeError is returned when a read asks for bytes that are not
// covered by any registered range.
type OutOfRangeError struct {
	Range ByteRange
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("rangecache.OutOfRangeError: range %v was never registered", e.Range)
}

// A *BackingStoreError records the failed fetch of a combined range. The
// same value is returned to every reader of that range.
type BackingStoreError struct {
	Span ByteRange
	Err  error
}

func (e *BackingStoreError) Error() string {
	return fmt.Sprintf("rangecache.BackingStoreError: fetching %v: %v", e.Span, e.Err)
}

func (e *BackingStoreError) Unwrap() error {
	return e.Err
}
