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


package common

import (
	"context"
	"errors"
)

// ShutdownFn flushes and stops one telemetry provider.
type ShutdownFn func(ctx context.Context) error

// JoinShutdownFunc returns a ShutdownFn running every non-nil fn, last one
// first, so providers stop in the reverse of the order they were set up.
// All fns run even if some fail; their errors are joined.
func JoinShutdownFunc(shutdownFns ...ShutdownFn) ShutdownFn {
	return func(ctx context.Context) error {
		var errs []error
		for i := len(shutdownFns) - 1; i >= 0; i-- {
			if fn := shutdownFns[i]; fn != nil {
				errs = append(errs, fn(ctx))
			}
		}
		return errors.Join(errs...)
	}
}
