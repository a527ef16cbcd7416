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
	"fmt"
)

// A *NotFoundError value is an error that indicates the object does not exist
// in the backing store.
type NotFoundError struct {
	Err error
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("storage.NotFoundError: %v", nfe.Err)
}

func (nfe *NotFoundError) Unwrap() error {
	return nfe.Err
}

// A *ShortReadError is returned when the store delivered fewer bytes than
// were requested.
type ShortReadError struct {
	Offset int64
	Length int64
	Got    int64
}

func (sre *ShortReadError) Error() string {
	return fmt.Sprintf("storage.ShortReadError: read [%d, %d) returned %d bytes", sre.Offset, sre.Offset+sre.Length, sre.Got)
}
