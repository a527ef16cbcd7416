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
	"errors"
	"fmt"
	"io"
)

// ReadFull reads exactly length bytes from r, which is expected to be
// positioned at offset. Readers may return data in smaller chunks than asked
// for, so this keeps reading until the buffer is full. Running out of data
// early yields a *ShortReadError.
func ReadFull(r io.Reader, offset, length int64) ([]byte, error) {
	buf := make([]byte, length)
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return nil, &ShortReadError{Offset: offset, Length: length, Got: int64(n)}
	}
	if err != nil {
		return nil, fmt.Errorf("read [%d, %d): %w", offset, offset+length, err)
	}
	return buf, nil
}
