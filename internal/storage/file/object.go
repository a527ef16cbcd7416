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

package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/googlecloudplatform/rangecache/internal/storage"
)

type object struct {
	f    *os.File
	size int64
}

// Open returns a storage.Object backed by a local file. The size is taken
// once at open time.
func Open(path string) (storage.Object, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &storage.NotFoundError{Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &object{f: f, size: fi.Size()}, nil
}

func (o *object) Name() string {
	return o.f.Name()
}

func (o *object) Size(context.Context) (int64, error) {
	return o.size, nil
}

func (o *object) ReadRange(_ context.Context, offset, length int64) ([]byte, error) {
	return storage.ReadFull(io.NewSectionReader(o.f, offset, length), offset, length)
}

func (o *object) Close() error {
	return o.f.Close()
}
