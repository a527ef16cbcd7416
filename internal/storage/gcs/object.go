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

package gcs

import (
	"context"
	"fmt"

	storagev2 "cloud.google.com/go/storage"
	"github.com/googlecloudplatform/rangecache/internal/storage"
)

type object struct {
	handle     *storagev2.ObjectHandle
	name       string
	size       int64
	generation int64
}

// Open stats the named object and returns a storage.Object whose reads are
// pinned to the generation observed here, so later overwrites of the object
// cannot mix bytes from two versions.
func Open(ctx context.Context, client *storagev2.Client, bucket, name, billingProject string) (storage.Object, error) {
	bh := client.Bucket(bucket)
	if billingProject != "" {
		bh = bh.UserProject(billingProject)
	}
	oh := bh.Object(name)
	attrs, err := oh.Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("stat gs://%s/%s: %w", bucket, name, GetGCSError(err))
	}
	return &object{
		handle:     oh.Generation(attrs.Generation),
		name:       fmt.Sprintf("gs://%s/%s", bucket, name),
		size:       attrs.Size,
		generation: attrs.Generation,
	}, nil
}

func (o *object) Name() string {
	return o.name
}

func (o *object) Size(context.Context) (int64, error) {
	return o.size, nil
}

func (o *object) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	if offset+length > o.size {
		return nil, &storage.ShortReadError{Offset: offset, Length: length, Got: max(0, o.size-offset)}
	}
	r, err := o.handle.NewRangeReader(ctx, offset, length)
	if err != nil {
		return nil, fmt.Errorf("NewRangeReader %s#%d: %w", o.name, o.generation, GetGCSError(err))
	}
	defer r.Close()
	return storage.ReadFull(r, offset, length)
}

// The client is shared between objects and owned by the caller.
func (o *object) Close() error {
	return nil
}
