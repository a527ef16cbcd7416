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

package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/googlecloudplatform/rangecache/internal/storage"
)

type object struct {
	client *s3.Client
	bucket string
	key    string
	size   int64
	etag   string
}

// Open issues a HeadObject for the key and returns a storage.Object. Range
// reads carry If-Match with the ETag seen here, so a concurrent overwrite
// fails the read instead of mixing versions.
func Open(ctx context.Context, client *s3.Client, bucket, key string) (storage.Object, error) {
	out, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 head object s3://%s/%s: %w", bucket, key, convertError(err))
	}
	return &object{
		client: client,
		bucket: bucket,
		key:    key,
		size:   aws.ToInt64(out.ContentLength),
		etag:   aws.ToString(out.ETag),
	}, nil
}

func (o *object) Name() string {
	return fmt.Sprintf("s3://%s/%s", o.bucket, o.key)
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

	input := &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)),
	}
	if o.etag != "" {
		input.IfMatch = aws.String(o.etag)
	}
	resp, err := o.client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("s3 get object range %s: %w", o.Name(), convertError(err))
	}
	defer resp.Body.Close()
	return storage.ReadFull(resp.Body, offset, length)
}

func (o *object) Close() error {
	return nil
}

// convertError maps S3 "missing key" responses onto storage.NotFoundError.
// GetObject reports NoSuchKey while HeadObject, having no body, reports
// NotFound.
func convertError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return &storage.NotFoundError{Err: err}
		}
	}
	return err
}
