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
	"errors"
	"net/http"

	storagev2 "cloud.google.com/go/storage"
	"github.com/googlecloudplatform/rangecache/internal/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetGCSError converts an error returned by go-sdk into a store-agnostic
// error where one exists.
func GetGCSError(err error) error {
	if err == nil {
		return nil
	}

	// Http client error.
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusNotFound {
		return &storage.NotFoundError{Err: err}
	}

	// RPC error.
	if rpcErr, ok := status.FromError(err); ok && rpcErr.Code() == codes.NotFound {
		return &storage.NotFoundError{Err: err}
	}

	// If storage object doesn't exist, go-sdk returns as ErrObjectNotExist.
	if errors.Is(err, storagev2.ErrObjectNotExist) {
		return &storage.NotFoundError{Err: err}
	}

	return err
}
