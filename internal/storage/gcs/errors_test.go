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
	"fmt"
	"net/http"
	"testing"

	storagev2 "cloud.google.com/go/storage"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/googlecloudplatform/rangecache/internal/storage"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGetGCSError(t *testing.T) {
	notFoundAPIErr, ok := apierror.FromError(status.Error(codes.NotFound, codes.NotFound.String()))
	assert.True(t, ok)
	otherAPIErr, ok := apierror.FromError(status.Error(codes.Internal, codes.Internal.String()))
	assert.True(t, ok)
	grpcNotFoundErr := status.Error(codes.NotFound, "not found")

	testCases := []struct {
		name        string
		inputErr    error
		expectedErr error
	}{
		{
			name:        "nil_error",
			inputErr:    nil,
			expectedErr: nil,
		},
		{
			name:        "googleapi.Error_NotFound",
			inputErr:    &googleapi.Error{Code: http.StatusNotFound},
			expectedErr: &storage.NotFoundError{Err: &googleapi.Error{Code: http.StatusNotFound}},
		},
		{
			name:        "googleapi.Error_other_code",
			inputErr:    &googleapi.Error{Code: http.StatusBadRequest},
			expectedErr: &googleapi.Error{Code: http.StatusBadRequest},
		},
		{
			name:        "wrapped_googleapi.Error_NotFound",
			inputErr:    fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusNotFound}),
			expectedErr: &storage.NotFoundError{Err: fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusNotFound})},
		},
		{
			name:        "grpc_status_NotFound",
			inputErr:    grpcNotFoundErr,
			expectedErr: &storage.NotFoundError{Err: grpcNotFoundErr},
		},
		{
			name:        "grpc_status_other_code",
			inputErr:    status.Error(codes.Internal, "internal error"),
			expectedErr: status.Error(codes.Internal, "internal error"),
		},
		{
			name:        "other_error",
			inputErr:    errors.New("some error"),
			expectedErr: errors.New("some error"),
		},
		{
			name:        "storage_object_not_exist",
			inputErr:    storagev2.ErrObjectNotExist,
			expectedErr: &storage.NotFoundError{Err: storagev2.ErrObjectNotExist},
		},
		{
			name:        "notfound_apierror",
			inputErr:    notFoundAPIErr,
			expectedErr: &storage.NotFoundError{Err: notFoundAPIErr},
		},
		{
			name:        "other_apierror",
			inputErr:    otherAPIErr,
			expectedErr: otherAPIErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := GetGCSError(tc.inputErr)
			assert.Equal(t, tc.expectedErr, got)
		})
	}
}
