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
	"net/url"
	"time"

	storagev2 "cloud.google.com/go/storage"
	"github.com/googleapis/gax-go/v2"
	"github.com/googlecloudplatform/rangecache/internal/storage/storageutil"
	"google.golang.org/api/option"
)

type ClientConfig struct {
	CustomEndpoint  *url.URL
	KeyFile         string
	AnonymousAccess bool
	UserAgent       string
	MaxRetrySleep   time.Duration
	RetryMultiplier float64
}

func clientOptions(config ClientConfig) []option.ClientOption {
	var opts []option.ClientOption
	if config.UserAgent != "" {
		opts = append(opts, option.WithUserAgent(config.UserAgent))
	}
	if config.CustomEndpoint != nil {
		opts = append(opts, option.WithEndpoint(config.CustomEndpoint.String()))
	}
	switch {
	case config.AnonymousAccess:
		opts = append(opts, option.WithoutAuthentication())
	case config.KeyFile != "":
		opts = append(opts, option.WithCredentialsFile(config.KeyFile))
	}
	return opts
}

// NewClient returns a go storage client configured with the retry policy used
// for every read: all operations are retried with exponential backoff while
// storageutil.ShouldRetry says so.
func NewClient(ctx context.Context, config ClientConfig) (*storagev2.Client, error) {
	sc, err := storagev2.NewClient(ctx, clientOptions(config)...)
	if err != nil {
		return nil, fmt.Errorf("go storage client creation failed: %w", err)
	}

	// Reads are idempotent, so RetryAlways is safe here.
	sc.SetRetry(
		storagev2.WithBackoff(gax.Backoff{
			Max:        config.MaxRetrySleep,
			Multiplier: config.RetryMultiplier,
		}),
		storagev2.WithPolicy(storagev2.RetryAlways),
		storagev2.WithErrorFunc(storageutil.ShouldRetry))
	return sc, nil
}
