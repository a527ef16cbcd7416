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

// Package wiring turns an object URL and the parsed configuration into a
// ready to use backing store.
package wiring

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/googlecloudplatform/rangecache/cfg"
	"github.com/googlecloudplatform/rangecache/common"
	"github.com/googlecloudplatform/rangecache/internal/monitor"
	"github.com/googlecloudplatform/rangecache/internal/ratelimit"
	"github.com/googlecloudplatform/rangecache/internal/storage"
	"github.com/googlecloudplatform/rangecache/internal/storage/fake"
	"github.com/googlecloudplatform/rangecache/internal/storage/file"
	"github.com/googlecloudplatform/rangecache/internal/storage/gcs"
	"github.com/googlecloudplatform/rangecache/internal/storage/s3"
	"github.com/googlecloudplatform/rangecache/metrics"
	"github.com/googlecloudplatform/rangecache/tracing"
)

// OpenObject returns a special in-memory object for URLs with this scheme,
// e.g. fake://name?size=4096. Its content is fake.Content(size).
const FakeScheme = "fake"

const (
	defaultFakeSize = 1 << 20
	maxFakeSize     = 1 << 30
)

// Window over which the fetch rate limits are measured.
const throttleWindow = 30 * time.Second

// OpenObject opens the object named by rawURL and wraps it with the rate
// limits and the monitoring configured in c. Supported forms are
// gs://bucket/object, s3://bucket/key, file:///path, a plain local path and
// fake://name.
func OpenObject(ctx context.Context, rawURL string, c *cfg.Config, metricHandle metrics.MetricHandle, traceHandle tracing.TraceHandle) (storage.Object, error) {
	obj, err := openRaw(ctx, rawURL, c)
	if err != nil {
		return nil, err
	}

	opThrottle, egressThrottle, err := throttles(&c.Fetch)
	if err != nil {
		obj.Close()
		return nil, err
	}
	if opThrottle != nil || egressThrottle != nil {
		obj = ratelimit.NewThrottledObject(opThrottle, egressThrottle, obj)
	}
	return monitor.NewMonitoringObject(obj, metricHandle, traceHandle), nil
}

func openRaw(ctx context.Context, rawURL string, c *cfg.Config) (storage.Object, error) {
	if rawURL == "" {
		return nil, errors.New("empty object URL")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse object URL %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "":
		return file.Open(rawURL)
	case "file":
		return file.Open(u.Path)
	case "gs":
		bucket, name, err := splitBucketURL(u)
		if err != nil {
			return nil, err
		}
		return openGCS(ctx, bucket, name, &c.GcsConnection)
	case "s3":
		bucket, key, err := splitBucketURL(u)
		if err != nil {
			return nil, err
		}
		return openS3(ctx, bucket, key, &c.S3Connection)
	case FakeScheme:
		return openFake(u)
	default:
		return nil, fmt.Errorf("unsupported object URL scheme %q", u.Scheme)
	}
}

func splitBucketURL(u *url.URL) (bucket, name string, err error) {
	bucket = u.Host
	name = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || name == "" {
		return "", "", fmt.Errorf("object URL %q must name both a bucket and an object", u.String())
	}
	return bucket, name, nil
}

func userAgent() string {
	return fmt.Sprintf("rangecache/%s", strings.Fields(common.GetVersion())[0])
}

func openGCS(ctx context.Context, bucket, name string, c *cfg.GcsConnectionConfig) (storage.Object, error) {
	clientConfig := gcs.ClientConfig{
		KeyFile:         string(c.KeyFile),
		AnonymousAccess: c.AnonymousAccess,
		UserAgent:       userAgent(),
		MaxRetrySleep:   c.MaxRetrySleep,
		RetryMultiplier: c.RetryMultiplier,
	}
	if c.CustomEndpoint != "" {
		endpoint, err := url.Parse(c.CustomEndpoint)
		if err != nil {
			return nil, fmt.Errorf("parse custom endpoint: %w", err)
		}
		clientConfig.CustomEndpoint = endpoint
	}

	client, err := gcs.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, err
	}
	obj, err := gcs.Open(ctx, client, bucket, name, c.BillingProject)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &ownedClientObject{Object: obj, closeClient: client.Close}, nil
}

func openS3(ctx context.Context, bucket, key string, c *cfg.S3ConnectionConfig) (storage.Object, error) {
	client, err := s3.NewClient(ctx, s3.ClientConfig{
		Region:         c.Region,
		Endpoint:       c.Endpoint,
		ForcePathStyle: c.ForcePathStyle,
	})
	if err != nil {
		return nil, err
	}
	return s3.Open(ctx, client, bucket, key)
}

func openFake(u *url.URL) (storage.Object, error) {
	size := int64(defaultFakeSize)
	if s := u.Query().Get("size"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid fake object size %q", s)
		}
		if n > maxFakeSize {
			return nil, fmt.Errorf("fake object size %d exceeds the maximum of %d bytes", n, maxFakeSize)
		}
		size = n
	}
	name := u.Host + u.Path
	return fake.NewObject(name, fake.Content(int(size))), nil
}

func throttles(c *cfg.FetchConfig) (opThrottle, egressThrottle ratelimit.Throttle, err error) {
	if c.LimitOpsPerSec > 0 {
		if opThrottle, err = ratelimit.NewThrottleForRate(c.LimitOpsPerSec, throttleWindow); err != nil {
			return nil, nil, fmt.Errorf("op rate limit: %w", err)
		}
	}
	if c.LimitBytesPerSec > 0 {
		if egressThrottle, err = ratelimit.NewThrottleForRate(c.LimitBytesPerSec, throttleWindow); err != nil {
			return nil, nil, fmt.Errorf("egress rate limit: %w", err)
		}
	}
	return opThrottle, egressThrottle, nil
}

// ownedClientObject closes the client it was opened with.
type ownedClientObject struct {
	storage.Object
	closeClient func() error
}

func (o *ownedClientObject) Close() error {
	return errors.Join(o.Object.Close(), o.closeClient())
}
