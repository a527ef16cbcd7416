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

package cfg

import (
	"net/url"
	"runtime"
)

// isSet interface is abstraction over the IsSet() method of viper, specially
// added to keep rationalize method simple.
type isSet interface {
	IsSet(string) bool
}

func decodeURL(u string) (string, error) {
	decodedURL, err := url.Parse(u)
	if err != nil {
		return "", err
	}
	return decodedURL.String(), nil
}

func resolveFetchWorkers(c *FetchConfig) {
	if c.NormalWorkers == 0 {
		c.NormalWorkers = max(MinNormalWorkers, int64(2*runtime.NumCPU()))
	}
	if c.PriorityWorkers == 0 {
		c.PriorityWorkers = max(1, c.NormalWorkers/10)
	}
	if c.MaxQueuedFetches == 0 {
		c.MaxQueuedFetches = c.NormalWorkers * QueuedFetchesPerWorker
	}
}

// Rationalize updates the config fields based on the values of other fields.
func Rationalize(v isSet, c *Config) error {
	var err error
	if c.GcsConnection.CustomEndpoint, err = decodeURL(c.GcsConnection.CustomEndpoint); err != nil {
		return err
	}
	if c.S3Connection.Endpoint, err = decodeURL(c.S3Connection.Endpoint); err != nil {
		return err
	}

	if c.Logging.Format == "" {
		c.Logging.Format = TextLogFormat
	}
	if c.Logging.Severity == "" {
		c.Logging.Severity = InfoLogSeverity
	}

	// An explicit anonymous-access flag wins over a key file.
	if v.IsSet(AnonymousAccessConfigKey) && c.GcsConnection.AnonymousAccess {
		c.GcsConnection.KeyFile = ""
	}

	resolveFetchWorkers(&c.Fetch)
	return nil
}
