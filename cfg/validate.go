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
	"fmt"
	"net/url"
)

func isValidLogRotateConfig(config *LogRotateLoggingConfig) error {
	if config.MaxFileSizeMb <= 0 {
		return fmt.Errorf("max-file-size-mb should be atleast 1")
	}
	if config.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

func isValidLogFormat(format string) error {
	if format != "" && format != TextLogFormat && format != JSONLogFormat {
		return fmt.Errorf("log format must be one of [%s, %s], got %q", TextLogFormat, JSONLogFormat, format)
	}
	return nil
}

func isValidURL(u string) error {
	_, err := url.Parse(u)
	return err
}

func isValidCacheConfig(c *CacheConfig) error {
	if c.HoleSizeLimit < 0 {
		return fmt.Errorf("hole-size-limit can't be negative")
	}
	if c.RangeSizeLimit <= c.HoleSizeLimit {
		return fmt.Errorf("range-size-limit (%d) must be greater than hole-size-limit (%d)", c.RangeSizeLimit, c.HoleSizeLimit)
	}
	return isValidNetworkMetricsConfig(&c.NetworkMetrics)
}

func isValidNetworkMetricsConfig(c *NetworkMetricsConfig) error {
	if c.TimeToFirstByteMs == 0 {
		return nil
	}
	if c.TimeToFirstByteMs < 0 {
		return fmt.Errorf("time-to-first-byte-ms can't be negative")
	}
	if c.BandwidthMibPerSec <= 0 {
		return fmt.Errorf("bandwidth-mib-per-sec must be positive when time-to-first-byte-ms is set")
	}
	if c.IdealBandwidthUtilization <= 0 || c.IdealBandwidthUtilization >= 1 {
		return fmt.Errorf("ideal-bandwidth-utilization must be in (0, 1), got %v", c.IdealBandwidthUtilization)
	}
	if c.MaxIdealRequestSizeMib <= 0 {
		return fmt.Errorf("max-ideal-request-size-mib must be positive")
	}
	return nil
}

func isValidFetchConfig(c *FetchConfig) error {
	if c.NormalWorkers < 0 || c.PriorityWorkers < 0 {
		return fmt.Errorf("worker counts can't be negative")
	}
	if c.MaxQueuedFetches < 0 {
		return fmt.Errorf("max-queued-fetches can't be negative")
	}
	return nil
}

func isValidMonitoringConfig(c *MonitoringConfig) error {
	switch c.ExperimentalTracingMode {
	case "", TracingModeStdout, TracingModeGCPTrace:
	default:
		return fmt.Errorf("unsupported tracing mode %q", c.ExperimentalTracingMode)
	}
	if c.ExperimentalTracingSamplingRatio < 0 || c.ExperimentalTracingSamplingRatio > 1 {
		return fmt.Errorf("experimental-tracing-sampling-ratio must be in [0, 1]")
	}
	return nil
}

func isValidMetricsConfig(c *MetricsConfig) error {
	if c.PrometheusPort < 0 || c.PrometheusPort > 65535 {
		return fmt.Errorf("prometheus-port must be in [0, 65535]")
	}
	if c.CloudMetricsExportIntervalSecs < 0 {
		return fmt.Errorf("cloud-metrics-export-interval-secs can't be negative")
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(config *Config) error {
	var err error

	if err = isValidLogRotateConfig(&config.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}

	if err = isValidLogFormat(config.Logging.Format); err != nil {
		return fmt.Errorf("error parsing logging config: %w", err)
	}

	if err = isValidURL(config.GcsConnection.CustomEndpoint); err != nil {
		return fmt.Errorf("error parsing custom-endpoint config: %w", err)
	}

	if err = isValidURL(config.S3Connection.Endpoint); err != nil {
		return fmt.Errorf("error parsing s3 endpoint config: %w", err)
	}

	if err = isValidCacheConfig(&config.Cache); err != nil {
		return fmt.Errorf("error parsing cache config: %w", err)
	}

	if err = isValidFetchConfig(&config.Fetch); err != nil {
		return fmt.Errorf("error parsing fetch config: %w", err)
	}

	if err = isValidMetricsConfig(&config.Metrics); err != nil {
		return fmt.Errorf("error parsing metrics config: %w", err)
	}

	if err = isValidMonitoringConfig(&config.Monitoring); err != nil {
		return fmt.Errorf("error parsing monitoring config: %w", err)
	}

	return nil
}
