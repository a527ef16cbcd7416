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

func IsMetricsEnabled(c *MetricsConfig) bool {
	return c.PrometheusPort > 0 || c.CloudMetricsExportIntervalSecs > 0
}

func IsTracingEnabled(c *MonitoringConfig) bool {
	return c.ExperimentalTracingMode != "" && c.ExperimentalTracingSamplingRatio > 0
}

// IsNetworkMetricsEnabled reports whether the coalescing limits are derived
// from network metrics rather than set directly.
func IsNetworkMetricsEnabled(c *CacheConfig) bool {
	return c.NetworkMetrics.TimeToFirstByteMs != 0
}
