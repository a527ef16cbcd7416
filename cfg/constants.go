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

const (
	// Logging-level constants

	TRACE   string = "TRACE"
	DEBUG   string = "DEBUG"
	INFO    string = "INFO"
	WARNING string = "WARNING"
	ERROR   string = "ERROR"
	OFF     string = "OFF"
)

const (
	TextLogFormat = "text"
	JSONLogFormat = "json"
)

const (
	// TracingModeStdout prints spans to stdout.
	TracingModeStdout = "stdout"
	// TracingModeGCPTrace exports spans to Cloud Trace.
	TracingModeGCPTrace = "gcptrace"
)

const (
	AnonymousAccessConfigKey  = "gcs-connection.anonymous-access"
	HoleSizeLimitConfigKey    = "cache.hole-size-limit"
	RangeSizeLimitConfigKey   = "cache.range-size-limit"
	NormalWorkersConfigKey    = "fetch.normal-workers"
	PriorityWorkersConfigKey  = "fetch.priority-workers"
	MaxQueuedFetchesConfigKey = "fetch.max-queued-fetches"
)

const (
	// DefaultHoleSizeLimit is the largest gap merged by default.
	DefaultHoleSizeLimit = 8 * 1024
	// DefaultRangeSizeLimit is the largest merged span by default.
	DefaultRangeSizeLimit = 32 * 1024 * 1024
	// MinNormalWorkers is the floor for the derived normal worker count.
	MinNormalWorkers = 16
	// QueuedFetchesPerWorker sizes the fetch queue when it is not configured.
	QueuedFetchesPerWorker = 5000
)
