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
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Cache CacheConfig `yaml:"cache"`

	Debug DebugConfig `yaml:"debug"`

	Fetch FetchConfig `yaml:"fetch"`

	GcsConnection GcsConnectionConfig `yaml:"gcs-connection"`

	Logging LoggingConfig `yaml:"logging"`

	Metrics MetricsConfig `yaml:"metrics"`

	Monitoring MonitoringConfig `yaml:"monitoring"`

	S3Connection S3ConnectionConfig `yaml:"s3-connection"`
}

type CacheConfig struct {
	HoleSizeLimit ByteSize `yaml:"hole-size-limit"`

	Lazy bool `yaml:"lazy"`

	NetworkMetrics NetworkMetricsConfig `yaml:"network-metrics"`

	RangeSizeLimit ByteSize `yaml:"range-size-limit"`
}

type NetworkMetricsConfig struct {
	BandwidthMibPerSec int64 `yaml:"bandwidth-mib-per-sec"`

	IdealBandwidthUtilization float64 `yaml:"ideal-bandwidth-utilization"`

	MaxIdealRequestSizeMib int64 `yaml:"max-ideal-request-size-mib"`

	TimeToFirstByteMs int64 `yaml:"time-to-first-byte-ms"`
}

type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`

	LogMutex bool `yaml:"log-mutex"`
}

type FetchConfig struct {
	LimitBytesPerSec float64 `yaml:"limit-bytes-per-sec"`

	LimitOpsPerSec float64 `yaml:"limit-ops-per-sec"`

	MaxQueuedFetches int64 `yaml:"max-queued-fetches"`

	NormalWorkers int64 `yaml:"normal-workers"`

	PriorityWorkers int64 `yaml:"priority-workers"`
}

type GcsConnectionConfig struct {
	AnonymousAccess bool `yaml:"anonymous-access"`

	BillingProject string `yaml:"billing-project"`

	CustomEndpoint string `yaml:"custom-endpoint"`

	KeyFile ResolvedPath `yaml:"key-file"`

	MaxRetrySleep time.Duration `yaml:"max-retry-sleep"`

	RetryMultiplier float64 `yaml:"retry-multiplier"`
}

type LogRotateLoggingConfig struct {
	BackupFileCount int64 `yaml:"backup-file-count"`

	Compress bool `yaml:"compress"`

	MaxFileSizeMb int64 `yaml:"max-file-size-mb"`
}

type LoggingConfig struct {
	FilePath ResolvedPath `yaml:"file-path"`

	Format string `yaml:"format"`

	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`

	Severity LogSeverity `yaml:"severity"`
}

type MetricsConfig struct {
	CloudMetricsExportIntervalSecs int64 `yaml:"cloud-metrics-export-interval-secs"`

	PrometheusPort int64 `yaml:"prometheus-port"`
}

type MonitoringConfig struct {
	ExperimentalTracingMode string `yaml:"experimental-tracing-mode"`

	ExperimentalTracingProjectId string `yaml:"experimental-tracing-project-id"`

	ExperimentalTracingSamplingRatio float64 `yaml:"experimental-tracing-sampling-ratio"`
}

type S3ConnectionConfig struct {
	Endpoint string `yaml:"endpoint"`

	ForcePathStyle bool `yaml:"force-path-style"`

	Region string `yaml:"region"`
}

type flagBinding struct {
	name   string
	key    string
	define func(flagSet *pflag.FlagSet, name string)
}

func stringFlag(def, usage string) func(*pflag.FlagSet, string) {
	return func(flagSet *pflag.FlagSet, name string) { flagSet.StringP(name, "", def, usage) }
}

func boolFlag(def bool, usage string) func(*pflag.FlagSet, string) {
	return func(flagSet *pflag.FlagSet, name string) { flagSet.BoolP(name, "", def, usage) }
}

func intFlag(def int64, usage string) func(*pflag.FlagSet, string) {
	return func(flagSet *pflag.FlagSet, name string) { flagSet.Int64P(name, "", def, usage) }
}

func floatFlag(def float64, usage string) func(*pflag.FlagSet, string) {
	return func(flagSet *pflag.FlagSet, name string) { flagSet.Float64P(name, "", def, usage) }
}

func durationFlag(def time.Duration, usage string) func(*pflag.FlagSet, string) {
	return func(flagSet *pflag.FlagSet, name string) { flagSet.DurationP(name, "", def, usage) }
}

var flagBindings = []flagBinding{
	{"anonymous-access", AnonymousAccessConfigKey, boolFlag(false, "Authentication is disabled for requests to GCS.")},
	{"billing-project", "gcs-connection.billing-project", stringFlag("", "Project to use for billing when accessing a requester pays bucket.")},
	{"bandwidth-mib-per-sec", "cache.network-metrics.bandwidth-mib-per-sec", intFlag(0, "Expected backing store bandwidth in MiB/s. Used with --time-to-first-byte-ms to derive the hole and range size limits.")},
	{"cloud-metrics-export-interval-secs", "metrics.cloud-metrics-export-interval-secs", intFlag(0, "Specifies the interval at which the metrics are uploaded to cloud monitoring. 0 disables the export.")},
	{"custom-endpoint", "gcs-connection.custom-endpoint", stringFlag("", "Specifies an alternative custom endpoint for fetching data. Should be used only for testing.")},
	{"debug_invariants", "debug.exit-on-invariant-violation", boolFlag(false, "Exit when internal invariants are violated.")},
	{"debug_mutex", "debug.log-mutex", boolFlag(false, "Print debug messages when a mutex is held too long.")},
	{"experimental-tracing-mode", "monitoring.experimental-tracing-mode", stringFlag("", "Experimental: specify tracing mode, one of [stdout, gcptrace].")},
	{"experimental-tracing-project-id", "monitoring.experimental-tracing-project-id", stringFlag("", "Experimental: project to export traces to when tracing mode is gcptrace.")},
	{"experimental-tracing-sampling-ratio", "monitoring.experimental-tracing-sampling-ratio", floatFlag(0, "Experimental: fraction of fetches to trace.")},
	{"force-path-style", "s3-connection.force-path-style", boolFlag(false, "Use path-style addressing for S3 requests.")},
	{"hole-size-limit", HoleSizeLimitConfigKey, stringFlag("8KiB", "Largest gap between two requested ranges that may still be fetched together.")},
	{"ideal-bandwidth-utilization", "cache.network-metrics.ideal-bandwidth-utilization", floatFlag(0.9, "Fraction of bandwidth a single request should ideally use, in (0, 1).")},
	{"key-file", "gcs-connection.key-file", stringFlag("", "Absolute path to JSON key file for use with GCS. (The default is none, Google application default credentials used)")},
	{"lazy", "cache.lazy", boolFlag(false, "Defer each combined range fetch until the first read or wait touching it.")},
	{"limit-bytes-per-sec", "fetch.limit-bytes-per-sec", floatFlag(-1, "Bandwidth limit for reading data, measured over a 30-second window. The default (-1) does not impose a limit.")},
	{"limit-ops-per-sec", "fetch.limit-ops-per-sec", floatFlag(-1, "Operations per second limit, measured over a 30-second window. The default (-1) does not impose a limit.")},
	{"log-file", "logging.file-path", stringFlag("", "The file for storing logs. When not provided, plain text logs are printed to stderr.")},
	{"log-format", "logging.format", stringFlag("text", "The format of the log file: 'text' or 'json'.")},
	{"log-rotate-backup-file-count", "logging.log-rotate.backup-file-count", intFlag(10, "The maximum number of backup log files to retain after they have been rotated. 0 retains all.")},
	{"log-rotate-compress", "logging.log-rotate.compress", boolFlag(true, "Controls whether the rotated log files should be compressed using gzip.")},
	{"log-rotate-max-file-size-mb", "logging.log-rotate.max-file-size-mb", intFlag(512, "The maximum size in megabytes that a log file can reach before it is rotated.")},
	{"log-severity", "logging.severity", stringFlag("info", "Specifies the logging severity expressed as one of [trace, debug, info, warning, error, off]")},
	{"max-ideal-request-size-mib", "cache.network-metrics.max-ideal-request-size-mib", intFlag(64, "Upper bound for the derived range size limit in MiB.")},
	{"max-queued-fetches", MaxQueuedFetchesConfigKey, intFlag(0, "Maximum number of fetches waiting for a worker. 0 picks a value from the worker counts.")},
	{"max-retry-sleep", "gcs-connection.max-retry-sleep", durationFlag(30*time.Second, "The maximum duration allowed to sleep in a retry loop with exponential backoff for failed requests to GCS backend.")},
	{"normal-workers", NormalWorkersConfigKey, intFlag(0, "Number of workers serving eager fetches. 0 picks a value from the CPU count.")},
	{"priority-workers", PriorityWorkersConfigKey, intFlag(0, "Number of workers reserved for fetches a reader is already blocked on. 0 picks a value from --normal-workers.")},
	{"prometheus-port", "metrics.prometheus-port", intFlag(0, "Expose Prometheus metrics endpoint on this port and a path of /metrics.")},
	{"range-size-limit", RangeSizeLimitConfigKey, stringFlag("32MiB", "Largest span a combined range may grow to by merging.")},
	{"retry-multiplier", "gcs-connection.retry-multiplier", floatFlag(2, "Param for exponential backoff algorithm, which is used to increase waiting time b/w two consecutive retries.")},
	{"s3-endpoint", "s3-connection.endpoint", stringFlag("", "Custom S3 endpoint, e.g. for MinIO or Localstack.")},
	{"s3-region", "s3-connection.region", stringFlag("", "AWS region of the S3 bucket. Empty uses the SDK default chain.")},
	{"time-to-first-byte-ms", "cache.network-metrics.time-to-first-byte-ms", intFlag(0, "Expected latency before the first byte of a request arrives. When set, the hole and range size limits are derived from the network metrics.")},
}

// BindFlags defines every config flag on flagSet and binds it to its key in v.
func BindFlags(v *viper.Viper, flagSet *pflag.FlagSet) error {
	for _, b := range flagBindings {
		b.define(flagSet, b.name)
		if err := v.BindPFlag(b.key, flagSet.Lookup(b.name)); err != nil {
			return err
		}
	}
	return nil
}
