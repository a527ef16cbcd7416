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

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/googlecloudplatform/rangecache/cfg"
	"github.com/googlecloudplatform/rangecache/common"
	"github.com/googlecloudplatform/rangecache/internal/locker"
	"github.com/googlecloudplatform/rangecache/internal/logger"
	"github.com/googlecloudplatform/rangecache/internal/monitor"
	"github.com/googlecloudplatform/rangecache/internal/rangecache"
	"github.com/googlecloudplatform/rangecache/internal/wiring"
	"github.com/googlecloudplatform/rangecache/metrics"
	"github.com/googlecloudplatform/rangecache/tracing"
)

const (
	metricWorkers    = 3
	metricBufferSize = 1024
	shutdownTimeout  = 10 * time.Second
)

// setupTelemetry installs the configured exporters and returns the handles
// the cache reports to, plus a function flushing and stopping the exporters.
func setupTelemetry(ctx context.Context, c *cfg.Config) (metrics.MetricHandle, tracing.TraceHandle, common.ShutdownFn) {
	var metricHandle metrics.MetricHandle = metrics.NewNoopMetrics()
	var metricShutdownFn common.ShutdownFn
	if cfg.IsMetricsEnabled(&c.Metrics) {
		metricShutdownFn = monitor.SetupOTelMetricExporters(ctx, c)
		if mh, err := metrics.NewOTelMetrics(ctx, metricWorkers, metricBufferSize); err != nil {
			logger.Errorf("Failed to create OTel metric handle, metrics are disabled: %v", err)
		} else {
			metricHandle = mh
		}
	}

	traceHandle := tracing.NewNoopTracer()
	if cfg.IsTracingEnabled(&c.Monitoring) {
		traceHandle = tracing.NewOTelTracer()
	}
	tracingShutdownFn := monitor.SetupTracing(ctx, c)

	return metricHandle, traceHandle, common.JoinShutdownFunc(metricShutdownFn, tracingShutdownFn)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// runCache is the default action of the root command.
func runCache(ctx context.Context, inv *invocation) (err error) {
	c := inv.config
	logger.SetLogFormat(c.Logging.Format)
	if err = logger.InitLogFile(c.Logging); err != nil {
		return fmt.Errorf("init log file: %w", err)
	}
	defer logger.Close()
	if c.Debug.ExitOnInvariantViolation {
		locker.EnableInvariantsCheck()
	}
	if c.Debug.LogMutex {
		locker.EnableDebugMessages()
	}

	logger.Infof("Start rangecache/%s for %s with %d ranges", common.GetVersion(), inv.objectURL, len(inv.ranges))
	logger.Info("rangecache config", "config", c)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	metricHandle, traceHandle, shutdownFn := setupTelemetry(ctx, c)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if shutdownErr := shutdownFn(shutdownCtx); shutdownErr != nil {
			logger.Warnf("Telemetry shutdown: %v", shutdownErr)
		}
	}()

	out, err := openOutput(inv.output)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	return readRanges(ctx, inv, metricHandle, traceHandle, out)
}

// readRanges opens the object, reads inv.ranges through a cache and writes
// them to out in the order given.
func readRanges(ctx context.Context, inv *invocation, metricHandle metrics.MetricHandle, traceHandle tracing.TraceHandle, out io.Writer) error {
	c := inv.config
	obj, err := wiring.OpenObject(ctx, inv.objectURL, c, metricHandle, traceHandle)
	if err != nil {
		return err
	}
	defer obj.Close()

	opts, err := wiring.CacheOptions(&c.Cache)
	if err != nil {
		return err
	}
	pool, err := wiring.NewWorkerPool(&c.Fetch)
	if err != nil {
		return err
	}
	defer pool.Stop()

	cache, err := rangecache.NewWithConfig(obj, rangecache.Config{
		Options:      opts,
		WorkerPool:   pool,
		MetricHandle: metricHandle,
		TraceHandle:  traceHandle,
	})
	if err != nil {
		return err
	}
	defer cache.Close()

	start := time.Now()
	if err = cache.Cache(ctx, inv.ranges); err != nil {
		return err
	}
	if err = cache.WaitFor(ctx, inv.ranges); err != nil {
		return err
	}

	var total int64
	for _, r := range inv.ranges {
		data, err := cache.Read(ctx, r)
		if err != nil {
			return err
		}
		if _, err = out.Write(data); err != nil {
			return fmt.Errorf("writing %v: %w", r, err)
		}
		total += r.Length
	}

	entries := cache.Entries()
	var fetched int64
	for _, e := range entries {
		fetched += e.Span.Length
	}
	logger.Infof("Read %d ranges (%s) from %s with %d requests fetching %s in %v",
		len(inv.ranges), humanize.IBytes(uint64(total)), obj.Name(),
		len(entries), humanize.IBytes(uint64(fetched)), time.Since(start))
	return nil
}
