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


package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	cloudmetric "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	"github.com/googlecloudplatform/rangecache/cfg"
	"github.com/googlecloudplatform/rangecache/common"
	"github.com/googlecloudplatform/rangecache/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	serviceName       = "rangecache"
	cloudMetricPrefix = "custom.googleapis.com/" + serviceName + "/"
)

// SetupOTelMetricExporters makes the global meter provider export cache and
// store metrics to Prometheus and/or Cloud Monitoring, as c.Metrics asks.
// An exporter that fails to start is logged and skipped. The returned
// function stops the provider before the exporters.
func SetupOTelMetricExporters(ctx context.Context, c *cfg.Config) common.ShutdownFn {
	var options []metric.Option
	var shutdownFns []common.ShutdownFn
	add := func(opts []metric.Option, shutdown common.ShutdownFn) {
		options = append(options, opts...)
		shutdownFns = append(shutdownFns, shutdown)
	}
	add(setupPrometheus(c.Metrics.PrometheusPort))
	add(setupCloudMonitoring(c.Metrics.CloudMetricsExportIntervalSecs))

	if res, err := getResource(ctx); err != nil {
		logger.Errorf("Metrics will be exported without resource attributes: %v", err)
	} else {
		options = append(options, metric.WithResource(res))
	}

	provider := metric.NewMeterProvider(options...)
	otel.SetMeterProvider(provider)
	return common.JoinShutdownFunc(append(shutdownFns, provider.Shutdown)...)
}

func setupCloudMonitoring(secs int64) ([]metric.Option, common.ShutdownFn) {
	if secs <= 0 {
		return nil, nil
	}
	exporter, err := cloudmetric.New(
		cloudmetric.WithMetricDescriptorTypeFormatter(metricFormatter),
		// Keep the PID so that concurrent processes show up as separate series.
		cloudmetric.WithFilteredResourceAttributes(func(kv attribute.KeyValue) bool {
			return kv.Key == semconv.ProcessPIDKey || cloudmetric.DefaultResourceAttributesFilter(kv)
		}),
	)
	if err != nil {
		logger.Errorf("Cloud Monitoring export disabled: %v", err)
		return nil, nil
	}

	reader := metric.NewPeriodicReader(
		&permissionAwareExporter{Exporter: exporter},
		metric.WithInterval(time.Duration(secs)*time.Second))
	return []metric.Option{metric.WithReader(reader)}, reader.Shutdown
}

// metricFormatter maps "cache/fetch_latency" to
// "custom.googleapis.com/rangecache/cache/fetch_latency".
func metricFormatter(m metricdata.Metrics) string {
	return cloudMetricPrefix + strings.ReplaceAll(m.Name, ".", "/")
}

func setupPrometheus(port int64) ([]metric.Option, common.ShutdownFn) {
	if port <= 0 {
		return nil, nil
	}
	exporter, err := prometheus.New(
		prometheus.WithoutUnits(),
		prometheus.WithoutCounterSuffixes(),
		prometheus.WithoutScopeInfo(),
		prometheus.WithoutTargetInfo())
	if err != nil {
		logger.Errorf("Prometheus export disabled: %v", err)
		return nil, nil
	}
	addr, shutdown, err := servePrometheus(fmt.Sprintf(":%d", port))
	if err != nil {
		logger.Errorf("Prometheus export disabled: %v", err)
		return nil, nil
	}
	logger.Infof("Serving metrics at http://%s/metrics", addr)
	return []metric.Option{metric.WithReader(exporter)}, shutdown
}

// servePrometheus serves the default Prometheus registry at /metrics on addr
// and returns the bound address. Binding happens before it returns.
func servePrometheus(addr string) (net.Addr, common.ShutdownFn, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	go func() {
		if err := server.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Prometheus server stopped: %v", err)
		}
	}()
	return lis.Addr(), func(ctx context.Context) error {
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("stopping Prometheus server: %w", err)
		}
		return nil
	}, nil
}

func getResource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithDetectors(gcp.NewDetector()),
		resource.WithTelemetrySDK(),
		resource.WithProcessPID(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(common.GetVersion()),
		),
	)
}
