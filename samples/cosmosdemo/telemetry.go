// Copyright 2026 The Go Cloud Development Kit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/cosmosdb-samples/gocosmos/internal/otel"
)

// setupTelemetry installs trace and meter providers for the named exporter
// and returns a function that flushes them. "none" installs nothing;
// "stdout" writes to w; "auto" follows the OTEL_TRACES_EXPORTER and
// OTEL_METRICS_EXPORTER environment variables.
func setupTelemetry(ctx context.Context, exporter string, w io.Writer) (func(context.Context), error) {
	var (
		spans   sdktrace.SpanExporter
		metrics sdkmetric.Reader
	)
	switch exporter {
	case "", "none":
		return func(context.Context) {}, nil
	case "stdout":
		se, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		me, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		// A single run is short; the final collection happens on shutdown.
		spans, metrics = se, sdkmetric.NewPeriodicReader(me)
	case "auto":
		se, err := autoexport.NewSpanExporter(ctx)
		if err != nil {
			return nil, err
		}
		mr, err := autoexport.NewMetricReader(ctx)
		if err != nil {
			return nil, err
		}
		spans, metrics = se, mr
	default:
		return nil, fmt.Errorf("unknown -telemetry=%s", exporter)
	}
	p, err := otel.Configure("cosmosdemo", spans, metrics)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) {
		if err := p.Shutdown(ctx); err != nil {
			log.Printf("Failed to flush telemetry: %v", err)
		}
	}, nil
}
