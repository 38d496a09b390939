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

package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricSet contains the standard metrics recorded for each portable method.
type MetricSet struct {
	Latency        metric.Float64Histogram
	CompletedCalls metric.Int64Counter
}

// NewMetricSet creates the standard set of metrics for a package, using the
// global meter provider.
func NewMetricSet(pkg string) (*MetricSet, error) {
	meter := otel.GetMeterProvider().Meter(pkg)

	latency, err := meter.Float64Histogram(
		pkg+".latency",
		metric.WithDescription("Latency of method call in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create latency metric: %w", err)
	}

	completedCalls, err := meter.Int64Counter(
		pkg+".completed_calls",
		metric.WithDescription("Count of method calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create completed_calls metric: %w", err)
	}

	return &MetricSet{
		Latency:        latency,
		CompletedCalls: completedCalls,
	}, nil
}

// Record records the latency and a completed call for one method invocation.
func (m *MetricSet) Record(ctx context.Context, method, provider, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{MethodKey.String(method), StatusKey.String(status)}
	if provider != "" {
		attrs = append(attrs, ProviderKey.String(provider))
	}
	opt := metric.WithAttributes(attrs...)
	m.Latency.Record(ctx, float64(d.Nanoseconds())/1e6, opt)
	m.CompletedCalls.Add(ctx, 1, opt)
}
