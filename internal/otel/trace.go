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

// Package otel supports OpenTelemetry tracing and metrics for gocosmos
// portable types.
package otel

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
)

// Common attribute keys.
var (
	MethodKey   = attribute.Key("gocosmos.method")
	PackageKey  = attribute.Key("gocosmos.package")
	ProviderKey = attribute.Key("gocosmos.provider")
	StatusKey   = attribute.Key("gocosmos.status")
	ErrorKey    = attribute.Key("gocosmos.error")
)

// Tracer provides OpenTelemetry tracing and latency metrics for a package.
type Tracer struct {
	Package  string
	Provider string
	Metrics  *MetricSet
}

// ProviderName returns the name of the provider associated with the driver value.
// It is intended to be used to set Tracer.Provider.
// It actually returns the package path of the driver's type.
func ProviderName(driver any) string {
	if driver == nil {
		return ""
	}
	t := reflect.TypeOf(driver)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath()
}

// NewTracer creates a new Tracer for a package and provider. Metric creation
// failures leave Metrics nil; tracing still works.
func NewTracer(pkg, provider string) *Tracer {
	ms, _ := NewMetricSet(pkg)
	return &Tracer{
		Package:  pkg,
		Provider: provider,
		Metrics:  ms,
	}
}

type startKey struct{}

type started struct {
	method string
	at     time.Time
}

// Start creates and starts a new span and returns the updated context and span.
func (t *Tracer) Start(ctx context.Context, methodName string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		PackageKey.String(t.Package),
		MethodKey.String(methodName),
	}
	if t.Provider != "" {
		attrs = append(attrs, ProviderKey.String(t.Provider))
	}
	ctx = context.WithValue(ctx, startKey{}, started{methodName, time.Now()})
	return otel.Tracer(t.Package).Start(ctx, t.Package+"."+methodName, trace.WithAttributes(attrs...))
}

// End completes a span with error information if applicable, and records the
// call's latency.
func (t *Tracer) End(ctx context.Context, span trace.Span, err error) {
	code := cosmoserrors.Code(err)
	if err != nil {
		span.SetAttributes(
			ErrorKey.String(err.Error()),
			StatusKey.String(fmt.Sprint(code)),
		)
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	if s, ok := ctx.Value(startKey{}).(started); ok {
		t.Metrics.Record(ctx, s.method, t.Provider, fmt.Sprint(code), time.Since(s.at))
	}
}
