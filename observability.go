// Copyright 2025 The Rivaas Authors
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

package resource

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ResponseInfo exposes response metadata captured by the dispatcher's
// response writer wrapper.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
	Written() bool
}

// Compile-time check that responseWriter implements ResponseInfo.
var _ ResponseInfo = (*responseWriter)(nil)

// ObservabilityRecorder hooks metrics, tracing, or access logging around one
// dispatch pass.
//
// OnRequestStart runs before routing and returns an enriched context (e.g.
// carrying a span) plus an opaque state token. Returning a nil state excludes
// the request: OnRequestEnd is skipped but the enriched context is still
// used. OnRequestEnd runs after dispatch completes, successful or not.
type ObservabilityRecorder interface {
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)
	OnRequestEnd(ctx context.Context, state any, res ResponseInfo, handled bool, err error)
}

const otelScope = "rivaas.dev/resource"

// OTelRecorder is an ObservabilityRecorder backed by OpenTelemetry: one span
// per dispatch, a request counter, and a duration histogram.
//
// Providers are injected; exporter wiring (Prometheus, OTLP, stdout) belongs
// to the application's observability bootstrap, not this package.
type OTelRecorder struct {
	tracer   trace.Tracer
	counter  metric.Int64Counter
	duration metric.Float64Histogram
}

// OTelOption configures NewOTelRecorder.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider sets the tracer provider. Defaults to the global
// otel.GetTracerProvider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(cfg *otelConfig) {
		if tp != nil {
			cfg.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the meter provider. Defaults to the global
// otel.GetMeterProvider.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(cfg *otelConfig) {
		if mp != nil {
			cfg.meterProvider = mp
		}
	}
}

// NewOTelRecorder builds the OpenTelemetry recorder.
//
// Example:
//
//	rec, err := resource.NewOTelRecorder(
//	    resource.WithTracerProvider(tp),
//	    resource.WithMeterProvider(mp),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d := ct.MustCompile(resource.WithObservability(rec))
func NewOTelRecorder(opts ...OTelOption) (*OTelRecorder, error) {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	meter := cfg.meterProvider.Meter(otelScope)

	counter, err := meter.Int64Counter("resource.dispatch.requests",
		metric.WithDescription("Number of requests entering the compiled dispatcher"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("resource.dispatch.duration",
		metric.WithDescription("Dispatch duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &OTelRecorder{
		tracer:   cfg.tracerProvider.Tracer(otelScope),
		counter:  counter,
		duration: duration,
	}, nil
}

// otelState carries the span and start time between start and end hooks.
type otelState struct {
	span   trace.Span
	start  time.Time
	method string
}

// OnRequestStart opens the dispatch span.
func (r *OTelRecorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	ctx, span := r.tracer.Start(ctx, "resource.dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("http.request.method", req.Method)))

	return ctx, &otelState{span: span, start: time.Now(), method: req.Method}
}

// OnRequestEnd records metrics and closes the span.
func (r *OTelRecorder) OnRequestEnd(ctx context.Context, state any, res ResponseInfo, handled bool, err error) {
	st, ok := state.(*otelState)
	if !ok {
		return
	}

	outcome := "handled"
	switch {
	case err != nil:
		outcome = "error"
	case !handled:
		outcome = "miss"
	}

	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", st.method),
		attribute.String("resource.outcome", outcome),
	}
	r.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	r.duration.Record(ctx, time.Since(st.start).Seconds(), metric.WithAttributes(attrs...))

	if handled && res != nil {
		st.span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode()))
	}
	st.span.SetAttributes(attribute.String("resource.outcome", outcome))
	if err != nil {
		st.span.RecordError(err)
		st.span.SetStatus(codes.Error, err.Error())
	}
	st.span.End()
}
