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

package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/dispatch"
)

// tracerName identifies this instrumentation library on spans.
const tracerName = "rivaas.dev/dispatch/middleware/tracing"

// DefaultServiceName is used when no service name is configured.
const DefaultServiceName = "dispatch"

// spanKey carries the span started in Before so After ends exactly that
// span, never one inherited from the surrounding context.
type spanKey struct{}

// Option defines functional options for tracing middleware configuration.
type Option func(*config)

// config holds the configuration for the tracing middleware.
type config struct {
	// tracerProvider supplies the tracer; defaults to the global provider
	tracerProvider trace.TracerProvider

	// propagator extracts inbound trace context from request headers
	propagator propagation.TextMapPropagator

	// serviceName is recorded on every span
	serviceName string

	// excludePaths are exact paths that are never traced
	excludePaths map[string]bool

	// excludePrefixes are path prefixes that are never traced
	excludePrefixes []string
}

// defaultConfig returns the default configuration for tracing middleware.
func defaultConfig() *config {
	return &config{
		serviceName:  DefaultServiceName,
		excludePaths: make(map[string]bool),
	}
}

// WithTracerProvider sets the provider spans are created from.
// Defaults to the global OpenTelemetry provider.
//
// Example:
//
//	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	tracing.New(tracing.WithTracerProvider(provider))
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.tracerProvider = provider
	}
}

// WithPropagator sets the propagator used to extract inbound trace context.
// Defaults to the global OpenTelemetry propagator.
//
// Example:
//
//	tracing.New(tracing.WithPropagator(propagation.TraceContext{}))
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(cfg *config) {
		cfg.propagator = propagator
	}
}

// WithServiceName sets the service.name attribute recorded on every span.
// Default: "dispatch"
//
// Example:
//
//	tracing.New(tracing.WithServiceName("checkout-api"))
func WithServiceName(name string) Option {
	return func(cfg *config) {
		cfg.serviceName = name
	}
}

// WithExcludePaths excludes exact paths from tracing.
// Useful for health checks and metrics endpoints.
//
// Example:
//
//	tracing.New(tracing.WithExcludePaths("/health", "/metrics"))
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, path := range paths {
			cfg.excludePaths[path] = true
		}
	}
}

// WithExcludePrefixes excludes paths with the given prefixes from tracing.
//
// Example:
//
//	tracing.New(tracing.WithExcludePrefixes("/debug/", "/internal/"))
func WithExcludePrefixes(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.excludePrefixes = append(cfg.excludePrefixes, prefixes...)
	}
}

// middleware opens a server span per request in Before and closes it in
// After, once the final response is known.
type middleware struct {
	cfg    *config
	tracer trace.Tracer
}

// New returns middleware that traces requests with OpenTelemetry.
//
// The before stage extracts inbound W3C trace context from the request
// headers, starts a server span named "METHOD path", and threads it through
// the request context for handlers and later middleware. The after stage
// records the status code, renames the span to the matched route template
// to keep names low-cardinality, and ends it. Responses with status 400 or
// above mark the span as an error.
//
// Basic usage:
//
//	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	d := dispatch.MustNew()
//	d.Use(tracing.New(
//	    tracing.WithTracerProvider(provider),
//	    tracing.WithServiceName("checkout-api"),
//	))
func New(opts ...Option) dispatch.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	if cfg.propagator == nil {
		cfg.propagator = otel.GetTextMapPropagator()
	}

	return &middleware{
		cfg:    cfg,
		tracer: cfg.tracerProvider.Tracer(tracerName),
	}
}

// Before starts the request span.
func (m *middleware) Before(req *dispatch.Request, state *dispatch.State) dispatch.Outcome {
	if m.excluded(req.Path()) {
		return dispatch.Continue(req)
	}

	ctx := m.cfg.propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header()))
	ctx, span := m.tracer.Start(ctx, req.Method()+" "+req.Path(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", req.Method()),
			attribute.String("http.url", req.Raw().URL.String()),
			attribute.String("http.host", req.Raw().Host),
			attribute.String("http.user_agent", req.Raw().UserAgent()),
			attribute.String("service.name", m.cfg.serviceName),
		),
	)

	ctx = context.WithValue(ctx, spanKey{}, span)
	return dispatch.Continue(req.WithContext(ctx))
}

// After records the outcome and ends the span.
func (m *middleware) After(req *dispatch.Request, res *dispatch.Response, state *dispatch.State) *dispatch.Response {
	span, ok := req.Context().Value(spanKey{}).(trace.Span)
	if !ok {
		return res
	}

	status := res.Status()
	span.SetAttributes(attribute.Int("http.status_code", status))

	// The route template is only known after resolution; renaming here keeps
	// span names bounded no matter how many paths a route matches.
	if route := dispatch.RoutePattern(req); route != "" {
		span.SetAttributes(attribute.String("http.route", route))
		span.SetName(req.Method() + " " + route)
	}

	if status >= 400 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
	return res
}

// excluded reports whether the path is filtered out of tracing.
func (m *middleware) excluded(path string) bool {
	if m.cfg.excludePaths[path] {
		return true
	}
	for _, prefix := range m.cfg.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
