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

// Package tracing provides OpenTelemetry distributed tracing middleware.
//
// Each request gets a server span opened in the before stage and ended in
// the after stage. Register the tracer early so the span covers the befores
// of later middleware, the handler, and the afters of everything registered
// before it. Inbound W3C trace context is extracted from the request
// headers, so spans join traces started by upstream services. Handlers
// reach the span through their request context:
//
//	span := trace.SpanFromContext(req.Context())
//	span.AddEvent("cache miss")
//
// # Basic Usage
//
//	import (
//	    sdktrace "go.opentelemetry.io/otel/sdk/trace"
//	    "rivaas.dev/dispatch/middleware/tracing"
//	)
//
//	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	d := dispatch.MustNew()
//	d.Use(tracing.New(
//	    tracing.WithTracerProvider(provider),
//	    tracing.WithServiceName("checkout-api"),
//	))
//
// # Span Naming
//
// Spans start as "METHOD path" and are renamed to "METHOD route-template"
// once the route is known, e.g. "GET /users/<id:([0-9]+)>". Requests that
// match no route keep the raw path name and record the 404 as an error.
//
// # Configuration Options
//
//   - [WithTracerProvider]: Span source (default: global provider)
//   - [WithPropagator]: Inbound context extraction (default: global propagator)
//   - [WithServiceName]: service.name attribute on every span
//   - [WithExcludePaths]: Exact paths to skip
//   - [WithExcludePrefixes]: Path prefixes to skip
//
// # Recorded Attributes
//
//   - http.method, http.url, http.host, http.user_agent: request details
//   - http.route: matched route template
//   - http.status_code: final response status
//   - service.name: configured service name
//
// Responses with status 400 or above set the span status to error with an
// "HTTP <code>" description.
package tracing
