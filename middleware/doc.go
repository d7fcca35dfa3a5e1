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

/*
Package middleware collects production-ready middlewares for rivaas/dispatch.

This package holds shared test helpers. Each middleware lives in its own
sub-package for better organization and cleaner imports.

# Available Middlewares

Security:
  - security: Sets security headers (HSTS, CSP, X-Frame-Options, etc.)
  - cors: Cross-Origin Resource Sharing configuration
  - basicauth: HTTP Basic Authentication

Observability:
  - accesslog: Structured HTTP access logging with sampling and filtering
  - requestid: Request ID generation and tracking for distributed tracing
  - metrics: Prometheus RED metrics per route template
  - tracing: OpenTelemetry server spans with W3C context propagation

# The Two-Phase Contract

Every middleware implements [rivaas.dev/dispatch.Middleware]: a Before hook
that may short-circuit the request and an After hook that observes or rewrites
the response. Before hooks run in registration order. After hooks run in the
same registration order, and they run for every middleware whose Before hook
executed, including when the response is a short-circuit or a canned 404, 405,
or 500. Middlewares in this package lean on that guarantee: response headers
are stamped in After so that even unrouted requests carry them, and the
observability middlewares record every outcome the dispatcher can produce.

# Usage Examples

Basic setup with common middlewares:

	import (
	    "log/slog"
	    "os"
	    "rivaas.dev/dispatch"
	    "rivaas.dev/dispatch/middleware/accesslog"
	    "rivaas.dev/dispatch/middleware/requestid"
	    "rivaas.dev/dispatch/middleware/security"
	)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	d := dispatch.MustNew()
	d.Use(requestid.New())
	d.Use(accesslog.New(accesslog.WithLogger(logger)))
	d.Use(security.New())

Production setup:

	import (
	    "log/slog"
	    "os"
	    "rivaas.dev/dispatch"
	    "rivaas.dev/dispatch/middleware/accesslog"
	    "rivaas.dev/dispatch/middleware/basicauth"
	    "rivaas.dev/dispatch/middleware/cors"
	    "rivaas.dev/dispatch/middleware/metrics"
	    "rivaas.dev/dispatch/middleware/requestid"
	    "rivaas.dev/dispatch/middleware/security"
	    "rivaas.dev/dispatch/middleware/tracing"
	)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	d := dispatch.MustNew()

	// Observability
	d.Use(requestid.New())
	d.Use(accesslog.New(
	    accesslog.WithLogger(logger),
	    accesslog.WithExcludePaths("/health"),
	))
	d.Use(metrics.New())
	d.Use(tracing.New())

	// Security
	d.Use(security.New())
	d.Use(cors.New(
	    cors.WithAllowedOrigins("https://example.com"),
	))
	d.Use(basicauth.New(
	    basicauth.WithUsers(map[string]string{"admin": os.Getenv("ADMIN_PASSWORD")}),
	))

# Middleware Ordering

Recommended registration order:

 1. requestid         - Generate ID early so every downstream hook sees it
 2. accesslog         - Log all requests including failed ones
 3. metrics/tracing   - Observe every outcome, even short-circuits
 4. security/cors     - Header stamping and preflight handling
 5. basicauth         - Authenticate last, after observability is in place
 6. Application logic - Your handlers

The dispatcher, not a middleware, owns panic isolation: a panicking handler
costs that request a canned 500 and the After hooks still run over it. A
panicking middleware ends the request with a bare 500 and skips the remaining
hooks.

# Context Values

Middlewares expose request-scoped values through package-level accessors
rather than exported context keys:

	requestid.Get(req)   // request ID assigned by requestid
	basicauth.Username(req) // authenticated user set by basicauth
*/
package middleware
