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

// Package accesslog provides middleware for structured HTTP access logging
// with level escalation, sampling, and path exclusion.
//
// The middleware emits one slog record per request once the final response
// is known, including responses the dispatcher generated itself (404, 405,
// panic recoveries). Log levels follow the outcome: info for successes,
// warn for client errors and slow requests, error for server errors.
//
// # Basic Usage
//
//	import (
//	    "log/slog"
//	    "os"
//	    "rivaas.dev/dispatch/middleware/accesslog"
//	)
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	d := dispatch.MustNew()
//	d.Use(accesslog.New(
//	    accesslog.WithLogger(logger),
//	))
//
// # Configuration Options
//
//   - [WithLogger]: Structured logger (slog.Logger) for output
//   - [WithExcludePaths]: Exact paths to exclude (e.g., /health, /metrics)
//   - [WithExcludePrefixes]: Path prefixes to exclude (e.g., /debug)
//   - [WithSlowThreshold]: Duration above which a request logs as slow
//   - [WithErrorsOnly]: Log only failures and slow requests
//   - [WithSampleRate]: Fraction of routine successes to log
//   - [WithRequestIDFunc]: Correlation ID source for deterministic sampling
//
// # Log Fields
//
// Each record carries:
//
//   - method, path, status: request and response basics
//   - duration_ms: processing time in milliseconds
//   - bytes_sent: response body size
//   - client_ip: peer address without port
//   - user_agent, host, proto: client details
//   - route: the matched route template, empty when nothing matched
//   - slow: present and true when the slow threshold was exceeded
//   - request_id: present when a request ID function is configured
//
// # Sampling
//
// High-traffic services can log a fraction of successes with
// [WithSampleRate]. Failures and slow requests always log. When
// [WithRequestIDFunc] is configured, the sampling decision hashes the
// request ID, so all log statements for one request land or drop together.
package accesslog
