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

// Package metrics provides middleware that records Prometheus metrics for
// every request the dispatcher handles.
//
// Metrics are labeled with the method, the matched route template, and the
// response status. The route template ("/users/<id:([0-9]+)>") is used
// instead of the raw path so one route produces one label value no matter
// how many distinct paths hit it; requests that match no route are labeled
// "unmatched". Observation happens in the after stage, so 404s, 405s, and
// panic recoveries are counted like any other response.
//
// # Collectors
//
//   - http_requests_total: counter of requests by method, route, status
//   - http_errors_total: counter of responses with status >= 400
//   - http_request_duration_seconds: duration histogram
//   - http_response_size_bytes: response body size histogram
//   - http_requests_active: gauge of in-flight requests
//
// # Basic Usage
//
//	import (
//	    "github.com/prometheus/client_golang/prometheus/promhttp"
//	    "rivaas.dev/dispatch/middleware/metrics"
//	)
//
//	d := dispatch.MustNew()
//	d.Use(metrics.New())
//	go http.ListenAndServe(":9090", promhttp.Handler()) //nolint:errcheck
//
// # Configuration Options
//
//   - [WithRegisterer]: Target registry (default prometheus.DefaultRegisterer)
//   - [WithNamespace]: Prefix for all metric names
//   - [WithDurationBuckets]: Duration histogram boundaries
//   - [WithSizeBuckets]: Response size histogram boundaries
//
// # Registration
//
// New registers its collectors immediately and panics on conflict, the same
// way duplicate route registration panics: both are build-time defects. Use
// [WithRegisterer] with a fresh registry when constructing more than one
// instrumented dispatcher in a process.
package metrics
