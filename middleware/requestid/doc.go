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

// Package requestid provides middleware for generating and tracking request IDs
// for distributed tracing and correlation.
//
// The before stage resolves a unique ID for each request and stores it in the
// request context. The after stage stamps the ID on the response headers,
// allowing clients to correlate requests across services in distributed
// systems. Because the after stage also runs over dispatcher-generated
// responses, 404s and panics keep their correlation IDs too.
//
// # Basic Usage
//
//	import "rivaas.dev/dispatch/middleware/requestid"
//
//	d := dispatch.MustNew()
//	d.Use(requestid.New())
//
// # Request ID Generation
//
// By default, UUID v7 is used for request ID generation. UUID v7 is time-ordered
// and lexicographically sortable (RFC 9562), making it ideal for debugging and
// log correlation. Generated IDs are 36-character UUID strings.
//
// The middleware resolves request IDs using:
//
//   - X-Request-ID header: Uses existing header if present (for request tracing)
//   - UUID v7 generation: Time-ordered UUID if no header present (default)
//   - ULID generation: Compact 26-character alternative via [WithULID]
//
// # ID Format Comparison
//
//   - UUID v7 (default): 018f3e9a-1b2c-7def-8000-abcdef123456 (36 chars)
//   - ULID: 01ARZ3NDEKTSV4RRFFQ69G5FAV (26 chars)
//
// # Configuration Options
//
//   - [WithHeader]: Custom header name for request ID (default: X-Request-ID)
//   - [WithULID]: Use ULID instead of UUID v7 for shorter IDs
//   - [WithGenerator]: Custom function for generating request IDs
//   - [WithAllowClientID]: Control whether to accept client-provided IDs
//
// # Using ULID
//
// For shorter request IDs, use ULID:
//
//	d.Use(requestid.New(requestid.WithULID()))
//
// # Accessing Request ID
//
// The request ID is stored in the request context and can be retrieved:
//
//	import "rivaas.dev/dispatch/middleware/requestid"
//
//	func handler(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
//	    id := requestid.Get(req)
//	    // Use id for logging, tracing, etc.
//	    return dispatch.NewResponse()
//	}
//
// # Integration with Logging
//
// Request IDs are commonly used with structured logging for request correlation:
//
//	logger.Info("processing request",
//	    "request_id", requestid.Get(req),
//	    "method", req.Method(),
//	    "path", req.Path(),
//	)
package requestid
