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

// Package cors provides middleware for handling Cross-Origin Resource Sharing (CORS),
// allowing configurable access control for cross-origin requests.
//
// This middleware implements the CORS specification to enable secure cross-origin
// requests from web browsers. Preflight OPTIONS requests are answered in the
// before stage and never reach route handlers; the response headers for actual
// requests are injected in the after stage, so 404s and other dispatcher-generated
// responses carry them as well.
//
// # Basic Usage
//
//	import "rivaas.dev/dispatch/middleware/cors"
//
//	d := dispatch.MustNew()
//	d.Use(cors.New(
//	    cors.WithAllowedOrigins("https://example.com"),
//	    cors.WithAllowedMethods("GET", "POST", "PUT", "DELETE"),
//	    cors.WithAllowedHeaders("Content-Type", "Authorization"),
//	))
//
// # Configuration Options
//
//   - [WithAllowedOrigins]: List of allowed origins
//   - [WithAllowAllOrigins]: Allow any origin (public APIs only)
//   - [WithAllowOriginFunc]: Dynamic origin validation
//   - [WithAllowedMethods]: HTTP methods allowed in cross-origin requests
//   - [WithAllowedHeaders]: Request headers allowed in cross-origin requests
//   - [WithExposedHeaders]: Response headers exposed to the client
//   - [WithAllowCredentials]: Whether to allow credentials (cookies, auth headers)
//   - [WithMaxAge]: Cache duration for preflight responses
//
// # Security Considerations
//
// When using [WithAllowCredentials], the wildcard origin is never sent; the
// middleware echoes the validated request origin instead and adds a
// Vary: Origin header for caches.
//
// Requests without an Origin header are not cross-origin and pass through
// untouched.
package cors
