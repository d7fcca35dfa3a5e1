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

// Package basicauth provides HTTP Basic Authentication middleware with
// configurable user validation and realm support.
//
// This middleware implements HTTP Basic Authentication (RFC 7617) for
// protecting routes with username/password authentication. Credentials are
// checked in the before stage: requests that fail never reach the route
// handler and are answered with 401 Unauthorized plus a WWW-Authenticate
// challenge. The authenticated username is stored in the request context
// for use by handlers.
//
// # Basic Usage
//
//	import "rivaas.dev/dispatch/middleware/basicauth"
//
//	d := dispatch.MustNew()
//	d.Use(basicauth.New(
//	    basicauth.WithValidator(func(username, password string) bool {
//	        return username == "admin" && password == "secret"
//	    }),
//	    basicauth.WithRealm("Restricted Area"),
//	))
//
// # Configuration Options
//
//   - [WithUsers]: Static username/password pairs, compared in constant time
//   - [WithValidator]: Function to validate credentials (overrides WithUsers)
//   - [WithRealm]: Authentication realm name (displayed in browser prompt)
//   - [WithSkipPaths]: Paths to skip authentication (e.g., /health, /public)
//   - [WithUnauthorizedHandler]: Custom 401 response builder
//
// # Accessing Authenticated User
//
// The authenticated username is stored in the request context and can be
// retrieved using the Username function:
//
//	import "rivaas.dev/dispatch/middleware/basicauth"
//
//	func handler(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
//	    username := basicauth.Username(req)
//	    // Use username...
//	    return dispatch.NewResponse()
//	}
//
// # Security Considerations
//
// Basic Authentication sends credentials in base64-encoded form with each request.
// Always use HTTPS in production to protect credentials in transit. Consider
// using more secure authentication methods (OAuth2, JWT) for production APIs.
package basicauth
