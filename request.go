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

package dispatch

import (
	"context"
	"io"
	"net/http"
)

// Request wraps the transport request handed to the dispatcher. The core
// reads only the method and path for routing; headers, body and context pass
// through to handlers and middleware untouched.
//
// A Request is owned by the goroutine serving it and must not be shared
// across requests. Middleware that needs to carry data between its before
// and after phases threads it through the request context with WithContext.
type Request struct {
	raw *http.Request
}

func newRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// NewTestRequest wraps an *http.Request so handlers and middleware can be
// driven directly in tests, without a dispatcher:
//
//	req := dispatch.NewTestRequest(httptest.NewRequest(http.MethodGet, "/users/7", nil))
func NewTestRequest(r *http.Request) *Request {
	return newRequest(r)
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	return r.raw.Method
}

// Path returns the request path.
func (r *Request) Path() string {
	return r.raw.URL.Path
}

// Header returns the request headers.
func (r *Request) Header() http.Header {
	return r.raw.Header
}

// Body returns the request body reader.
func (r *Request) Body() io.ReadCloser {
	return r.raw.Body
}

// Context returns the request context. It is canceled when the client
// disconnects, so blocking work in handlers should honor it.
func (r *Request) Context() context.Context {
	return r.raw.Context()
}

// WithContext returns a shallow copy of the request carrying ctx. Middleware
// uses this to rewrite the request it passes down the chain.
func (r *Request) WithContext(ctx context.Context) *Request {
	return &Request{raw: r.raw.WithContext(ctx)}
}

// Raw returns the underlying transport request for the rare handler that
// needs more than the core surface.
func (r *Request) Raw() *http.Request {
	return r.raw
}

type routePatternKey struct{}

// RoutePattern returns the route template the request resolved to, or ""
// when the request has not been routed (before phase, 404, 405). After-phase
// middleware uses it as a bounded-cardinality label for metrics and traces.
func RoutePattern(r *Request) string {
	if v, ok := r.Context().Value(routePatternKey{}).(string); ok {
		return v
	}
	return ""
}

func (r *Request) withRoutePattern(template string) *Request {
	return r.WithContext(context.WithValue(r.Context(), routePatternKey{}, template))
}
