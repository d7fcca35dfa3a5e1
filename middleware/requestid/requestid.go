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

package requestid

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"rivaas.dev/dispatch"
)

type contextKey struct{}

// Option defines functional options for requestid middleware configuration.
type Option func(*config)

// config holds the configuration for the requestid middleware.
type config struct {
	// headerName is the name of the header carrying the request ID
	headerName string

	// generator is the function used to generate new request IDs
	generator func() string

	// allowClientID allows using request IDs provided by clients
	allowClientID bool
}

// defaultConfig returns the default configuration for requestid middleware.
func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateUUIDv7,
		allowClientID: true,
	}
}

// generateUUIDv7 generates a UUID v7 string for request IDs.
// UUID v7 is time-ordered and lexicographically sortable (RFC 9562).
func generateUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ulidEntropy is a thread-safe entropy source for ULID generation.
// It provides monotonic ordering within the same millisecond.
var (
	ulidEntropy     = ulid.Monotonic(rand.Reader, 0)
	ulidEntropyLock sync.Mutex
)

// generateULID generates a ULID string for request IDs.
// ULID is time-ordered, lexicographically sortable, and has a compact
// 26-character representation.
func generateULID() string {
	ulidEntropyLock.Lock()
	defer ulidEntropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// WithHeader sets the header name used to read and expose the request ID.
// Default: "X-Request-ID"
//
// Example:
//
//	requestid.New(requestid.WithHeader("X-Correlation-ID"))
func WithHeader(name string) Option {
	return func(cfg *config) {
		cfg.headerName = name
	}
}

// WithGenerator sets a custom ID generator.
//
// Example:
//
//	requestid.New(requestid.WithGenerator(func() string {
//	    return fmt.Sprintf("req-%d", time.Now().UnixNano())
//	}))
func WithGenerator(generator func() string) Option {
	return func(cfg *config) {
		cfg.generator = generator
	}
}

// WithULID switches ID generation to ULID (26 characters,
// lexicographically sortable, more compact than UUID).
//
// Example:
//
//	requestid.New(requestid.WithULID())
func WithULID() Option {
	return func(cfg *config) {
		cfg.generator = generateULID
	}
}

// WithAllowClientID controls whether an ID already present on the incoming
// request is trusted. Default: true. Disable on public edges where clients
// must not choose their own correlation IDs.
//
// Example:
//
//	requestid.New(requestid.WithAllowClientID(false))
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) {
		cfg.allowClientID = allow
	}
}

// middleware carries the resolved configuration. One instance serves all
// requests.
type middleware struct {
	cfg *config
}

// New returns middleware that assigns a unique request ID to each request.
// The ID is threaded through the request context for handlers and later
// middleware, and stamped on the response header.
//
// By default, UUID v7 is used for request ID generation. UUID v7 is
// time-ordered and lexicographically sortable (RFC 9562), making it ideal
// for debugging and log correlation.
//
// Basic usage (UUID v7 by default):
//
//	d := dispatch.MustNew()
//	d.Use(requestid.New())
//
// Using ULID (shorter, 26 characters):
//
//	d.Use(requestid.New(requestid.WithULID()))
//
// Accessing the request ID in handlers:
//
//	d.GET("/users/<id:([0-9]+)>", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
//	    requestID := requestid.Get(req)
//	    // Use requestID for logging, tracing, etc.
//	    return dispatch.NewResponse()
//	})
func New(opts ...Option) dispatch.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &middleware{cfg: cfg}
}

// Before resolves the request ID and threads it through the request context.
func (m *middleware) Before(req *dispatch.Request, state *dispatch.State) dispatch.Outcome {
	var requestID string

	// Check for existing request ID if allowed
	if m.cfg.allowClientID {
		requestID = req.Header().Get(m.cfg.headerName)
	}

	// Generate new ID if none exists or client IDs are disabled
	if requestID == "" {
		requestID = m.cfg.generator()
	}

	ctx := context.WithValue(req.Context(), contextKey{}, requestID)
	return dispatch.Continue(req.WithContext(ctx))
}

// After stamps the request ID on the response, canned responses included.
func (m *middleware) After(req *dispatch.Request, res *dispatch.Response, state *dispatch.State) *dispatch.Response {
	if requestID := Get(req); requestID != "" {
		res.Header().Set(m.cfg.headerName, requestID)
	}
	return res
}

// Get retrieves the request ID from the request context.
// Returns an empty string if no request ID has been set.
//
// Example:
//
//	func handler(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
//	    requestID := requestid.Get(req)
//	    log.Printf("processing request %s", requestID)
//	    ...
//	}
func Get(req *dispatch.Request) string {
	if requestID, ok := req.Context().Value(contextKey{}).(string); ok {
		return requestID
	}

	return ""
}
