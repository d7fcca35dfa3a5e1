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

package basicauth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"

	"rivaas.dev/dispatch"
)

type contextKey struct{}

// Option defines functional options for basicauth middleware configuration.
type Option func(*config)

// config holds the configuration for the basicauth middleware.
type config struct {
	// users maps usernames to passwords for static credential validation
	users map[string]string

	// realm is displayed in the browser's authentication prompt
	realm string

	// validator validates credentials; takes precedence over users
	validator func(username, password string) bool

	// unauthorizedHandler builds the response for rejected requests
	unauthorizedHandler func(req *dispatch.Request) *dispatch.Response

	// skipPaths bypass authentication entirely
	skipPaths map[string]bool
}

// defaultConfig returns the default configuration for basicauth middleware.
func defaultConfig() *config {
	return &config{
		users:     make(map[string]string),
		realm:     "Restricted",
		skipPaths: make(map[string]bool),
	}
}

// middleware rejects unauthenticated requests in the before stage; requests
// that pass carry the username in their context.
type middleware struct {
	cfg       *config
	challenge string
}

// New returns middleware implementing HTTP Basic Authentication (RFC 7617).
// Requests without valid credentials are answered with 401 Unauthorized and
// a WWW-Authenticate challenge; the route handler never runs.
//
// Static users:
//
//	d := dispatch.MustNew()
//	d.Use(basicauth.New(basicauth.WithUsers(map[string]string{
//	    "admin": "secret123",
//	})))
//
// Custom validator:
//
//	d.Use(basicauth.New(basicauth.WithValidator(func(username, password string) bool {
//	    return db.ValidateUser(username, password)
//	})))
//
// With no users and no validator configured, every request is rejected.
func New(opts ...Option) dispatch.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &middleware{
		cfg:       cfg,
		challenge: fmt.Sprintf("Basic realm=%q", cfg.realm),
	}
}

// Before authenticates the request. Valid credentials continue with the
// username stored in the request context; anything else short-circuits
// with a 401.
func (m *middleware) Before(req *dispatch.Request, state *dispatch.State) dispatch.Outcome {
	if m.cfg.skipPaths[req.Path()] {
		return dispatch.Continue(req)
	}

	username, password, ok := req.Raw().BasicAuth()
	if !ok || !m.validate(username, password) {
		return dispatch.Respond(m.unauthorized(req))
	}

	ctx := context.WithValue(req.Context(), contextKey{}, username)
	return dispatch.Continue(req.WithContext(ctx))
}

// After passes the response through untouched.
func (m *middleware) After(req *dispatch.Request, res *dispatch.Response, state *dispatch.State) *dispatch.Response {
	return res
}

// validate checks credentials against the validator or the static user map.
func (m *middleware) validate(username, password string) bool {
	if m.cfg.validator != nil {
		return m.cfg.validator(username, password)
	}

	expected, exists := m.cfg.users[username]
	if !exists {
		// Compare against the supplied password anyway to keep the timing
		// profile of unknown and known usernames alike.
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return false
	}

	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}

// unauthorized builds the 401 response, delegating to the configured handler
// when one is set.
func (m *middleware) unauthorized(req *dispatch.Request) *dispatch.Response {
	if m.cfg.unauthorizedHandler != nil {
		return m.cfg.unauthorizedHandler(req)
	}

	return dispatch.NewResponse().
		WithStatus(http.StatusUnauthorized).
		WithHeader("WWW-Authenticate", m.challenge).
		WithJSON(func(j *dispatch.JSONBuilder) {
			j.Code(http.StatusUnauthorized)
			j.Status(http.StatusText(http.StatusUnauthorized))
			j.Message("unauthorized")
		})
}

// Username retrieves the authenticated username from the request context.
// Returns an empty string if the request did not pass authentication.
//
// Example:
//
//	func handler(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
//	    username := basicauth.Username(req)
//	    ...
//	}
func Username(req *dispatch.Request) string {
	if username, ok := req.Context().Value(contextKey{}).(string); ok {
		return username
	}

	return ""
}
