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

package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"rivaas.dev/dispatch"
)

// Option defines functional options for CORS middleware configuration.
type Option func(*config)

// config holds the configuration for the CORS middleware.
type config struct {
	// allowedOrigins is the list of origins allowed to make requests
	allowedOrigins []string

	// allowAllOrigins sends Access-Control-Allow-Origin: *
	allowAllOrigins bool

	// allowedMethods are the methods advertised on preflight responses
	allowedMethods []string

	// allowedHeaders are the request headers advertised on preflight responses
	allowedHeaders []string

	// exposedHeaders are response headers exposed to client-side scripts
	exposedHeaders []string

	// allowCredentials permits cookies and authorization headers
	allowCredentials bool

	// maxAge is the preflight cache duration in seconds
	maxAge int

	// allowOriginFunc validates origins dynamically
	allowOriginFunc func(origin string) bool
}

// defaultConfig returns the default configuration for CORS middleware.
// No origins are allowed until the caller configures some.
func defaultConfig() *config {
	return &config{
		allowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
	}
}

// middleware answers preflight requests in the before stage and decorates
// actual responses in the after stage. Header lists are pre-joined at build
// time.
type middleware struct {
	cfg          *config
	allowMethods string
	allowHeaders string
	expose       string
	maxAge       string
}

// New returns middleware implementing Cross-Origin Resource Sharing.
// Preflight OPTIONS requests are answered directly with 204 No Content and
// never reach route handlers; actual cross-origin responses carry the
// Access-Control-Allow-Origin family of headers, dispatcher-generated
// responses included.
//
// Specific origins:
//
//	d := dispatch.MustNew()
//	d.Use(cors.New(
//	    cors.WithAllowedOrigins("https://example.com"),
//	    cors.WithAllowCredentials(true),
//	))
//
// Public API:
//
//	d.Use(cors.New(cors.WithAllowAllOrigins(true)))
//
// Requests without an Origin header pass through untouched. With no origins
// configured, no CORS headers are emitted at all.
func New(opts ...Option) dispatch.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &middleware{
		cfg:          cfg,
		allowMethods: strings.Join(cfg.allowedMethods, ", "),
		allowHeaders: strings.Join(cfg.allowedHeaders, ", "),
		expose:       strings.Join(cfg.exposedHeaders, ", "),
		maxAge:       strconv.Itoa(cfg.maxAge),
	}
}

// Before intercepts preflight requests. Everything else continues to the
// route handler; the CORS headers land in After.
func (m *middleware) Before(req *dispatch.Request, state *dispatch.State) dispatch.Outcome {
	origin := req.Header().Get("Origin")
	if origin == "" {
		return dispatch.Continue(req)
	}

	if isPreflight(req) {
		return dispatch.Respond(m.preflight(req, origin))
	}

	return dispatch.Continue(req)
}

// After sets the CORS response headers for cross-origin requests. Running in
// the after stage means 404s, 405s, and panic recoveries carry them too.
func (m *middleware) After(req *dispatch.Request, res *dispatch.Response, state *dispatch.State) *dispatch.Response {
	origin := req.Header().Get("Origin")
	if origin == "" || !m.originAllowed(origin) {
		return res
	}

	header := res.Header()
	if m.cfg.allowAllOrigins && !m.cfg.allowCredentials {
		header.Set("Access-Control-Allow-Origin", "*")
	} else {
		header.Set("Access-Control-Allow-Origin", origin)
		header.Add("Vary", "Origin")
	}

	if m.cfg.allowCredentials {
		header.Set("Access-Control-Allow-Credentials", "true")
	}

	// Expose-Headers only makes sense on actual responses.
	if m.expose != "" && !isPreflight(req) {
		header.Set("Access-Control-Expose-Headers", m.expose)
	}

	return res
}

// preflight builds the 204 answer for an OPTIONS preflight. Origin and
// credential headers are added by After, which also runs over short-circuit
// responses.
func (m *middleware) preflight(req *dispatch.Request, origin string) *dispatch.Response {
	res := dispatch.NewResponse().WithStatus(http.StatusNoContent)
	if !m.originAllowed(origin) {
		return res
	}

	header := res.Header()
	header.Set("Access-Control-Allow-Methods", m.allowMethods)
	if m.allowHeaders != "" {
		header.Set("Access-Control-Allow-Headers", m.allowHeaders)
	}
	if m.cfg.maxAge > 0 {
		header.Set("Access-Control-Max-Age", m.maxAge)
	}

	return res
}

// originAllowed reports whether the given origin may access the resource.
func (m *middleware) originAllowed(origin string) bool {
	if m.cfg.allowAllOrigins {
		return true
	}
	if m.cfg.allowOriginFunc != nil {
		return m.cfg.allowOriginFunc(origin)
	}

	return slices.Contains(m.cfg.allowedOrigins, origin)
}

// isPreflight reports whether the request is a CORS preflight: an OPTIONS
// request announcing the method of the actual request to follow.
func isPreflight(req *dispatch.Request) bool {
	return req.Method() == http.MethodOptions &&
		req.Header().Get("Access-Control-Request-Method") != ""
}
