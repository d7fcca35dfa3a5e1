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
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
)

// noopLogger is a singleton no-op logger used when none is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Dispatcher owns the route table, the middleware pipeline and the state
// container, and drives them once per inbound request. It implements
// http.Handler, so it plugs into any net/http server; Run and Start wrap it
// in a tuned server with graceful shutdown.
//
// A Dispatcher has two phases. During build, routes, groups, middleware and
// state are registered from a single goroutine. Serving freezes it: the
// first request (or Run/Start) makes everything read-only, and later
// registration attempts panic with ErrDispatcherFrozen. That one-way switch
// is what lets request handling run without locks.
type Dispatcher struct {
	table    routeTable
	pipeline pipeline
	staged   []any
	state    *State
	notFound HandlerFunc

	logger *slog.Logger
	cfg    config

	frozen     atomic.Bool
	freezeOnce sync.Once

	serverMu sync.Mutex
	server   *http.Server
}

// New builds a Dispatcher. Options are applied in order, then environment
// overrides when WithEnv is set, then the result is validated.
func New(opts ...Option) (*Dispatcher, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.useEnv {
		overrides, err := loadEnv(cfg.envPrefix)
		if err != nil {
			return nil, fmt.Errorf("parse environment: %w", err)
		}
		cfg.applyEnv(overrides)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = noopLogger
	}
	return &Dispatcher{logger: logger, cfg: cfg}, nil
}

// MustNew is New that panics on error, for program setup where a
// configuration problem should abort startup:
//
//	d := dispatch.MustNew(dispatch.WithEnv())
func MustNew(opts ...Option) *Dispatcher {
	d, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// GET registers a handler for GET requests.
//
//	d.GET("/users/<id:([0-9]+)>", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
//		return dispatch.NewResponse().WithText("user " + caps.Value("id"))
//	})
func (d *Dispatcher) GET(pattern string, handler HandlerFunc) {
	d.addRoute(http.MethodGet, pattern, handler)
}

// POST registers a handler for POST requests.
func (d *Dispatcher) POST(pattern string, handler HandlerFunc) {
	d.addRoute(http.MethodPost, pattern, handler)
}

// PUT registers a handler for PUT requests.
func (d *Dispatcher) PUT(pattern string, handler HandlerFunc) {
	d.addRoute(http.MethodPut, pattern, handler)
}

// DELETE registers a handler for DELETE requests.
func (d *Dispatcher) DELETE(pattern string, handler HandlerFunc) {
	d.addRoute(http.MethodDelete, pattern, handler)
}

// Handle registers a handler for any method, covering verbs without a
// dedicated helper (PATCH, OPTIONS, HEAD, ...).
func (d *Dispatcher) Handle(method, pattern string, handler HandlerFunc) {
	d.addRoute(method, pattern, handler)
}

// Route runs a registration builder against the dispatcher root. It exists
// for setups that assemble routes in one closure:
//
//	d.Route(func(r *dispatch.Group) {
//		r.GET("/", home)
//		r.Group("/api", registerAPI)
//	})
func (d *Dispatcher) Route(fn func(*Group)) {
	d.checkMutable()
	if fn != nil {
		fn(&Group{d: d})
	}
}

// Group opens a prefix scope at the dispatcher root. See Group for
// concatenation rules.
func (d *Dispatcher) Group(prefix string, fn func(*Group)) {
	root := Group{d: d}
	root.Group(prefix, fn)
}

// Use appends middleware to the pipeline. Registration order is execution
// order for both phases.
func (d *Dispatcher) Use(mw ...Middleware) {
	d.checkMutable()
	for _, m := range mw {
		if m == nil {
			panic(ErrMiddlewareNil)
		}
		d.pipeline.stages = append(d.pipeline.stages, m)
	}
}

// State stages a value into the state container under its concrete type.
// Staging a second value of the same type replaces the first; the container
// is sealed at freeze.
func (d *Dispatcher) State(value any) {
	d.checkMutable()
	if value == nil {
		panic(ErrStateValueNil)
	}
	d.staged = append(d.staged, value)
}

// NotFound replaces the canned empty 404 with a handler. The handler
// receives empty captures.
func (d *Dispatcher) NotFound(handler HandlerFunc) {
	d.checkMutable()
	if handler == nil {
		panic(ErrHandlerNil)
	}
	d.notFound = handler
}

// RouteCount returns the number of registered routes.
func (d *Dispatcher) RouteCount() int {
	return d.table.len()
}

// Logger returns the dispatcher's logger.
func (d *Dispatcher) Logger() *slog.Logger {
	return d.logger
}

// addRoute registers one table entry. Pattern compile failures and nil
// handlers panic: routes are declared at startup, and a malformed
// declaration should abort the program with a diagnostic rather than
// surface per-request.
func (d *Dispatcher) addRoute(method, template string, handler HandlerFunc) {
	d.checkMutable()
	if err := d.table.add(method, template, handler); err != nil {
		panic(err)
	}
}

// checkMutable panics when registration happens after freeze.
func (d *Dispatcher) checkMutable() {
	if d.frozen.Load() {
		panic(ErrDispatcherFrozen)
	}
}

// freeze seals registration and builds the immutable state container. It is
// idempotent and runs at most once, triggered by the first request or by
// Run/Start.
func (d *Dispatcher) freeze() {
	d.freezeOnce.Do(func() {
		d.state = NewState(d.staged...)
		d.staged = nil
		d.frozen.Store(true)
	})
}
