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

// Package dispatch is the request-dispatch core of a small HTTP framework:
// pattern routing with named regex captures, a two-phase middleware
// pipeline, a type-indexed shared state container, and a dispatcher that
// ties them together as a plain http.Handler.
//
// # Key Features
//
//   - Route templates with named, regex-constrained captures: /users/<id:([0-9]+)>
//   - Trailing catch-all captures spanning segments: /files/<path:(.+)>
//   - Registration-order precedence: the first matching pattern wins
//   - Route groups with prefix scoping, flattened at registration time
//   - 404 and 405 discrimination, with the Allow set on 405 responses
//   - Before/after middleware with short-circuit capability
//   - Type-indexed immutable state shared lock-free by all requests
//   - Per-request panic isolation at the dispatcher boundary
//   - Enveloped JSON responses: {"code", "messages", "result", "status"}
//   - Tuned server runtime with graceful shutdown and optional h2c
//
// # Lifecycle
//
// A Dispatcher is built, then frozen, then served. Routes, groups,
// middleware and state are registered from one goroutine during build;
// the first request (or Run/Start) freezes everything, and from then on
// the hot path is read-only and takes no locks. Registration after freeze
// panics: it is a programming error, caught in development.
//
// # Constructor Pattern
//
//   - New(opts...) returns (*Dispatcher, error): options may carry invalid
//     timeouts or unparseable environment values, and those should surface
//     before the process binds a port.
//   - MustNew wraps New for program setup where a bad configuration should
//     abort startup.
//   - Registration methods panic on malformed templates for the same
//     reason: route declarations are startup code, and a typo should stop
//     the program with a diagnostic, not produce a silent 404 in production.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "rivaas.dev/dispatch"
//	)
//
//	func main() {
//	    d := dispatch.MustNew()
//
//	    d.GET("/", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
//	        return dispatch.NewResponse().WithText("Hello World")
//	    })
//
//	    d.GET("/users/<id:([0-9]+)>", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
//	        return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
//	            j.Result(map[string]string{"user_id": caps.Value("id")})
//	        })
//	    })
//
//	    if err := d.Run(":3000"); err != nil {
//	        panic(err)
//	    }
//	}
//
// Handlers receive the request, the shared state container and the path
// captures, and return a response value; the dispatcher writes it to the
// wire exactly once. Middleware runs on both sides of the handler and can
// short-circuit requests (auth rejections, preflights) or rewrite
// responses (header injection, logging, metrics).
package dispatch
