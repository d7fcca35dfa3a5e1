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

// Outcome is a before-phase decision: either continue toward the handler
// with a (possibly rewritten) request, or respond immediately and skip
// everything downstream. Construct one with Continue or Respond.
type Outcome struct {
	req *Request
	res *Response
}

// Continue passes req to the next stage. Returning the request received is
// the common case; returning a rewritten request (new context, mutated
// headers) replaces it for the rest of the chain and the handler.
func Continue(req *Request) Outcome {
	return Outcome{req: req}
}

// Respond short-circuits the request with res: remaining before stages and
// the route handler are skipped, and res proceeds to the after phase.
func Respond(res *Response) Outcome {
	return Outcome{res: res}
}

// Middleware intercepts requests on both sides of handler execution.
//
// Before runs ahead of routing in registration order. After runs once a
// response exists, in the same registration order, but only for stages whose
// Before executed: when stage i short-circuits, stages 0..i run their After
// and later stages run nothing. After also sees canned 404/405/500 responses,
// so logging and header injection stay symmetric. Returning nil from After
// keeps the current response.
//
// Middleware instances are shared by all in-flight requests and must not
// keep per-request fields; thread per-request data through the request
// context instead.
type Middleware interface {
	Before(req *Request, state *State) Outcome
	After(req *Request, res *Response, state *State) *Response
}

// BeforeFunc adapts a function into Middleware whose after phase passes the
// response through unchanged.
type BeforeFunc func(req *Request, state *State) Outcome

// Before implements Middleware.
func (f BeforeFunc) Before(req *Request, state *State) Outcome {
	return f(req, state)
}

// After implements Middleware as a pass-through.
func (f BeforeFunc) After(_ *Request, res *Response, _ *State) *Response {
	return res
}

// AfterFunc adapts a function into Middleware whose before phase always
// continues.
type AfterFunc func(req *Request, res *Response, state *State) *Response

// Before implements Middleware as a pass-through.
func (f AfterFunc) Before(req *Request, _ *State) Outcome {
	return Continue(req)
}

// After implements Middleware.
func (f AfterFunc) After(req *Request, res *Response, state *State) *Response {
	return f(req, res, state)
}

// pipeline is the ordered middleware chain. Stages are appended before
// freeze and the slice is read-only during serving.
type pipeline struct {
	stages []Middleware
}

// runBefore drives the before phase. It returns the request as rewritten by
// the stages, the short-circuit response if one was produced, and the number
// of stages that executed; the count bounds the after phase.
func (p *pipeline) runBefore(req *Request, state *State) (*Request, *Response, int) {
	for i, mw := range p.stages {
		outcome := mw.Before(req, state)
		if outcome.res != nil {
			return req, outcome.res, i + 1
		}
		if outcome.req != nil {
			req = outcome.req
		}
	}
	return req, nil, len(p.stages)
}

// runAfter drives the after phase over the first executed stages in
// registration order, threading the response through each.
func (p *pipeline) runAfter(executed int, req *Request, res *Response, state *State) *Response {
	for _, mw := range p.stages[:executed] {
		if next := mw.After(req, res, state); next != nil {
			res = next
		}
	}
	return res
}
