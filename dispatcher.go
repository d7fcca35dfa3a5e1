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
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
)

// ServeHTTP implements http.Handler: one dispatch per inbound request. The
// first request freezes the dispatcher; the response is written exactly
// once, here.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.freeze()
	res := d.dispatch(newRequest(r))
	res.write(w)
}

// dispatch runs one request through the before phase, the route table, the
// handler and the after phase, and always produces a response: request-time
// failures never cross this boundary.
func (d *Dispatcher) dispatch(req *Request) (res *Response) {
	// Last-resort guard. A panic here means a middleware phase itself
	// failed, so the pipeline cannot be trusted to run its after stages;
	// the request ends with the canned 500.
	defer func() {
		if rec := recover(); rec != nil {
			d.logPanic("panic in middleware", rec, req)
			res = internalErrorResponse()
		}
	}()

	req, short, executed := d.pipeline.runBefore(req, d.state)
	if short != nil {
		res = short
	} else {
		req, res = d.route(req)
	}
	return d.pipeline.runAfter(executed, req, res, d.state)
}

// route resolves the request against the table, maps misses to canned
// responses, and invokes the matched handler. The matched route template is
// threaded onto the request context before the handler runs so the after
// phase can label by route.
func (d *Dispatcher) route(req *Request) (*Request, *Response) {
	rt, caps, allowed, status := d.table.resolve(req.Method(), req.Path())
	switch status {
	case routeMatched:
		req = req.withRoutePattern(rt.pattern.Template())
		return req, d.invoke(rt.handler, req, caps)
	case routeMethodNotAllowed:
		res := NewResponse().
			WithStatus(http.StatusMethodNotAllowed).
			WithHeader("Allow", strings.Join(allowed, ", "))
		return req, res
	default:
		if d.notFound != nil {
			return req, d.invoke(d.notFound, req, Captures{})
		}
		return req, NewResponse().WithStatus(http.StatusNotFound)
	}
}

// invoke runs one handler under its own panic guard: a panicking handler
// (or a MustGet on absent state, or an unmarshalable envelope) costs that
// request a 500, never the process, and the after phase still runs.
func (d *Dispatcher) invoke(h HandlerFunc, req *Request, caps Captures) (res *Response) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logPanic("panic in handler", rec, req)
			res = internalErrorResponse()
		}
	}()
	res = h(req, d.state, caps)
	if res == nil {
		d.logger.Error("handler returned nil response",
			slog.String("method", req.Method()),
			slog.String("path", req.Path()),
		)
		res = internalErrorResponse()
	}
	return res
}

func (d *Dispatcher) logPanic(msg string, rec any, req *Request) {
	d.logger.Error(msg,
		slog.Any("panic", rec),
		slog.String("method", req.Method()),
		slog.String("path", req.Path()),
		slog.String("stack", string(debug.Stack())),
	)
}

// internalErrorResponse is the canned 500, shaped as the framework's own
// JSON envelope.
func internalErrorResponse() *Response {
	return NewResponse().
		WithStatus(http.StatusInternalServerError).
		WithJSON(func(j *JSONBuilder) {
			j.Code(http.StatusInternalServerError)
			j.Message("internal server error")
			j.Status(http.StatusText(http.StatusInternalServerError))
		})
}
