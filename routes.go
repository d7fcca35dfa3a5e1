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

import "fmt"

// HandlerFunc is a route handler: it receives the request, the shared state
// container and the captures extracted from the path, and returns the
// response to send. Handlers run concurrently across requests and must not
// mutate shared data outside State's read-only discipline.
type HandlerFunc func(req *Request, state *State, caps Captures) *Response

// route is one table entry, immutable once registered.
type route struct {
	method  string
	pattern *Pattern
	handler HandlerFunc
}

// resolveStatus classifies a table lookup.
type resolveStatus uint8

const (
	routeMatched resolveStatus = iota
	routeNotFound
	routeMethodNotAllowed
)

// routeTable is the flat route list in registration order, groups already
// flattened in. Order is semantic: the first pattern matching a path wins,
// so declaration order decides precedence between overlapping patterns.
// The table is append-only before freeze and read-only while serving.
type routeTable struct {
	routes []*route
}

// add compiles template and appends the entry. Compile failures and nil
// handlers are build errors.
func (t *routeTable) add(method, template string, handler HandlerFunc) error {
	if handler == nil {
		return fmt.Errorf("%w: %s %s", ErrHandlerNil, method, template)
	}
	p, err := CompilePattern(template)
	if err != nil {
		return err
	}
	t.routes = append(t.routes, &route{method: method, pattern: p, handler: handler})
	return nil
}

// resolve scans for the first route matching (method, path). Patterns that
// match the path under a different method are collected so the caller can
// distinguish "no such path" from "path exists, method does not" and
// advertise the allowed set.
func (t *routeTable) resolve(method, path string) (*route, Captures, []string, resolveStatus) {
	var allowed []string
	for _, rt := range t.routes {
		if rt.method == method {
			if caps, ok := rt.pattern.Match(path); ok {
				return rt, caps, nil, routeMatched
			}
			continue
		}
		if rt.pattern.Matches(path) {
			allowed = appendMethod(allowed, rt.method)
		}
	}
	if len(allowed) > 0 {
		return nil, Captures{}, allowed, routeMethodNotAllowed
	}
	return nil, Captures{}, nil, routeNotFound
}

// len reports the number of registered routes.
func (t *routeTable) len() int {
	return len(t.routes)
}

// appendMethod appends m if absent, preserving first-seen order.
func appendMethod(methods []string, m string) []string {
	for _, have := range methods {
		if have == m {
			return methods
		}
	}
	return append(methods, m)
}
