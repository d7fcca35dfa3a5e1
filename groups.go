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
	"net/http"
	"strings"
)

// Group scopes registrations under a path prefix. Groups exist only at
// registration time: every route lands in the dispatcher's flat table with
// the prefix already concatenated, so matching carries no group indirection.
//
//	d.Group("/api", func(api *dispatch.Group) {
//		api.GET("/users/<id:([0-9]+)>", showUser)
//		api.Group("/admin", func(admin *dispatch.Group) {
//			admin.DELETE("/users/<id:([0-9]+)>", deleteUser)
//		})
//	})
//
// registers GET /api/users/<id:([0-9]+)> and DELETE /api/admin/users/<id:([0-9]+)>,
// in that order (nested groups flatten depth-first, in declaration order).
type Group struct {
	d      *Dispatcher
	prefix string
}

// GET registers a handler for GET requests under the group prefix.
func (g *Group) GET(pattern string, handler HandlerFunc) {
	g.Handle(http.MethodGet, pattern, handler)
}

// POST registers a handler for POST requests under the group prefix.
func (g *Group) POST(pattern string, handler HandlerFunc) {
	g.Handle(http.MethodPost, pattern, handler)
}

// PUT registers a handler for PUT requests under the group prefix.
func (g *Group) PUT(pattern string, handler HandlerFunc) {
	g.Handle(http.MethodPut, pattern, handler)
}

// DELETE registers a handler for DELETE requests under the group prefix.
func (g *Group) DELETE(pattern string, handler HandlerFunc) {
	g.Handle(http.MethodDelete, pattern, handler)
}

// Handle registers a handler for an arbitrary method under the group prefix.
func (g *Group) Handle(method, pattern string, handler HandlerFunc) {
	g.d.addRoute(method, joinPattern(g.prefix, pattern), handler)
}

// Group opens a nested scope whose prefix compounds with this group's. The
// builder runs immediately, so registration order inside it is preserved.
func (g *Group) Group(prefix string, fn func(*Group)) {
	g.d.checkMutable()
	sub := &Group{d: g.d, prefix: joinPattern(g.prefix, prefix)}
	if fn != nil {
		fn(sub)
	}
}

// joinPattern concatenates a group prefix and a route template without
// doubling the separator: "/api/" + "/users" yields "/api/users", and
// "/api" + "/" yields "/api".
func joinPattern(prefix, pattern string) string {
	trimmed := strings.TrimRight(prefix, "/")
	if trimmed == "" {
		return pattern
	}
	if pattern == "" || pattern == "/" {
		return trimmed
	}
	return trimmed + pattern
}
