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

package dispatch_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"rivaas.dev/dispatch"
)

// ExampleNew demonstrates creating a dispatcher.
func ExampleNew() {
	d, err := dispatch.New()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	d.GET("/", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
		return dispatch.NewResponse().WithText("Hello World")
	})

	fmt.Println("Dispatcher created successfully")
	// Output: Dispatcher created successfully
}

// ExampleDispatcher_GET demonstrates a route with a constrained capture.
func ExampleDispatcher_GET() {
	d := dispatch.MustNew()

	d.GET("/users/<id:([0-9]+)>", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
		return dispatch.NewResponse().WithText("user " + caps.Value("id"))
	})

	w := httptest.NewRecorder()
	d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	fmt.Println(w.Body.String())
	// Output: user 42
}

// ExampleDispatcher_Group demonstrates prefix-scoped registration.
func ExampleDispatcher_Group() {
	d := dispatch.MustNew()

	d.Group("/api", func(api *dispatch.Group) {
		api.GET("/status", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
			return dispatch.NewResponse().WithText("healthy")
		})
		api.Group("/v1", func(v1 *dispatch.Group) {
			v1.GET("/users/<id:([0-9]+)>", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
				return dispatch.NewResponse().WithText("v1 user " + caps.Value("id"))
			})
		})
	})

	w := httptest.NewRecorder()
	d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/7", nil))
	fmt.Println(w.Body.String())
	// Output: v1 user 7
}

// ExampleDispatcher_Use demonstrates a before/after middleware pair.
func ExampleDispatcher_Use() {
	d := dispatch.MustNew()

	d.Use(dispatch.BeforeFunc(func(req *dispatch.Request, state *dispatch.State) dispatch.Outcome {
		if req.Header().Get("Authorization") == "" {
			return dispatch.Respond(dispatch.NewResponse().WithStatus(http.StatusUnauthorized))
		}
		return dispatch.Continue(req)
	}))
	d.GET("/secret", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
		return dispatch.NewResponse().WithText("classified")
	})

	w := httptest.NewRecorder()
	d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secret", nil))
	fmt.Println(w.Code)

	r := httptest.NewRequest(http.MethodGet, "/secret", nil)
	r.Header.Set("Authorization", "Bearer token")
	w = httptest.NewRecorder()
	d.ServeHTTP(w, r)
	fmt.Println(w.Body.String())
	// Output:
	// 401
	// classified
}

// ExampleDispatcher_State demonstrates sharing a dependency with handlers.
func ExampleDispatcher_State() {
	type appName string

	d := dispatch.MustNew()
	d.State(appName("inventory"))

	d.GET("/", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
		name := dispatch.MustGet[appName](state)
		return dispatch.NewResponse().WithText(string(name))
	})

	w := httptest.NewRecorder()
	d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	fmt.Println(w.Body.String())
	// Output: inventory
}

// ExampleResponse_WithJSON demonstrates the enveloped JSON body.
func ExampleResponse_WithJSON() {
	res := dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
		j.Result(map[string]string{"name": "ada"})
	})

	fmt.Println(string(res.Body()))
	// Output: {"code":200,"messages":[],"result":{"name":"ada"},"status":"OK"}
}

// ExampleCompilePattern demonstrates standalone pattern matching.
func ExampleCompilePattern() {
	p, err := dispatch.CompilePattern("/files/<path:(.+)>")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	caps, ok := p.Match("/files/docs/readme.md")
	fmt.Println(ok, caps.Value("path"))
	// Output: true docs/readme.md
}
