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

//go:build !integration

package basicauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/dispatch"
)

// protectedDispatcher wires the middleware in front of /secret and records
// whether the handler ran and which username it observed.
func protectedDispatcher(mw dispatch.Middleware, ran *bool, user *string) *dispatch.Dispatcher {
	d := dispatch.MustNew()
	d.Use(mw)
	d.GET("/secret", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
		*ran = true
		*user = Username(req)
		return dispatch.NewResponse().WithText("classified")
	})
	d.GET("/health", func(req *dispatch.Request, state *dispatch.State, caps dispatch.Captures) *dispatch.Response {
		*ran = true
		*user = Username(req)
		return dispatch.NewResponse().WithText("ok")
	})

	return d
}

func TestBasicAuth_ValidCredentials(t *testing.T) {
	t.Parallel()

	var (
		ran  bool
		user string
	)
	d := protectedDispatcher(New(WithUsers(map[string]string{"admin": "secret123"})), &ran, &user)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.SetBasicAuth("admin", "secret123")
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, ran, "Handler must run for valid credentials")
	assert.Equal(t, "admin", user, "Username must be available in the handler")
	assert.Equal(t, "classified", w.Body.String())
}

func TestBasicAuth_InvalidPassword(t *testing.T) {
	t.Parallel()

	var (
		ran  bool
		user string
	)
	d := protectedDispatcher(New(WithUsers(map[string]string{"admin": "secret123"})), &ran, &user)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.SetBasicAuth("admin", "wrong")
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, ran, "Handler must not run for invalid credentials")
	assert.Equal(t, `Basic realm="Restricted"`, w.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"code":401,"messages":["unauthorized"],"result":null,"status":"Unauthorized"}`, w.Body.String())
}

func TestBasicAuth_MissingCredentials(t *testing.T) {
	t.Parallel()

	var (
		ran  bool
		user string
	)
	d := protectedDispatcher(New(WithUsers(map[string]string{"admin": "secret123"})), &ran, &user)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, ran)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
}

func TestBasicAuth_UnknownUser(t *testing.T) {
	t.Parallel()

	var (
		ran  bool
		user string
	)
	d := protectedDispatcher(New(WithUsers(map[string]string{"admin": "secret123"})), &ran, &user)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.SetBasicAuth("intruder", "secret123")
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, ran)
}

func TestBasicAuth_Validator(t *testing.T) {
	t.Parallel()

	var (
		ran  bool
		user string
	)
	mw := New(
		WithUsers(map[string]string{"admin": "secret123"}),
		WithValidator(func(username, password string) bool {
			return username == "dynamic" && password == "creds"
		}),
	)
	d := protectedDispatcher(mw, &ran, &user)

	// The validator takes precedence over the static users map.
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.SetBasicAuth("admin", "secret123")
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.SetBasicAuth("dynamic", "creds")
	w = httptest.NewRecorder()
	d.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dynamic", user)
}

func TestBasicAuth_Realm(t *testing.T) {
	t.Parallel()

	var (
		ran  bool
		user string
	)
	d := protectedDispatcher(New(WithRealm("Admin Area")), &ran, &user)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	assert.Equal(t, `Basic realm="Admin Area"`, w.Header().Get("WWW-Authenticate"))
}

func TestBasicAuth_SkipPaths(t *testing.T) {
	t.Parallel()

	var (
		ran  bool
		user string
	)
	mw := New(
		WithUsers(map[string]string{"admin": "secret123"}),
		WithSkipPaths("/health"),
	)
	d := protectedDispatcher(mw, &ran, &user)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Skipped paths bypass authentication")
	assert.True(t, ran)
	assert.Empty(t, user, "Skipped requests carry no username")
}

func TestBasicAuth_UnauthorizedHandler(t *testing.T) {
	t.Parallel()

	var (
		ran  bool
		user string
	)
	mw := New(WithUnauthorizedHandler(func(req *dispatch.Request) *dispatch.Response {
		return dispatch.NewResponse().
			WithStatus(http.StatusForbidden).
			WithText("access denied")
	}))
	d := protectedDispatcher(mw, &ran, &user)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "access denied", w.Body.String())
	assert.Empty(t, w.Header().Get("WWW-Authenticate"), "Custom handler owns the whole response")
}

func TestBasicAuth_DenyAllByDefault(t *testing.T) {
	t.Parallel()

	var (
		ran  bool
		user string
	)
	d := protectedDispatcher(New(), &ran, &user)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.SetBasicAuth("anyone", "anything")
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code, "No users and no validator rejects everything")
	assert.False(t, ran)
}

func TestBasicAuth_UsernameWithoutAuth(t *testing.T) {
	t.Parallel()

	req := dispatch.NewTestRequest(httptest.NewRequest(http.MethodGet, "/secret", nil))
	require.Empty(t, Username(req))
}
