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
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Response is the value handlers and middleware assemble; the dispatcher
// writes it to the transport exactly once per request. Builder methods
// return the response so construction chains:
//
//	return dispatch.NewResponse().
//		WithStatus(http.StatusCreated).
//		WithJSON(func(j *dispatch.JSONBuilder) { j.Result(user) })
type Response struct {
	status int
	header http.Header
	body   []byte
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{
		status: http.StatusOK,
		header: make(http.Header),
	}
}

// Status returns the response status code.
func (r *Response) Status() int {
	return r.status
}

// Header returns the live header map. After-phase middleware mutates it
// directly to inject or strip headers.
func (r *Response) Header() http.Header {
	return r.header
}

// Body returns the response body.
func (r *Response) Body() []byte {
	return r.body
}

// WithStatus sets the status code.
func (r *Response) WithStatus(code int) *Response {
	r.status = code
	return r
}

// WithHeader sets a header, replacing any existing values for the key.
func (r *Response) WithHeader(key, value string) *Response {
	r.header.Set(key, value)
	return r
}

// WithBody sets the raw body bytes without touching Content-Type.
func (r *Response) WithBody(body []byte) *Response {
	r.body = body
	return r
}

// WithText sets a plain-text body.
func (r *Response) WithText(s string) *Response {
	r.header.Set("Content-Type", "text/plain; charset=utf-8")
	r.body = []byte(s)
	return r
}

// WithHTML sets an HTML body.
func (r *Response) WithHTML(s string) *Response {
	r.header.Set("Content-Type", "text/html; charset=utf-8")
	r.body = []byte(s)
	return r
}

// WithRedirect turns the response into a permanent redirect to url.
func (r *Response) WithRedirect(url string) *Response {
	r.status = http.StatusMovedPermanently
	r.header.Set("Location", url)
	return r
}

// write sends the response over the transport. Headers first, then status,
// then body; Content-Length is always explicit.
func (r *Response) write(w http.ResponseWriter) {
	h := w.Header()
	for key, values := range r.header {
		h[key] = values
	}
	h.Set("Content-Length", strconv.Itoa(len(r.body)))
	w.WriteHeader(r.status)
	if len(r.body) > 0 {
		w.Write(r.body) //nolint:errcheck // the connection is gone; nothing to do
	}
}

// Envelope is the JSON wire wrapper produced by WithJSON:
//
//	{"code": 200, "messages": [], "result": …, "status": "OK"}
//
// Code and Status default to 200/"OK" and are set independently; Messages
// marshals as an empty array rather than null.
type Envelope struct {
	Code     int      `json:"code"`
	Messages []string `json:"messages"`
	Result   any      `json:"result"`
	Status   string   `json:"status"`
}

func newEnvelope() *Envelope {
	return &Envelope{
		Code:     http.StatusOK,
		Messages: []string{},
		Status:   http.StatusText(http.StatusOK),
	}
}

// JSONBuilder assembles the envelope inside Response.WithJSON.
type JSONBuilder struct {
	envelope *Envelope
}

// Result sets the envelope result payload.
func (b *JSONBuilder) Result(v any) {
	b.envelope.Result = v
}

// Message appends a message to the envelope.
func (b *JSONBuilder) Message(msg string) {
	b.envelope.Messages = append(b.envelope.Messages, msg)
}

// Messages appends several messages to the envelope.
func (b *JSONBuilder) Messages(msgs ...string) {
	b.envelope.Messages = append(b.envelope.Messages, msgs...)
}

// Code sets the envelope code. It does not touch the envelope status text
// or the response status; set those explicitly.
func (b *JSONBuilder) Code(code int) {
	b.envelope.Code = code
}

// Status sets the envelope status text.
func (b *JSONBuilder) Status(status string) {
	b.envelope.Status = status
}

// WithJSON sets an enveloped JSON body:
//
//	res.WithJSON(func(j *dispatch.JSONBuilder) {
//		j.Result(user)
//	})
//
// The envelope carries a nil fn unchanged, producing the default
// {"code":200,"messages":[],"result":null,"status":"OK"}. Encoding failure
// panics: envelopes carry handler-owned values, so a value that cannot be
// marshaled is a programming error; the dispatcher converts the panic into
// a 500 for that request.
func (r *Response) WithJSON(fn func(*JSONBuilder)) *Response {
	b := &JSONBuilder{envelope: newEnvelope()}
	if fn != nil {
		fn(b)
	}
	body, err := json.Marshal(b.envelope)
	if err != nil {
		panic(fmt.Errorf("encode json envelope: %w", err))
	}
	r.header.Set("Content-Type", "application/json; charset=utf-8")
	r.body = body
	return r
}
