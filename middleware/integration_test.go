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

// This file contains BDD-style integration tests for middleware components.
//
// # Test Philosophy
//
// These tests verify that middleware components work correctly together in realistic
// scenarios. They test:
//
//   - Middleware ordering and interaction
//   - Context propagation between middleware
//   - End-to-end request/response behavior
//   - After hooks running over short-circuits and canned responses
//
// # Test Helpers
//
// testLogHandler: Captures log output for verification
//   - Thread-safe log record capture
//   - Filters by log level
//   - Extracts structured fields
//
// # Running These Tests
//
// See middleware_integration_suite_test.go for detailed instructions on running
// integration tests separately from unit tests.
package middleware_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"rivaas.dev/dispatch"
	"rivaas.dev/dispatch/middleware"
	"rivaas.dev/dispatch/middleware/accesslog"
	"rivaas.dev/dispatch/middleware/basicauth"
	"rivaas.dev/dispatch/middleware/cors"
	"rivaas.dev/dispatch/middleware/metrics"
	"rivaas.dev/dispatch/middleware/requestid"
	"rivaas.dev/dispatch/middleware/security"
	"rivaas.dev/dispatch/middleware/tracing"
)

// testLogRecord is a single captured log record.
type testLogRecord struct {
	level slog.Level
	msg   string
	attrs map[string]any
}

// testLogHandler captures log records for testing.
type testLogHandler struct {
	mu      sync.Mutex
	records []testLogRecord
}

func newTestLogHandler() *testLogHandler {
	return &testLogHandler{}
}

func (h *testLogHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.records = append(h.records, testLogRecord{
		level: r.Level,
		msg:   r.Message,
		attrs: attrs,
	})
	return nil
}

func (h *testLogHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *testLogHandler) WithGroup(_ string) slog.Handler      { return h }

func (h *testLogHandler) getRecords(level slog.Level) []testLogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	var result []testLogRecord
	for _, r := range h.records {
		if r.level == level {
			result = append(result, r)
		}
	}
	return result
}

func (h *testLogHandler) getFields(level slog.Level) map[string]any {
	records := h.getRecords(level)
	if len(records) == 0 {
		return nil
	}
	return records[0].attrs
}

// panicMiddleware panics in its before hook. Used to verify the dispatcher's
// last-resort guard.
type panicMiddleware struct{}

func (panicMiddleware) Before(_ *dispatch.Request, _ *dispatch.State) dispatch.Outcome {
	panic("middleware panic")
}

func (panicMiddleware) After(_ *dispatch.Request, res *dispatch.Response, _ *dispatch.State) *dispatch.Response {
	return res
}

var _ = Describe("Middleware Integration", Label("integration"), func() {
	Describe("Basic Stack", func() {
		It("should integrate RequestID and AccessLog middleware", func() {
			handler := newTestLogHandler()
			logger := slog.New(handler)

			d := dispatch.MustNew()
			d.Use(requestid.New())
			d.Use(accesslog.New(accesslog.WithLogger(logger)))

			d.GET("/test", func(req *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				// Verify RequestID is available
				reqID := requestid.Get(req)
				Expect(reqID).NotTo(BeEmpty(), "RequestID should be available in handler")
				return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
					j.Result(map[string]string{
						"request_id": reqID,
						"message":    "success",
					})
				})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			d.ServeHTTP(w, req)

			// Verify response
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("success"))

			// Verify RequestID header is set
			requestIDHeader := w.Header().Get("X-Request-ID")
			Expect(requestIDHeader).NotTo(BeEmpty(), "RequestID header should be set")

			// Verify AccessLog captured the request
			logRecords := handler.getRecords(slog.LevelInfo)
			Expect(logRecords).To(HaveLen(1), "AccessLog should have logged the request")
			Expect(logRecords[0].msg).To(Equal("http request"))

			// Verify basic log fields are present
			logFields := handler.getFields(slog.LevelInfo)
			Expect(logFields).To(HaveKey("method"), "AccessLog should include method")
			Expect(logFields).To(HaveKey("path"), "AccessLog should include path")
			Expect(logFields).To(HaveKey("status"), "AccessLog should include status")
		})

		It("should keep request IDs and access logs when a handler panics", func() {
			handler := newTestLogHandler()
			logger := slog.New(handler)

			d := dispatch.MustNew(dispatch.WithLogger(logger))
			d.Use(requestid.New())
			d.Use(accesslog.New(accesslog.WithLogger(logger)))

			d.GET("/panic", func(_ *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				panic("test panic")
			})

			req := httptest.NewRequest(http.MethodGet, "/panic", nil)
			w := httptest.NewRecorder()

			// Should not panic - the dispatcher isolates it
			d.ServeHTTP(w, req)

			// Verify the dispatcher handled the panic
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(ContainSubstring("internal server error"))

			// Verify RequestID is still set: after hooks run over the canned 500
			requestIDHeader := w.Header().Get("X-Request-ID")
			Expect(requestIDHeader).NotTo(BeEmpty(), "RequestID should be set even when panic occurs")

			// Verify both the panic log and the access log were emitted
			logRecords := handler.getRecords(slog.LevelError)
			Expect(logRecords).To(HaveLen(2))
			Expect(logRecords[0].msg).To(Equal("panic in handler"))
			Expect(logRecords[1].msg).To(Equal("http request"))
			Expect(logRecords[1].attrs["status"]).To(Equal(int64(http.StatusInternalServerError)))
		})
	})

	Describe("Security Stack", func() {
		It("should integrate Security, CORS, and BasicAuth middleware", func() {
			d := dispatch.MustNew()
			d.Use(security.New())
			d.Use(cors.New(
				cors.WithAllowedOrigins("https://example.com"),
				cors.WithAllowedMethods("GET", "POST"),
				cors.WithAllowedHeaders("Content-Type", "Authorization"),
			))
			d.Use(basicauth.New(
				basicauth.WithUsers(map[string]string{
					"admin": "secret",
				}),
			))

			d.GET("/protected", func(req *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				username := basicauth.Username(req)
				return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
					j.Result(map[string]string{
						"user":    username,
						"message": "protected resource",
					})
				})
			})

			// Test authenticated request with CORS origin
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
			req.Header.Set("Origin", "https://example.com")
			w := httptest.NewRecorder()

			d.ServeHTTP(w, req)

			// Verify authentication succeeded
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("admin"))

			// Verify security headers are set
			Expect(w.Header().Get("X-Content-Type-Options")).NotTo(BeEmpty())
			Expect(w.Header().Get("X-Frame-Options")).NotTo(BeEmpty())

			// Verify CORS headers are set (only when Origin header is present)
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://example.com"))
		})

		It("should reject unauthorized requests without losing headers", func() {
			d := dispatch.MustNew()
			d.Use(security.New())
			d.Use(cors.New(
				cors.WithAllowedOrigins("https://example.com"),
			))
			d.Use(basicauth.New(
				basicauth.WithUsers(map[string]string{
					"admin": "secret",
				}),
			))

			d.GET("/protected", func(_ *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
					j.Result(map[string]string{"message": "should not reach here"})
				})
			})

			// Test unauthenticated request
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Origin", "https://example.com")
			w := httptest.NewRecorder()

			d.ServeHTTP(w, req)

			// Verify authentication failed
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Header().Get("WWW-Authenticate")).NotTo(BeEmpty())
			Expect(w.Body.String()).To(ContainSubstring("unauthorized"))

			// Verify security and CORS headers survive the short-circuit: the
			// after hooks of security and cors run over basicauth's 401
			Expect(w.Header().Get("X-Content-Type-Options")).NotTo(BeEmpty())
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://example.com"))
		})
	})

	Describe("Full Production Stack", func() {
		It("should integrate all middleware types", func() {
			handler := newTestLogHandler()
			logger := slog.New(handler)
			registry := prometheus.NewRegistry()
			recorder := tracetest.NewSpanRecorder()
			provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			DeferCleanup(func() {
				Expect(provider.Shutdown(context.Background())).To(Succeed())
			})

			d := dispatch.MustNew()

			// Observability (first)
			d.Use(requestid.New())
			d.Use(accesslog.New(accesslog.WithLogger(logger)))
			d.Use(metrics.New(metrics.WithRegisterer(registry)))
			d.Use(tracing.New(tracing.WithTracerProvider(provider)))

			// Security
			d.Use(security.New())
			d.Use(cors.New(
				cors.WithAllowedOrigins("https://example.com"),
			))

			d.GET("/api/users", func(req *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
					j.Result(map[string]any{
						"request_id": requestid.Get(req),
						"users":      []string{"user1", "user2"},
					})
				})
			})

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req.Header.Set("Origin", "https://example.com")
			w := httptest.NewRecorder()

			d.ServeHTTP(w, req)

			// Verify response
			Expect(w.Code).To(Equal(http.StatusOK))

			// Verify RequestID is set
			Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty(), "RequestID should be set")

			// Verify security and CORS headers
			Expect(w.Header().Get("X-Content-Type-Options")).NotTo(BeEmpty())
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://example.com"))

			// Verify AccessLog captured the request
			logRecords := handler.getRecords(slog.LevelInfo)
			Expect(logRecords).To(HaveLen(1), "AccessLog should have logged the request")

			// Verify Metrics counted the request
			count, err := testutil.GatherAndCount(registry, "http_requests_total")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1), "Metrics should have counted the request")

			// Verify Tracing recorded the span
			spans := recorder.Ended()
			Expect(spans).To(HaveLen(1), "Tracing should have recorded one span")
			Expect(spans[0].Name()).To(Equal("GET /api/users"))
		})
	})

	Describe("Middleware Ordering", func() {
		It("should make the request ID available to access logging", func() {
			handler := newTestLogHandler()
			logger := slog.New(handler)

			// Correct order: RequestID -> AccessLog
			d := dispatch.MustNew()
			d.Use(requestid.New())
			d.Use(accesslog.New(
				accesslog.WithLogger(logger),
				accesslog.WithRequestIDFunc(requestid.Get),
			))

			d.GET("/test", func(_ *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
					j.Result(map[string]string{"message": "ok"})
				})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			d.ServeHTTP(w, req)

			// Verify RequestID is set
			requestIDHeader := w.Header().Get("X-Request-ID")
			Expect(requestIDHeader).NotTo(BeEmpty(), "RequestID should be set")

			// Verify AccessLog logged the same ID it read from the context
			logFields := handler.getFields(slog.LevelInfo)
			Expect(logFields).To(HaveKey("request_id"), "AccessLog should include request_id")
			Expect(logFields["request_id"]).To(Equal(requestIDHeader))
		})

		It("should end the request when a middleware panics", func() {
			handler := newTestLogHandler()
			logger := slog.New(handler)

			d := dispatch.MustNew(dispatch.WithLogger(logger))
			d.Use(requestid.New())
			d.Use(accesslog.New(accesslog.WithLogger(logger)))
			d.Use(panicMiddleware{})

			d.GET("/test", func(_ *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
					j.Result(map[string]string{"message": "should not reach here"})
				})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			// Should not panic - the dispatcher's last-resort guard catches it
			d.ServeHTTP(w, req)

			// Verify the request ended with the canned 500
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(ContainSubstring("internal server error"))

			// A middleware panic skips the after phase entirely, so neither the
			// request ID header nor the access log record exists
			Expect(w.Header().Get("X-Request-ID")).To(BeEmpty())
			Expect(handler.getRecords(slog.LevelInfo)).To(BeEmpty())

			logRecords := handler.getRecords(slog.LevelError)
			Expect(logRecords).To(HaveLen(1))
			Expect(logRecords[0].msg).To(Equal("panic in middleware"))
		})
	})

	Describe("Context Propagation", func() {
		It("should propagate context values across middleware", func() {
			d := dispatch.MustNew()
			d.Use(requestid.New())
			d.Use(accesslog.New(accesslog.WithLogger(middleware.NewTestLogger())))
			d.Use(basicauth.New(
				basicauth.WithUsers(map[string]string{
					"admin": "secret",
				}),
			))

			var capturedRequestID string
			var capturedUsername string

			d.GET("/test", func(req *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				capturedRequestID = requestid.Get(req)
				capturedUsername = basicauth.Username(req)
				return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
					j.Result(map[string]string{
						"request_id": capturedRequestID,
						"username":   capturedUsername,
					})
				})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
			w := httptest.NewRecorder()

			d.ServeHTTP(w, req)

			// Verify context values are available
			Expect(capturedRequestID).NotTo(BeEmpty(), "RequestID should be available in handler")
			Expect(capturedUsername).To(Equal("admin"), "Username should be available in handler")

			// Verify response contains both values
			Expect(w.Body.String()).To(ContainSubstring(capturedRequestID))
			Expect(w.Body.String()).To(ContainSubstring("admin"))
		})
	})

	Describe("Route Groups", func() {
		It("should protect grouped routes while leaving public paths open", func() {
			handler := newTestLogHandler()
			logger := slog.New(handler)

			d := dispatch.MustNew()

			// Global middleware
			d.Use(requestid.New())
			d.Use(accesslog.New(accesslog.WithLogger(logger)))
			d.Use(basicauth.New(
				basicauth.WithUsers(map[string]string{
					"admin": "secret",
				}),
				basicauth.WithSkipPaths("/public"),
			))

			// Public routes
			d.GET("/public", func(_ *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
					j.Result(map[string]string{"message": "public"})
				})
			})

			// Protected group
			d.Group("/admin", func(admin *dispatch.Group) {
				admin.GET("/dashboard", func(req *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
					username := basicauth.Username(req)
					return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
						j.Result(map[string]string{
							"user":    username,
							"message": "dashboard",
						})
					})
				})
			})

			// Test public route
			req1 := httptest.NewRequest(http.MethodGet, "/public", nil)
			w1 := httptest.NewRecorder()
			d.ServeHTTP(w1, req1)

			Expect(w1.Code).To(Equal(http.StatusOK))
			Expect(w1.Body.String()).To(ContainSubstring("public"))
			Expect(w1.Header().Get("X-Request-ID")).NotTo(BeEmpty())

			// Test protected route without auth
			req2 := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			w2 := httptest.NewRecorder()
			d.ServeHTTP(w2, req2)

			Expect(w2.Code).To(Equal(http.StatusUnauthorized))

			// Test protected route with auth
			req3 := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			req3.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
			w3 := httptest.NewRecorder()
			d.ServeHTTP(w3, req3)

			Expect(w3.Code).To(Equal(http.StatusOK))
			Expect(w3.Body.String()).To(ContainSubstring("admin"))
			Expect(w3.Header().Get("X-Request-ID")).NotTo(BeEmpty())

			// Verify AccessLog captured all requests: two successes at info,
			// the rejected request at warn
			infoRecords := handler.getRecords(slog.LevelInfo)
			Expect(len(infoRecords)).To(BeNumerically(">=", 2), "AccessLog should have logged multiple requests")

			warnRecords := handler.getRecords(slog.LevelWarn)
			Expect(warnRecords).To(HaveLen(1))
			Expect(warnRecords[0].attrs["status"]).To(Equal(int64(http.StatusUnauthorized)))
		})
	})

	Describe("Canned Responses", func() {
		It("should run after hooks over the canned 404", func() {
			var buf bytes.Buffer

			d := dispatch.MustNew()
			d.Use(requestid.New())
			d.Use(accesslog.New(accesslog.WithLogger(middleware.NewCaptureLogger(&buf))))
			d.Use(security.New())

			d.GET("/known", func(_ *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
					j.Result(map[string]string{"message": "known"})
				})
			})

			req := httptest.NewRequest(http.MethodGet, "/missing", nil)
			w := httptest.NewRecorder()

			d.ServeHTTP(w, req)

			// The canned 404 still carries middleware headers
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty())
			Expect(w.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))

			// And the access log recorded it
			Expect(buf.String()).To(ContainSubstring("http request"))
			Expect(buf.String()).To(ContainSubstring(`"status":404`))
		})

		It("should run after hooks over the canned 405", func() {
			handler := newTestLogHandler()
			logger := slog.New(handler)

			d := dispatch.MustNew()
			d.Use(requestid.New())
			d.Use(accesslog.New(accesslog.WithLogger(logger)))

			d.GET("/resource", func(_ *dispatch.Request, _ *dispatch.State, _ dispatch.Captures) *dispatch.Response {
				return dispatch.NewResponse().WithJSON(func(j *dispatch.JSONBuilder) {
					j.Result(map[string]string{"message": "resource"})
				})
			})

			req := httptest.NewRequest(http.MethodPost, "/resource", nil)
			w := httptest.NewRecorder()

			d.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
			Expect(w.Header().Get("Allow")).To(Equal("GET"))
			Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty())

			warnRecords := handler.getRecords(slog.LevelWarn)
			Expect(warnRecords).To(HaveLen(1))
			Expect(warnRecords[0].attrs["status"]).To(Equal(int64(http.StatusMethodNotAllowed)))
		})
	})
})
