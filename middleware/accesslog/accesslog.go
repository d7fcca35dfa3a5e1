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

package accesslog

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"rivaas.dev/dispatch"
)

// startKey carries the request start time from Before to After.
type startKey struct{}

// Option defines functional options for accesslog middleware configuration.
type Option func(*config)

// config holds the configuration for the accesslog middleware.
type config struct {
	// logger receives the access log records
	logger *slog.Logger

	// excludePaths are exact paths that are never logged
	excludePaths map[string]bool

	// excludePrefixes are path prefixes that are never logged
	excludePrefixes []string

	// slowThreshold marks requests slower than this as slow; zero disables
	slowThreshold time.Duration

	// errorsOnly suppresses logs for successful fast requests
	errorsOnly bool

	// sampleRate is the fraction of successful requests to log (0.0 - 1.0)
	sampleRate float64

	// requestIDFunc extracts a correlation ID for deterministic sampling
	requestIDFunc func(req *dispatch.Request) string
}

// defaultConfig returns the default configuration for accesslog middleware.
func defaultConfig() *config {
	return &config{
		excludePaths: make(map[string]bool),
		sampleRate:   1.0,
	}
}

// WithLogger sets the structured logger receiving access records.
// Defaults to slog.Default().
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	accesslog.New(accesslog.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithExcludePaths sets exact paths to exclude from logging.
// Useful for health checks and other high-frequency noise.
//
// Example:
//
//	accesslog.New(accesslog.WithExcludePaths("/health", "/metrics"))
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, path := range paths {
			cfg.excludePaths[path] = true
		}
	}
}

// WithExcludePrefixes sets path prefixes to exclude from logging.
//
// Example:
//
//	accesslog.New(accesslog.WithExcludePrefixes("/debug", "/internal"))
func WithExcludePrefixes(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.excludePrefixes = append(cfg.excludePrefixes, prefixes...)
	}
}

// WithSlowThreshold marks requests slower than the threshold as slow.
// Slow requests log at warn level with a slow=true field and bypass
// sampling. Zero disables slow detection.
//
// Example:
//
//	accesslog.New(accesslog.WithSlowThreshold(500 * time.Millisecond))
func WithSlowThreshold(threshold time.Duration) Option {
	return func(cfg *config) {
		cfg.slowThreshold = threshold
	}
}

// WithErrorsOnly logs only requests that failed (status >= 400) or were slow.
// Useful on hot paths where success logs add no signal.
//
// Example:
//
//	accesslog.New(accesslog.WithErrorsOnly())
func WithErrorsOnly() Option {
	return func(cfg *config) {
		cfg.errorsOnly = true
	}
}

// WithSampleRate logs only the given fraction of successful requests.
// Errors and slow requests always bypass sampling. When a request ID
// function is configured the decision is deterministic per request ID,
// so retries of the same request sample identically.
//
// Example:
//
//	accesslog.New(accesslog.WithSampleRate(0.1)) // log 10% of successes
func WithSampleRate(rate float64) Option {
	return func(cfg *config) {
		cfg.sampleRate = rate
	}
}

// WithRequestIDFunc sets the function used to extract a correlation ID for
// the request_id field and for deterministic sampling.
//
// Example:
//
//	accesslog.New(accesslog.WithRequestIDFunc(func(req *dispatch.Request) string {
//	    return requestid.Get(req)
//	}))
func WithRequestIDFunc(fn func(req *dispatch.Request) string) Option {
	return func(cfg *config) {
		cfg.requestIDFunc = fn
	}
}

// middleware stamps the start time in Before and emits one log record per
// request in After, once the final response is known.
type middleware struct {
	cfg *config
}

// New returns middleware that logs one structured record per request.
//
// Each record carries method, path, status, duration_ms, bytes_sent,
// user_agent, client_ip, host, proto, and route. The level follows the
// outcome: info for success, warn for client errors and slow requests,
// error for server errors. Because the record is emitted in the after
// stage, dispatcher-generated responses (404, 405, panic recoveries) are
// logged like any other.
//
// Basic usage:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	d := dispatch.MustNew()
//	d.Use(accesslog.New(accesslog.WithLogger(logger)))
//
// Production tuning:
//
//	d.Use(accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithExcludePaths("/health"),
//	    accesslog.WithSlowThreshold(500*time.Millisecond),
//	    accesslog.WithSampleRate(0.25),
//	))
func New(opts ...Option) dispatch.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return &middleware{cfg: cfg}
}

// Before records the arrival time.
func (m *middleware) Before(req *dispatch.Request, state *dispatch.State) dispatch.Outcome {
	ctx := context.WithValue(req.Context(), startKey{}, time.Now())
	return dispatch.Continue(req.WithContext(ctx))
}

// After emits the access record for the final response.
func (m *middleware) After(req *dispatch.Request, res *dispatch.Response, state *dispatch.State) *dispatch.Response {
	if m.excluded(req.Path()) {
		return res
	}

	var duration time.Duration
	if start, ok := req.Context().Value(startKey{}).(time.Time); ok {
		duration = time.Since(start)
	}

	status := res.Status()
	slow := m.cfg.slowThreshold > 0 && duration > m.cfg.slowThreshold
	failed := status >= 400

	if m.cfg.errorsOnly && !failed && !slow {
		return res
	}

	// Errors and slow requests always log; only routine successes sample.
	if !failed && !slow && !m.sampled(req) {
		return res
	}

	attrs := []any{
		"method", req.Method(),
		"path", req.Path(),
		"status", status,
		"duration_ms", float64(duration.Nanoseconds()) / 1e6,
		"bytes_sent", len(res.Body()),
		"user_agent", req.Raw().UserAgent(),
		"client_ip", clientIP(req),
		"host", req.Raw().Host,
		"proto", req.Raw().Proto,
		"route", dispatch.RoutePattern(req),
	}
	if slow {
		attrs = append(attrs, "slow", true)
	}
	if m.cfg.requestIDFunc != nil {
		if id := m.cfg.requestIDFunc(req); id != "" {
			attrs = append(attrs, "request_id", id)
		}
	}

	switch {
	case status >= 500:
		m.cfg.logger.Error("http request", attrs...)
	case failed || slow:
		m.cfg.logger.Warn("http request", attrs...)
	default:
		m.cfg.logger.Info("http request", attrs...)
	}

	return res
}

// excluded reports whether the path is filtered out of logging.
func (m *middleware) excluded(path string) bool {
	if m.cfg.excludePaths[path] {
		return true
	}
	for _, prefix := range m.cfg.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// sampled decides whether a routine success is logged. With a request ID the
// decision hashes the ID so the same request always samples the same way;
// without one it is a coin flip at the configured rate.
func (m *middleware) sampled(req *dispatch.Request) bool {
	if m.cfg.sampleRate >= 1.0 {
		return true
	}
	if m.cfg.sampleRate <= 0 {
		return false
	}

	if m.cfg.requestIDFunc != nil {
		if id := m.cfg.requestIDFunc(req); id != "" {
			return sampleByHash(id, m.cfg.sampleRate)
		}
	}

	return rand.Float64() < m.cfg.sampleRate
}

// sampleByHash makes a deterministic sampling decision for a key.
func sampleByHash(key string, rate float64) bool {
	h := fnv.New32a()
	h.Write([]byte(key)) //nolint:errcheck // fnv never fails
	return float64(h.Sum32()%10000)/10000.0 < rate
}

// clientIP extracts the peer address without the port. Proxy headers are not
// consulted; deployments behind a proxy should log the forwarded address at
// the edge.
func clientIP(req *dispatch.Request) string {
	remote := req.Raw().RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}

	return remote
}
