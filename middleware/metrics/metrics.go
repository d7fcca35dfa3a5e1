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

package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rivaas.dev/dispatch"
)

var (
	// DefaultDurationBuckets are histogram boundaries for request duration in seconds.
	DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// DefaultSizeBuckets are histogram boundaries for response size in bytes.
	// Covers 100B to 10MB.
	DefaultSizeBuckets = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
)

// startKey carries the request start time from Before to After.
type startKey struct{}

// Option defines functional options for metrics middleware configuration.
type Option func(*config)

// config holds the configuration for the metrics middleware.
type config struct {
	// registerer receives the collectors
	registerer prometheus.Registerer

	// namespace prefixes every metric name
	namespace string

	// durationBuckets are the duration histogram boundaries
	durationBuckets []float64

	// sizeBuckets are the response size histogram boundaries
	sizeBuckets []float64
}

// defaultConfig returns the default configuration for metrics middleware.
func defaultConfig() *config {
	return &config{
		registerer:      prometheus.DefaultRegisterer,
		durationBuckets: DefaultDurationBuckets,
		sizeBuckets:     DefaultSizeBuckets,
	}
}

// WithRegisterer sets the Prometheus registerer receiving the collectors.
// Defaults to prometheus.DefaultRegisterer. Pass a private registry when
// running several dispatchers in one process.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	metrics.New(metrics.WithRegisterer(registry))
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(cfg *config) {
		cfg.registerer = registerer
	}
}

// WithNamespace prefixes all metric names, separated by an underscore.
//
// Example:
//
//	metrics.New(metrics.WithNamespace("checkout")) // checkout_http_requests_total
func WithNamespace(namespace string) Option {
	return func(cfg *config) {
		cfg.namespace = namespace
	}
}

// WithDurationBuckets sets the histogram boundaries for request duration.
// Defaults to [DefaultDurationBuckets].
//
// Example:
//
//	metrics.New(metrics.WithDurationBuckets(0.01, 0.1, 1, 10))
func WithDurationBuckets(buckets ...float64) Option {
	return func(cfg *config) {
		cfg.durationBuckets = buckets
	}
}

// WithSizeBuckets sets the histogram boundaries for response size.
// Defaults to [DefaultSizeBuckets].
func WithSizeBuckets(buckets ...float64) Option {
	return func(cfg *config) {
		cfg.sizeBuckets = buckets
	}
}

// middleware observes every request on a fixed set of collectors. Labels are
// method, route template, and status code; using the route template instead
// of the raw path keeps cardinality bounded.
type middleware struct {
	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
}

// New returns middleware that records request metrics on a Prometheus
// registry:
//
//   - http_requests_total: counter by method, route, status
//   - http_errors_total: counter by method, route, status (status >= 400)
//   - http_request_duration_seconds: histogram by method, route, status
//   - http_response_size_bytes: histogram by method, route, status
//   - http_requests_active: gauge of in-flight requests
//
// Registration failures panic. New runs during dispatcher construction, so
// a duplicate registration is a startup defect, not a runtime condition.
//
// Basic usage, with exposition on a dedicated port:
//
//	d := dispatch.MustNew()
//	d.Use(metrics.New())
//	go http.ListenAndServe(":9090", promhttp.Handler()) //nolint:errcheck
//
// A private registry keeps collectors isolated:
//
//	registry := prometheus.NewRegistry()
//	d.Use(metrics.New(metrics.WithRegisterer(registry)))
//	go http.ListenAndServe(":9090", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})) //nolint:errcheck
func New(opts ...Option) dispatch.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	labels := []string{"method", "route", "status"}
	m := &middleware{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, labels),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "http_errors_total",
			Help:      "Total number of HTTP requests answered with status 400 or above.",
		}, labels),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   cfg.durationBuckets,
		}, labels),
		responseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "http_response_size_bytes",
			Help:      "Size of HTTP response bodies in bytes.",
			Buckets:   cfg.sizeBuckets,
		}, labels),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_active",
			Help:      "Number of active HTTP requests.",
		}),
	}

	cfg.registerer.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.requestDuration,
		m.responseSize,
		m.activeRequests,
	)

	return m
}

// Before marks the request in-flight and records its start time.
func (m *middleware) Before(req *dispatch.Request, state *dispatch.State) dispatch.Outcome {
	m.activeRequests.Inc()
	ctx := context.WithValue(req.Context(), startKey{}, time.Now())
	return dispatch.Continue(req.WithContext(ctx))
}

// After observes the final response.
func (m *middleware) After(req *dispatch.Request, res *dispatch.Response, state *dispatch.State) *dispatch.Response {
	m.activeRequests.Dec()

	route := dispatch.RoutePattern(req)
	if route == "" {
		route = "unmatched"
	}
	status := strconv.Itoa(res.Status())
	labels := prometheus.Labels{
		"method": req.Method(),
		"route":  route,
		"status": status,
	}

	m.requestsTotal.With(labels).Inc()
	if res.Status() >= 400 {
		m.errorsTotal.With(labels).Inc()
	}
	if start, ok := req.Context().Value(startKey{}).(time.Time); ok {
		m.requestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
	if size := len(res.Body()); size > 0 {
		m.responseSize.With(labels).Observe(float64(size))
	}

	return res
}
