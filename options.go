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
	"fmt"
	"log/slog"
	"time"
)

// Option configures a Dispatcher at construction time.
type Option func(*config)

// config holds construction-time settings. Request-time behavior never
// consults it directly; everything here is resolved in New.
type config struct {
	logger          *slog.Logger
	timeouts        serverTimeouts
	shutdownTimeout time.Duration
	enableH2C       bool
	useEnv          bool
	envPrefix       string
	addr            string
}

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

func defaultConfig() config {
	return config{
		timeouts: serverTimeouts{
			readHeader: 5 * time.Second,
			read:       15 * time.Second,
			write:      30 * time.Second,
			idle:       60 * time.Second,
		},
		shutdownTimeout: 30 * time.Second,
		envPrefix:       "DISPATCH_",
	}
}

// validate rejects configurations that would misbehave at serve time.
func (c *config) validate() error {
	for _, t := range []struct {
		name  string
		value time.Duration
	}{
		{"read header", c.timeouts.readHeader},
		{"read", c.timeouts.read},
		{"write", c.timeouts.write},
		{"idle", c.timeouts.idle},
		{"shutdown", c.shutdownTimeout},
	} {
		if t.value <= 0 {
			return fmt.Errorf("%w: %s", ErrServerTimeoutInvalid, t.name)
		}
	}
	return nil
}

// applyEnv folds environment overrides into the config. Unset variables
// leave the configured values untouched.
func (c *config) applyEnv(e envConfig) {
	if e.Addr != "" {
		c.addr = e.Addr
	}
	if e.ReadHeaderTimeout > 0 {
		c.timeouts.readHeader = e.ReadHeaderTimeout
	}
	if e.ReadTimeout > 0 {
		c.timeouts.read = e.ReadTimeout
	}
	if e.WriteTimeout > 0 {
		c.timeouts.write = e.WriteTimeout
	}
	if e.IdleTimeout > 0 {
		c.timeouts.idle = e.IdleTimeout
	}
	if e.ShutdownTimeout > 0 {
		c.shutdownTimeout = e.ShutdownTimeout
	}
}

// WithLogger sets the structured logger used for serve-time events (listen,
// shutdown, recovered panics). The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithServerTimeouts configures HTTP server timeouts.
//
// Defaults:
//
//	ReadHeaderTimeout: 5s  - time to read request headers
//	ReadTimeout:      15s  - time to read the full request
//	WriteTimeout:     30s  - time to write the response
//	IdleTimeout:      60s  - keep-alive idle time
//
// Example:
//
//	d := dispatch.MustNew(dispatch.WithServerTimeouts(
//	    10*time.Second,  // ReadHeaderTimeout
//	    30*time.Second,  // ReadTimeout
//	    60*time.Second,  // WriteTimeout
//	    120*time.Second, // IdleTimeout
//	))
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(c *config) {
		c.timeouts = serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// WithShutdownTimeout bounds how long Run and Start wait for in-flight
// requests during graceful shutdown. Default 30s.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.shutdownTimeout = timeout
	}
}

// WithH2C serves HTTP/2 over cleartext TCP. Use only in development or
// behind a trusted load balancer that terminates TLS.
func WithH2C() Option {
	return func(c *config) {
		c.enableH2C = true
	}
}

// WithEnv enables environment overrides under the DISPATCH_ prefix:
//
//	DISPATCH_ADDR                 - bind address (used when Run gets "")
//	DISPATCH_READ_HEADER_TIMEOUT  - e.g. "5s"
//	DISPATCH_READ_TIMEOUT         - e.g. "15s"
//	DISPATCH_WRITE_TIMEOUT        - e.g. "30s"
//	DISPATCH_IDLE_TIMEOUT         - e.g. "60s"
//	DISPATCH_SHUTDOWN_TIMEOUT     - e.g. "30s"
//
// Environment values take precedence over options. Parse failures surface
// from New.
func WithEnv() Option {
	return func(c *config) {
		c.useEnv = true
	}
}

// WithEnvPrefix is WithEnv with a custom variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *config) {
		c.useEnv = true
		c.envPrefix = prefix
	}
}
