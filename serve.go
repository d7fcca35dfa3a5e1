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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// defaultAddr is used when neither the Run argument nor DISPATCH_ADDR names
// a bind address.
const defaultAddr = ":8080"

// Run binds addr and serves until the process receives SIGINT or SIGTERM,
// then drains in-flight requests within the shutdown timeout. It is the
// whole serving lifecycle for the common case:
//
//	d := dispatch.MustNew()
//	d.GET("/", home)
//	log.Fatal(d.Run(":3000"))
//
// An empty addr falls back to the environment address (WithEnv), then to
// ":8080". Run returns nil after a clean shutdown.
func (d *Dispatcher) Run(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return d.Start(ctx, addr)
}

// Start serves until ctx is canceled, then shuts down gracefully. Use it
// when the caller owns the lifetime (tests, supervisors, multi-server
// programs); Run is Start bound to process signals.
func (d *Dispatcher) Start(ctx context.Context, addr string) error {
	d.freeze()
	srv := d.buildServer(d.resolveAddr(addr))

	d.serverMu.Lock()
	d.server = srv
	d.serverMu.Unlock()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", srv.Addr, err)
	}
	d.logger.Info("dispatch listening", slog.String("addr", ln.Addr().String()))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// The trigger context is already done; shutdown gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.cfg.shutdownTimeout)
	defer cancel()

	d.logger.Info("dispatch shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serverErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server started by Run or Start, waiting for in-flight
// requests until ctx expires. It is safe to call before anything is
// serving.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.serverMu.Lock()
	srv := d.server
	d.serverMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// buildServer assembles the tuned http.Server around the dispatcher,
// wrapping the handler for h2c when enabled.
func (d *Dispatcher) buildServer(addr string) *http.Server {
	h := http.Handler(d)
	if d.cfg.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
		d.logger.Warn("h2c enabled; use only in dev or behind a trusted LB")
	}
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: d.cfg.timeouts.readHeader,
		ReadTimeout:       d.cfg.timeouts.read,
		WriteTimeout:      d.cfg.timeouts.write,
		IdleTimeout:       d.cfg.timeouts.idle,
	}
}

// resolveAddr picks the bind address: explicit argument, then environment,
// then the default.
func (d *Dispatcher) resolveAddr(addr string) string {
	if addr != "" {
		return addr
	}
	if d.cfg.addr != "" {
		return d.cfg.addr
	}
	return defaultAddr
}
