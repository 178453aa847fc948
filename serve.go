// Copyright 2025 The Kori Authors
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

package kori

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Handle is a started instance tree: an [http.Handler] over read-only route
// state plus the application env built by the start hooks.
//
// A Handle plugs into any net/http server; [Handle.Listen] is the batteries-
// included path with graceful shutdown.
type Handle struct {
	shared *shared
	env    *Env
}

// ServeHTTP drives one request through the pipeline.
func (h *Handle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.newExecutor(w, r).run()
}

// Env returns the application env built during [Kori.Start].
func (h *Handle) Env() *Env {
	return h.env
}

// Close unwinds the env cleanups registered by start hooks, in reverse
// order, joining any errors.
func (h *Handle) Close(ctx context.Context) error {
	return h.env.close(ctx)
}

// ServeOption configures [Handle.Listen].
type ServeOption func(*serveConfig)

type serveConfig struct {
	h2c             bool
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// WithH2C enables HTTP/2 over cleartext, for servers running behind a
// TLS-terminating proxy.
func WithH2C() ServeOption {
	return func(c *serveConfig) { c.h2c = true }
}

// WithReadTimeout sets the server read timeout. Default 15s.
func WithReadTimeout(d time.Duration) ServeOption {
	return func(c *serveConfig) { c.readTimeout = d }
}

// WithWriteTimeout sets the server write timeout. Default 15s.
func WithWriteTimeout(d time.Duration) ServeOption {
	return func(c *serveConfig) { c.writeTimeout = d }
}

// WithShutdownTimeout bounds graceful shutdown. Default 10s.
func WithShutdownTimeout(d time.Duration) ServeOption {
	return func(c *serveConfig) { c.shutdownTimeout = d }
}

// Listen serves the handle on addr until SIGINT or SIGTERM, then shuts down
// gracefully and closes the handle.
func (h *Handle) Listen(addr string, opts ...ServeOption) error {
	cfg := &serveConfig{
		readTimeout:     15 * time.Second,
		writeTimeout:    15 * time.Second,
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var handler http.Handler = h
	if cfg.h2c {
		handler = h2c.NewHandler(h, &http2.Server{})
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.readTimeout,
		WriteTimeout: cfg.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		h.shared.system.Info("listening", "addr", addr, "h2c", cfg.h2c)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err

			return
		}
		errCh <- nil
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if cerr := h.Close(context.Background()); cerr != nil {
			return errors.Join(err, cerr)
		}

		return err
	case sig := <-stop:
		h.shared.system.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	shutdownErr := srv.Shutdown(ctx)
	closeErr := h.Close(ctx)

	return errors.Join(shutdownErr, closeErr)
}
