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
	"net/url"
	"sync"

	"kori.dev/kori/logging"
	"kori.dev/kori/router"
	"kori.dev/kori/schema"
)

// keyID gives every [Key] a unique identity. Two keys created with the same
// name are still distinct keys.
type keyID struct {
	name string
}

// Key is a typed key for values stored on an [Env] or a [Context]. The type
// parameter pins the value type at the access site, so readers and writers
// of the same key cannot disagree on what it holds.
//
// Keys are created once, typically at package level:
//
//	var poolKey = kori.NewKey[*pgxpool.Pool]("db-pool")
type Key[T any] struct {
	id *keyID
}

// NewKey creates a unique typed key. The name is used only for diagnostics.
func NewKey[T any](name string) Key[T] {
	return Key[T]{id: &keyID{name: name}}
}

// Name returns the diagnostic name the key was created with.
func (k Key[T]) Name() string {
	return k.id.name
}

// Env is the application-level state bag shared by every request.
//
// Start hooks populate it during [Kori.Start] and register teardown with
// [Env.Defer]; afterwards it is read-mostly. Writes are guarded, so a
// request handler may also cache values on it safely.
type Env struct {
	mu       sync.RWMutex
	values   map[*keyID]any
	cleanups []func(ctx context.Context) error
	logger   logging.Logger
}

func newEnv(logger logging.Logger) *Env {
	return &Env{values: make(map[*keyID]any), logger: logger}
}

// Logger returns the application logger.
func (e *Env) Logger() logging.Logger {
	return e.logger
}

// Defer registers a cleanup to run when the handle is closed. Cleanups run
// in reverse registration order, mirroring defer.
func (e *Env) Defer(fn func(ctx context.Context) error) {
	e.mu.Lock()
	e.cleanups = append(e.cleanups, fn)
	e.mu.Unlock()
}

// close runs the cleanups in reverse order, collecting every error.
func (e *Env) close(ctx context.Context) error {
	e.mu.Lock()
	cleanups := e.cleanups
	e.cleanups = nil
	e.mu.Unlock()

	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		if err := cleanups[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// SetEnv stores a value on the env under a typed key.
func SetEnv[T any](e *Env, k Key[T], v T) {
	e.mu.Lock()
	e.values[k.id] = v
	e.mu.Unlock()
}

// GetEnv returns the value stored under a typed key, if any.
func GetEnv[T any](e *Env, k Key[T]) (T, bool) {
	e.mu.RLock()
	raw, ok := e.values[k.id]
	e.mu.RUnlock()
	if !ok {
		var zero T

		return zero, false
	}
	v, ok := raw.(T)

	return v, ok
}

// MustGetEnv returns the value stored under a typed key or panics. Intended
// for handler setup where the start hook is known to have run.
func MustGetEnv[T any](e *Env, k Key[T]) T {
	v, ok := GetEnv(e, k)
	if !ok {
		panic("kori: env value missing for key " + k.Name())
	}

	return v
}

// Context carries one request through the pipeline. It is not safe for use
// after the request completes and must not be retained.
type Context struct {
	req       *http.Request
	env       *Env
	logger    logging.Logger
	requestID string

	routeID  router.RouteID
	template string
	params   map[string]string
	queries  url.Values

	validated *schema.RequestValue

	values   map[*keyID]any
	deferred []func()

	resp *Response
}

// Request returns the underlying HTTP request.
func (c *Context) Request() *http.Request {
	return c.req
}

// Context returns the request's context.
func (c *Context) Context() context.Context {
	return c.req.Context()
}

// Env returns the shared application env.
func (c *Context) Env() *Env {
	return c.env
}

// Logger returns the request-scoped logger, bound with the request id.
func (c *Context) Logger() logging.Logger {
	return c.logger
}

// RequestID returns the id assigned to this request.
func (c *Context) RequestID() string {
	return c.requestID
}

// RouteID returns the matched route's identifier, or the invalid zero id
// when no route matched.
func (c *Context) RouteID() router.RouteID {
	return c.routeID
}

// RouteTemplate returns the matched route's path template, e.g.
// "/users/:id". Empty when no route matched.
func (c *Context) RouteTemplate() string {
	return c.template
}

// Param returns the path parameter captured under name, or "".
func (c *Context) Param(name string) string {
	return c.params[name]
}

// Params returns all captured path parameters.
func (c *Context) Params() map[string]string {
	return c.params
}

// Query returns the first query value for key, or "".
func (c *Context) Query(key string) string {
	return c.queryValues().Get(key)
}

// Queries returns the decoded query string.
func (c *Context) Queries() url.Values {
	return c.queryValues()
}

func (c *Context) queryValues() url.Values {
	if c.queries == nil {
		c.queries = c.req.URL.Query()
	}

	return c.queries
}

// Validated returns the aggregated request validation result. It is non-nil
// only for routes with a request schema, after validation passed.
func (c *Context) Validated() *schema.RequestValue {
	return c.validated
}

// Defer registers a callback to run once the response has been written (or
// the request abandoned). Callbacks run in reverse registration order; a
// panicking callback is recovered and logged, and the remaining callbacks
// still run.
func (c *Context) Defer(fn func()) {
	c.deferred = append(c.deferred, fn)
}

// Set stores a request-scoped value under a typed key. Request hooks use
// this to hand values to the handler.
func Set[T any](c *Context, k Key[T], v T) {
	if c.values == nil {
		c.values = make(map[*keyID]any)
	}
	c.values[k.id] = v
}

// Get returns the request-scoped value stored under a typed key, if any.
func Get[T any](c *Context, k Key[T]) (T, bool) {
	raw, ok := c.values[k.id]
	if !ok {
		var zero T

		return zero, false
	}
	v, ok := raw.(T)

	return v, ok
}
