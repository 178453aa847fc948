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
	"fmt"
	"net/http"
	"slices"
	"strings"

	"kori.dev/kori/logging"
	"kori.dev/kori/router"
	"kori.dev/kori/schema"
	"kori.dev/kori/validate"
)

// Kori is one instance in an application tree: a prefix, its routes, its
// hooks, and its validator. The root instance owns the shared registry and
// matcher; children created with [Kori.CreateChild] register into the same
// shared state under their combined prefix.
//
// An instance has two strict phases. Configuration — registering routes,
// hooks and children — is single-threaded and ends at [Kori.Start]. After
// Start every configuration method panics, and the returned [Handle] serves
// traffic from read-only state.
type Kori struct {
	shared *shared

	prefix    string
	validator schema.Validator

	// Request and error hooks are seeded: a child starts with a copy of its
	// parent's lists at creation time, so later additions on either side
	// stay independent.
	requestHooks []RequestHook
	errorHooks   []ErrorHook
}

// shared is the state one instance tree has exactly one of.
type shared struct {
	registry *router.Registry
	matcher  router.Matcher
	match    router.MatchFunc

	// seen maps "METHOD path" to the registering route id for duplicate
	// detection across the whole tree.
	seen map[string]router.RouteID

	// runtimes carries the executable side of each record: concrete handler
	// and resolved validation functions.
	runtimes map[router.RouteID]*routeRuntime

	// Start hooks are tree-wide so seeded copies cannot run them twice.
	startHooks []StartHook

	logger logging.Logger
	system logging.Logger

	notFound  Handler
	onReqFail RequestFailureHandler
	onResFail ResponseFailureHandler

	// root backs the hook fallback for requests that match no route.
	root *Kori

	started bool
}

// routeRuntime is the executable state of one route.
type routeRuntime struct {
	handler     Handler
	reqValidate validate.RequestFunc
	resValidate validate.ResponseFunc
	onReqFail   RequestFailureHandler
	onResFail   ResponseFailureHandler
	owner       *Kori
}

// New creates a root instance.
//
// Example:
//
//	app, err := kori.New(
//	    kori.WithLogger(logging.MustNew()),
//	    kori.WithValidator(jsonschema.NewValidator()),
//	)
func New(opts ...Option) (*Kori, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Noop()
	}

	matcher := cfg.matcher
	if matcher == nil {
		matcher = router.NewRadixMatcher()
	}

	k := &Kori{
		shared: &shared{
			registry:  router.NewRegistry(),
			matcher:   matcher,
			seen:      make(map[string]router.RouteID),
			runtimes:  make(map[router.RouteID]*routeRuntime),
			logger:    logger,
			system:    logger.Channel("system"),
			notFound:  cfg.notFound,
			onReqFail: cfg.onReqFail,
			onResFail: cfg.onResFail,
		},
		validator: cfg.validator,
	}
	k.shared.root = k

	return k, nil
}

// MustNew is [New] that panics on configuration error.
func MustNew(opts ...Option) *Kori {
	k, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("kori.MustNew: %v", err))
	}

	return k
}

// ChildOptions configures [Kori.CreateChild].
type ChildOptions struct {
	// Prefix is joined onto the parent's prefix for every route the child
	// registers. Empty means same prefix as the parent.
	Prefix string

	// Validator overrides the inherited validator for routes registered on
	// the child.
	Validator schema.Validator
}

// CreateChild creates a child instance registering into the same shared
// registry and matcher under the combined prefix.
//
// The child starts with copies of the parent's request and error hook lists;
// hooks added to either instance afterwards do not affect the other. Start
// hooks are tree-wide and are never copied.
func (k *Kori) CreateChild(opts ChildOptions) *Kori {
	k.ensureConfigurable("create child")

	validator := opts.Validator
	if validator == nil {
		validator = k.validator
	}

	return &Kori{
		shared:       k.shared,
		prefix:       router.JoinPaths(k.prefix, opts.Prefix),
		validator:    validator,
		requestHooks: slices.Clone(k.requestHooks),
		errorHooks:   slices.Clone(k.errorHooks),
	}
}

// OnStart registers a start hook. Start hooks run once at [Kori.Start], in
// registration order across the whole tree, regardless of which instance
// registered them.
func (k *Kori) OnStart(h StartHook) *Kori {
	k.ensureConfigurable("register start hook")
	k.shared.startHooks = append(k.shared.startHooks, h)

	return k
}

// OnRequest registers a request hook on this instance. The hook runs for
// requests whose matched route was registered by this instance or one of its
// later-created children (through hook seeding).
func (k *Kori) OnRequest(h RequestHook) *Kori {
	k.ensureConfigurable("register request hook")
	k.requestHooks = append(k.requestHooks, h)

	return k
}

// OnError registers an error hook on this instance, with the same ownership
// rule as [Kori.OnRequest].
func (k *Kori) OnError(h ErrorHook) *Kori {
	k.ensureConfigurable("register error hook")
	k.errorHooks = append(k.errorHooks, h)

	return k
}

// Route registers a handler for an arbitrary method and path template.
//
// Configuration errors fail immediately by panicking: a duplicate
// (method, path) pair, an invalid template, or a schema whose provider tag
// does not match the instance's validator.
func (k *Kori) Route(method, path string, h Handler, opts ...RouteOption) *Kori {
	k.ensureConfigurable("register route")
	if h == nil {
		panic(fmt.Sprintf("kori: nil handler for %s %s", method, path))
	}

	rc := &routeConfig{}
	for _, opt := range opts {
		opt(rc)
	}

	method = strings.ToUpper(method)
	full := router.NormalizePath(router.JoinPaths(k.prefix, path))

	key := method + " " + full
	if prev, dup := k.shared.seen[key]; dup {
		panic(fmt.Errorf("%w: %s %s (already registered as route %d)",
			router.ErrDuplicateRoute, method, full, prev))
	}

	if (rc.request != nil || rc.response != nil) && k.validator == nil {
		panic(fmt.Errorf("kori: route %s %s declares a schema but the instance has no validator", method, full))
	}

	reqFn, err := validate.NewRequestFunc(k.validator, rc.request)
	if err != nil {
		panic(fmt.Errorf("kori: route %s %s: %w", method, full, err))
	}
	resFn, err := validate.NewResponseFunc(k.validator, rc.response)
	if err != nil {
		panic(fmt.Errorf("kori: route %s %s: %w", method, full, err))
	}

	id := k.shared.registry.Register(&router.Record{
		Method:                      method,
		Path:                        full,
		Handler:                     h,
		RequestSchema:               rc.request,
		ResponseSchema:              rc.response,
		OnRequestValidationFailure:  rc.onReqFail,
		OnResponseValidationFailure: rc.onResFail,
		Meta:                        rc.meta,
	})

	if err := k.shared.matcher.AddRoute(method, full, id); err != nil {
		panic(fmt.Errorf("kori: route %s %s: %w", method, full, err))
	}

	k.shared.seen[key] = id
	k.shared.runtimes[id] = &routeRuntime{
		handler:     h,
		reqValidate: reqFn,
		resValidate: resFn,
		onReqFail:   rc.onReqFail,
		onResFail:   rc.onResFail,
		owner:       k,
	}

	return k
}

// Get registers a GET route.
func (k *Kori) Get(path string, h Handler, opts ...RouteOption) *Kori {
	return k.Route(http.MethodGet, path, h, opts...)
}

// Post registers a POST route.
func (k *Kori) Post(path string, h Handler, opts ...RouteOption) *Kori {
	return k.Route(http.MethodPost, path, h, opts...)
}

// Put registers a PUT route.
func (k *Kori) Put(path string, h Handler, opts ...RouteOption) *Kori {
	return k.Route(http.MethodPut, path, h, opts...)
}

// Delete registers a DELETE route.
func (k *Kori) Delete(path string, h Handler, opts ...RouteOption) *Kori {
	return k.Route(http.MethodDelete, path, h, opts...)
}

// Patch registers a PATCH route.
func (k *Kori) Patch(path string, h Handler, opts ...RouteOption) *Kori {
	return k.Route(http.MethodPatch, path, h, opts...)
}

// Head registers a HEAD route. Paths without an explicit HEAD route still
// answer HEAD requests through their GET route, with the body discarded.
func (k *Kori) Head(path string, h Handler, opts ...RouteOption) *Kori {
	return k.Route(http.MethodHead, path, h, opts...)
}

// Options registers an OPTIONS route.
func (k *Kori) Options(path string, h Handler, opts ...RouteOption) *Kori {
	return k.Route(http.MethodOptions, path, h, opts...)
}

// Use applies a plugin to this instance and returns the instance the plugin
// hands back, which may be a child it created.
func (k *Kori) Use(p Plugin) *Kori {
	k.ensureConfigurable("apply plugin")

	return p(k)
}

// Routes returns every registered route record in registration order, for
// the whole tree. Intended for introspection (route listings, documentation
// generators), not for the request path.
func (k *Kori) Routes() []*router.Record {
	return k.shared.registry.All()
}

// Prefix returns this instance's full prefix chain.
func (k *Kori) Prefix() string {
	return k.prefix
}

// Start freezes configuration, compiles the matcher, and runs the start
// hooks in registration order. It returns a [Handle] serving the whole tree.
//
// If a start hook fails, cleanups registered so far unwind in reverse order
// and Start returns the hook's error. Calling Start twice on the same tree
// panics.
func (k *Kori) Start(ctx context.Context) (*Handle, error) {
	s := k.shared
	if s.started {
		panic(fmt.Errorf("%w: Start called twice", ErrStarted))
	}
	s.started = true

	match, err := s.matcher.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile matcher: %w", err)
	}
	s.match = match

	env := newEnv(s.logger)
	for _, hook := range s.startHooks {
		if err := hook(ctx, env); err != nil {
			if cerr := env.close(ctx); cerr != nil {
				s.system.Error("cleanup after failed start hook", "error", cerr)
			}

			return nil, fmt.Errorf("start hook: %w", err)
		}
	}

	s.system.Info("instance started", "routes", s.registry.Len())

	return &Handle{shared: s, env: env}, nil
}

// ensureConfigurable panics when the configuration phase is over.
func (k *Kori) ensureConfigurable(op string) {
	if k.shared.started {
		panic(fmt.Errorf("%w: cannot %s", ErrStarted, op))
	}
}
