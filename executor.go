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
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"

	"kori.dev/kori/problem"
	"kori.dev/kori/router"
	"kori.dev/kori/schema"
	"kori.dev/kori/validate"
)

// execState enumerates the request pipeline stages. Every request walks the
// happy path in order; any failure diverts to stateError, which always
// reaches stateBuild so something is written.
type execState int

const (
	stateStart execState = iota
	stateInstanceHooks
	stateMatch
	stateRequestValidate
	stateHandle
	stateResponseValidate
	stateBuild
	stateError
	stateDone
)

// executor drives one request through the pipeline.
type executor struct {
	shared *shared
	env    *Env

	w http.ResponseWriter
	r *http.Request
	c *Context

	match *router.Match
	rt    *routeRuntime
	owner *Kori

	err     error
	written bool
}

func (h *Handle) newExecutor(w http.ResponseWriter, r *http.Request) *executor {
	return &executor{shared: h.shared, env: h.env, w: w, r: r}
}

// run walks the state machine. Deferred callbacks and panic recovery are
// handled here so every exit path passes through them.
func (e *executor) run() {
	defer e.runDeferred()
	defer e.recoverPanic()

	state := stateStart
	for state != stateDone {
		switch state {
		case stateStart:
			state = e.start()
		case stateInstanceHooks:
			state = e.instanceHooks()
		case stateMatch:
			state = e.matchRoute()
		case stateRequestValidate:
			state = e.requestValidate()
		case stateHandle:
			state = e.handle()
		case stateResponseValidate:
			state = e.responseValidate()
		case stateBuild:
			state = e.build()
		case stateError:
			state = e.errorState()
		default:
			state = stateDone
		}
	}
}

// start creates the request context and performs the route lookup.
//
// The lookup happens before the instance hooks run, because hook ownership
// follows the matched route: a request matching a child's route runs the
// child's hook list, and only unmatched requests fall back to the root's.
// Hooks cannot observe the early lookup, so the stage order they see is
// unchanged.
func (e *executor) start() execState {
	requestID := uuid.NewString()

	e.c = &Context{
		req:       e.r,
		env:       e.env,
		requestID: requestID,
		logger:    e.shared.logger.With("request_id", requestID),
	}

	if m, ok := e.shared.match(e.r.Method, e.r.URL.RequestURI()); ok {
		e.match = m
		rt, found := e.shared.runtimes[m.ID]
		if !found {
			// A compiled matcher can only return ids minted by the shared
			// registry, so a miss here means the shared state diverged.
			e.shared.system.Error("matched route has no runtime",
				"route_id", int(m.ID), "method", e.r.Method, "path", e.r.URL.Path)
			e.match = nil
		} else {
			e.rt = rt
			e.owner = rt.owner
		}
	}

	return stateInstanceHooks
}

// instanceHooks runs the owning instance's request hooks in registration
// order. A hook response short-circuits straight to the build stage.
func (e *executor) instanceHooks() execState {
	hooks := e.ownerHooks()
	for _, hook := range hooks {
		resp, err := hook(e.c)
		if err != nil {
			e.err = err

			return stateError
		}
		if resp != nil {
			e.c.resp = resp

			return stateBuild
		}
	}

	return stateMatch
}

// matchRoute resolves the lookup result: unmatched requests get the
// not-found response, matched ones proceed with params bound.
func (e *executor) matchRoute() execState {
	if e.match == nil {
		return e.notFound()
	}

	e.c.routeID = e.match.ID
	e.c.template = e.match.Template
	e.c.params = e.match.Params

	return stateRequestValidate
}

func (e *executor) requestValidate() execState {
	if e.rt.reqValidate == nil {
		return stateHandle
	}

	value, failure := e.rt.reqValidate(e.r.Context(), &validate.RequestInput{
		Params:      e.c.params,
		Queries:     e.c.Queries(),
		Headers:     e.r.Header,
		ContentType: e.r.Header.Get("Content-Type"),
		Body:        e.r.Body,
	})
	if failure != nil {
		return e.requestFailure(failure)
	}

	e.c.validated = value

	return stateHandle
}

func (e *executor) handle() execState {
	if err := e.rt.handler(e.c); err != nil {
		e.err = err

		return stateError
	}
	if e.c.resp == nil {
		e.err = fmt.Errorf("%w: %s %s", ErrNoResponse, e.r.Method, e.c.template)

		return stateError
	}

	return stateResponseValidate
}

func (e *executor) responseValidate() execState {
	if e.rt == nil || e.rt.resValidate == nil || e.c.resp == nil {
		return stateBuild
	}

	resp := e.c.resp
	failure := e.rt.resValidate(e.r.Context(), &validate.ResponseInput{
		StatusCode:  resp.Status(),
		ContentType: resp.ContentType(),
		Body:        resp.BodyValue(),
		Streaming:   resp.IsStreaming(),
	})
	if failure != nil {
		return e.responseFailure(failure)
	}

	return stateBuild
}

// build writes the response. HEAD requests served by a GET route run the
// full pipeline and drop the body here.
func (e *executor) build() execState {
	resp := e.c.resp
	if resp == nil {
		resp = TextResponse(http.StatusInternalServerError, "internal server error")
	}

	discardBody := e.r.Method == http.MethodHead
	e.written = true
	if err := resp.write(e.w, discardBody); err != nil {
		// Headers are already out; all that is left is to log.
		e.shared.system.Error("write response",
			"error", err, "request_id", e.c.requestID)
	}

	return stateDone
}

// errorState consults the owning instance's error hooks in registration
// order. The first response wins; hook errors are logged and skipped. With
// no hook response the built-in problem payload applies.
func (e *executor) errorState() execState {
	e.c.resp = nil

	hooks := e.ownerErrorHooks()
	for _, hook := range hooks {
		resp, err := hook(e.c, e.err)
		if err != nil {
			e.shared.system.Error("error hook failed",
				"error", err, "original_error", e.err, "request_id", e.c.requestID)

			continue
		}
		if resp != nil {
			e.c.resp = resp

			return stateBuild
		}
	}

	e.shared.system.Error("request failed",
		"error", e.err, "method", e.r.Method, "path", e.r.URL.Path,
		"request_id", e.c.requestID)

	resp, err := ProblemResponse(problem.InternalServerError("the request could not be processed"))
	if err != nil {
		resp = TextResponse(http.StatusInternalServerError, "internal server error")
	}
	e.c.resp = resp

	return stateBuild
}

// notFound produces the unmatched-route response through the configured
// handler, falling back to the built-in 404 problem payload.
func (e *executor) notFound() execState {
	if e.shared.notFound != nil {
		if err := e.shared.notFound(e.c); err != nil {
			e.err = err

			return stateError
		}
		if e.c.resp != nil {
			return stateBuild
		}
	}

	resp, err := ProblemResponse(problem.NotFound("no route matches " + e.r.Method + " " + e.r.URL.Path))
	if err != nil {
		e.err = err

		return stateError
	}
	e.c.resp = resp

	return stateBuild
}

// requestFailure walks the failure handler chain: route-level, then
// instance-level, then the built-in payload.
func (e *executor) requestFailure(failure *schema.RequestFailure) execState {
	for _, h := range []RequestFailureHandler{e.rt.onReqFail, e.shared.onReqFail} {
		if h == nil {
			continue
		}
		resp, err := h(e.c, failure)
		if err != nil {
			e.err = err

			return stateError
		}
		if resp != nil {
			e.c.resp = resp

			return stateBuild
		}
	}

	status := requestFailureStatus(failure)
	p := problem.New(status).WithDetail("request validation failed")
	if fields := failureFields(failure); len(fields) > 0 {
		p.WithExtension("errors", fields)
	}

	resp, err := ProblemResponse(p)
	if err != nil {
		e.err = err

		return stateError
	}
	e.c.resp = resp

	return stateBuild
}

// responseFailure mirrors requestFailure for the response side, with one
// difference: a response validation failure is non-fatal by default. The
// built response only gets replaced when a handler in the chain explicitly
// returns a replacement; when the chain declines, the failure is logged and
// the original response is still written.
func (e *executor) responseFailure(failure *schema.ResponseFailure) execState {
	original := e.c.resp
	for _, h := range []ResponseFailureHandler{e.rt.onResFail, e.shared.onResFail} {
		if h == nil {
			continue
		}
		resp, err := h(e.c, failure)
		if err != nil {
			e.err = err

			return stateError
		}
		if resp != nil {
			e.c.resp = resp

			return stateBuild
		}
	}

	e.shared.system.Error("response validation failed",
		"error", failure, "status", failure.StatusCode,
		"method", e.r.Method, "path", e.c.template, "request_id", e.c.requestID)

	e.c.resp = original

	return stateBuild
}

// ownerHooks returns the request hook list for this request: the matched
// route's owning instance, or the root for unmatched requests.
func (e *executor) ownerHooks() []RequestHook {
	if e.owner != nil {
		return e.owner.requestHooks
	}

	return e.shared.root.requestHooks
}

func (e *executor) ownerErrorHooks() []ErrorHook {
	if e.owner != nil {
		return e.owner.errorHooks
	}

	return e.shared.root.errorHooks
}

// recoverPanic converts a pipeline panic into a 500, unless the response
// headers are already written, in which case it can only log.
func (e *executor) recoverPanic() {
	rec := recover()
	if rec == nil {
		return
	}

	e.shared.system.Error("panic in request pipeline",
		"panic", fmt.Sprintf("%v", rec), "method", e.r.Method,
		"path", e.r.URL.Path, "stack", string(debug.Stack()))

	if e.written {
		return
	}

	resp, err := ProblemResponse(problem.InternalServerError("the request could not be processed"))
	if err != nil {
		resp = TextResponse(http.StatusInternalServerError, "internal server error")
	}
	e.written = true
	if werr := resp.write(e.w, e.r.Method == http.MethodHead); werr != nil {
		e.shared.system.Error("write panic response", "error", werr)
	}
}

// runDeferred unwinds the context's deferred callbacks in reverse order.
// Each callback is individually recovered so one panic cannot starve the
// rest.
func (e *executor) runDeferred() {
	if e.c == nil {
		return
	}

	for i := len(e.c.deferred) - 1; i >= 0; i-- {
		func(fn func()) {
			defer func() {
				if rec := recover(); rec != nil {
					e.shared.system.Error("panic in deferred callback",
						"panic", fmt.Sprintf("%v", rec), "request_id", e.c.requestID)
				}
			}()
			fn()
		}(e.c.deferred[i])
	}
}

// requestFailureStatus maps a failure to its status code: 415 for a media
// type no schema accepts, 400 for everything else.
func requestFailureStatus(f *schema.RequestFailure) int {
	if f.Body != nil && f.Body.Kind == schema.KindUnsupportedMediaType {
		return http.StatusUnsupportedMediaType
	}

	return http.StatusBadRequest
}

// failureFields flattens a request failure into the problem payload's
// "errors" extension.
func failureFields(f *schema.RequestFailure) map[string]any {
	fields := make(map[string]any)
	add := func(name string, ff *schema.FieldFailure) {
		if ff == nil {
			return
		}
		entry := map[string]any{"kind": string(ff.Kind)}
		if len(ff.SupportedMediaTypes) > 0 {
			entry["supported_media_types"] = ff.SupportedMediaTypes
		}
		if ff.Cause != nil {
			entry["detail"] = ff.Cause.Error()
		}
		fields[name] = entry
	}

	add("params", f.Params)
	add("queries", f.Queries)
	add("headers", f.Headers)
	add("body", f.Body)

	return fields
}
