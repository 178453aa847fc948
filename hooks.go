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

	"kori.dev/kori/schema"
)

// Handler handles one matched request. Handlers build their response through
// the context ([Context.JSON], [Context.Text], [Context.Stream], ...) and
// return an error only for failures the error hooks should see.
type Handler func(c *Context) error

// StartHook runs once at [Kori.Start], in registration order across the
// whole instance tree. Hooks prepare application state on the [Env] and may
// register cleanups with [Env.Defer]; a returned error aborts startup after
// unwinding the cleanups registered so far.
type StartHook func(ctx context.Context, env *Env) error

// RequestHook runs before the handler for every request owned by its
// instance. Returning a non-nil [Response] short-circuits the pipeline: the
// response is written as-is and neither validation nor the handler run.
// Returning an error diverts to the error hooks. Returning (nil, nil)
// continues the pipeline.
type RequestHook func(c *Context) (*Response, error)

// ErrorHook observes pipeline errors. The first hook returning a non-nil
// [Response] decides the response; a hook that returns an error is logged
// and skipped. If no hook produces a response the instance falls back to a
// generic problem payload.
type ErrorHook func(c *Context, err error) (*Response, error)

// RequestFailureHandler turns a request validation failure into a response.
// Returning (nil, nil) falls through to the next handler in the chain:
// route-level, then instance-level, then the built-in problem payload.
type RequestFailureHandler func(c *Context, failure *schema.RequestFailure) (*Response, error)

// ResponseFailureHandler turns a response validation failure into a
// replacement response, with the same fall-through chain as
// [RequestFailureHandler].
type ResponseFailureHandler func(c *Context, failure *schema.ResponseFailure) (*Response, error)
