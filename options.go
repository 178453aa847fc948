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
	"kori.dev/kori/logging"
	"kori.dev/kori/router"
	"kori.dev/kori/schema"
)

// Option configures a root instance at construction.
type Option func(*config)

// config collects construction options before the instance is assembled.
type config struct {
	logger    logging.Logger
	matcher   router.Matcher
	validator schema.Validator
	notFound  Handler
	onReqFail RequestFailureHandler
	onResFail ResponseFailureHandler
}

// WithLogger sets the application logger. Defaults to [logging.Noop]; the
// framework derives a "system" channel from it for its own diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMatcher swaps the route matcher implementation. Defaults to
// [router.NewRadixMatcher].
func WithMatcher(m router.Matcher) Option {
	return func(c *config) { c.matcher = m }
}

// WithValidator sets the schema validator for routes registered on the root
// instance. Children inherit it unless they override it.
func WithValidator(v schema.Validator) Option {
	return func(c *config) { c.validator = v }
}

// WithNotFoundHandler replaces the built-in 404 problem response for
// unmatched requests.
func WithNotFoundHandler(h Handler) Option {
	return func(c *config) { c.notFound = h }
}

// WithRequestFailureHandler sets the instance-wide fallback for request
// validation failures, consulted after the route-level handler.
func WithRequestFailureHandler(h RequestFailureHandler) Option {
	return func(c *config) { c.onReqFail = h }
}

// WithResponseFailureHandler sets the instance-wide fallback for response
// validation failures, consulted after the route-level handler.
func WithResponseFailureHandler(h ResponseFailureHandler) Option {
	return func(c *config) { c.onResFail = h }
}
