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

package schema

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ErrProviderMismatch is the sentinel for resolving a validator against a
// schema from a different provider. It is a configuration error: raised at
// route registration (or first resolution), never per request, and never
// retried.
var ErrProviderMismatch = errors.New("schema provider does not match validator provider")

// Validator validates raw request values against schemas of its own
// provider. An error returned from any method is the library's native error
// value and is carried through the failure pipeline verbatim, so callers can
// render library-specific diagnostics.
//
// Implementations may block; all methods receive the request context.
type Validator interface {
	// Provider returns the tag identifying the library this validator
	// belongs to. It must equal the tag of every schema it is asked to
	// validate against.
	Provider() Provider

	// ValidateParams validates extracted path parameters.
	ValidateParams(ctx context.Context, s Schema, params map[string]string) error

	// ValidateQueries validates the decoded query string.
	ValidateQueries(ctx context.Context, s Schema, queries url.Values) error

	// ValidateHeaders validates the request headers.
	ValidateHeaders(ctx context.Context, s Schema, headers http.Header) error

	// ValidateBody validates an already-parsed request or response body.
	ValidateBody(ctx context.Context, s Schema, body any) error
}
