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

package validate

import (
	"context"
	"fmt"
	"strconv"

	"kori.dev/kori/schema"
)

// ResponseInput carries the built-so-far response handed to a resolved
// [ResponseFunc].
type ResponseInput struct {
	// StatusCode is the response status.
	StatusCode int

	// ContentType is the response's Content-Type header value.
	ContentType string

	// Body is the materialized response body value, as produced by the
	// handler (before encoding).
	Body any

	// Streaming marks responses whose body is a stream. Streaming bodies
	// are exempt from validation.
	Streaming bool
}

// ResponseFunc validates one response. A nil result means the response
// passed (or was exempt).
type ResponseFunc func(ctx context.Context, in *ResponseInput) *schema.ResponseFailure

// NewResponseFunc resolves a (validator, response schema) pair into a
// [ResponseFunc], mirroring [NewRequestFunc]: nil arguments skip validation,
// and provider mismatches are configuration errors wrapping
// [schema.ErrProviderMismatch].
func NewResponseFunc(v schema.Validator, s *schema.Response) (ResponseFunc, error) {
	if v == nil || s == nil {
		return nil, nil
	}

	provider := v.Provider()
	for _, sel := range s.Selectors() {
		entry, _ := s.Entry(sel)
		if p := entry.Provider(); p != provider {
			return nil, fmt.Errorf("%w: response schema %q has provider %q, validator has %q",
				schema.ErrProviderMismatch, sel, p, provider)
		}
	}

	return func(ctx context.Context, in *ResponseInput) *schema.ResponseFailure {
		return runResponse(ctx, v, s, in)
	}, nil
}

// runResponse validates a materialized response body against the schema
// entry selected by status code.
func runResponse(ctx context.Context, v schema.Validator, s *schema.Response, in *ResponseInput) *schema.ResponseFailure {
	if in.Streaming {
		return nil
	}

	entry, ok := resolveStatusEntry(s, in.StatusCode)
	if !ok {
		return &schema.ResponseFailure{
			StatusCode: in.StatusCode,
			Body: &schema.FieldFailure{
				Stage: schema.StagePreValidation,
				Kind:  schema.KindNoSchemaForStatus,
			},
		}
	}

	bodySchema := entry.Simple()
	if entry.IsContent() {
		// Response content-type matching is exact only: the server
		// produced the response, so wildcard negotiation is meaningless.
		mediaType := requestMediaType(in.ContentType)
		matched, ok := entry.Content()[mediaType]
		if !ok {
			return &schema.ResponseFailure{
				StatusCode: in.StatusCode,
				Body:       schema.UnsupportedMediaType(entry.MediaTypes()),
			}
		}
		bodySchema = matched
	}

	if err := v.ValidateBody(ctx, bodySchema, in.Body); err != nil {
		return &schema.ResponseFailure{
			StatusCode: in.StatusCode,
			Body:       schema.Rejected(err),
		}
	}

	return nil
}

// resolveStatusEntry selects the schema entry for a status code with the
// precedence: exact numeric code, class wildcard ("4XX"), "default".
func resolveStatusEntry(s *schema.Response, statusCode int) (*schema.ResponseEntry, bool) {
	if entry, ok := s.Entry(strconv.Itoa(statusCode)); ok {
		return entry, true
	}

	if statusCode >= 100 && statusCode <= 599 {
		class := strconv.Itoa(statusCode/100) + "XX"
		if entry, ok := s.Entry(class); ok {
			return entry, true
		}
	}

	if entry, ok := s.Entry("default"); ok {
		return entry, true
	}

	return nil, false
}
