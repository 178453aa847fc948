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
	"io"
	"net/http"
	"net/url"
	"sync"

	"kori.dev/kori/schema"
)

// RequestInput carries the raw request values handed to a resolved
// [RequestFunc]. The executor builds one per request from the matched route
// and the incoming request.
type RequestInput struct {
	// Params are the extracted path parameters.
	Params map[string]string

	// Queries is the decoded query string.
	Queries url.Values

	// Headers are the request headers.
	Headers http.Header

	// ContentType is the raw Content-Type header value, possibly empty.
	ContentType string

	// Body is the raw request body. It is read fully at most once, and
	// only when the route declares a body schema. May be nil.
	Body io.Reader
}

// RequestFunc validates one request against all four field groups.
//
// On success the failure result is nil and the value aggregates the
// validated fields. On failure the value is nil and only the failed fields
// of the failure are populated — successes alongside a failure are
// discarded, not reported.
type RequestFunc func(ctx context.Context, in *RequestInput) (*schema.RequestValue, *schema.RequestFailure)

// NewRequestFunc resolves a (validator, schema) pair into a [RequestFunc].
//
// Resolution happens once per route. If either argument is nil the route
// has no validation and NewRequestFunc returns (nil, nil) so the executor
// can skip the stage entirely. A provider tag mismatch between the
// validator and any present schema field is a configuration error wrapping
// [schema.ErrProviderMismatch].
func NewRequestFunc(v schema.Validator, s *schema.Request) (RequestFunc, error) {
	if v == nil || s == nil {
		return nil, nil
	}

	if err := checkRequestProviders(v, s); err != nil {
		return nil, err
	}

	return func(ctx context.Context, in *RequestInput) (*schema.RequestValue, *schema.RequestFailure) {
		return runRequest(ctx, v, s, in)
	}, nil
}

// checkRequestProviders verifies every present schema field carries the
// validator's provider tag.
func checkRequestProviders(v schema.Validator, s *schema.Request) error {
	provider := v.Provider()

	check := func(field string, p schema.Provider) error {
		if p != provider {
			return fmt.Errorf("%w: %s schema has provider %q, validator has %q",
				schema.ErrProviderMismatch, field, p, provider)
		}

		return nil
	}

	if s.Params != nil {
		if err := check("params", s.Params.Provider()); err != nil {
			return err
		}
	}
	if s.Queries != nil {
		if err := check("queries", s.Queries.Provider()); err != nil {
			return err
		}
	}
	if s.Headers != nil {
		if err := check("headers", s.Headers.Provider()); err != nil {
			return err
		}
	}
	if s.Body != nil {
		if err := check("body", s.Body.Provider()); err != nil {
			return err
		}
		if s.Body.IsContent() {
			for mt, entry := range s.Body.Content() {
				if err := check("body["+mt+"]", entry.Provider()); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// runRequest executes the four-way concurrent validation join.
func runRequest(ctx context.Context, v schema.Validator, s *schema.Request, in *RequestInput) (*schema.RequestValue, *schema.RequestFailure) {
	// The body is read before the fan-out so the goroutine never races the
	// caller over the reader.
	var rawBody []byte
	var readErr error
	if s.Body != nil && in.Body != nil {
		rawBody, readErr = io.ReadAll(in.Body)
	}

	var (
		wg      sync.WaitGroup
		params  *schema.FieldFailure
		queries *schema.FieldFailure
		headers *schema.FieldFailure
		body    *schema.FieldFailure
		value   schema.BodyValue
	)

	if s.Params != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := v.ValidateParams(ctx, *s.Params, in.Params); err != nil {
				params = schema.Rejected(err)
			}
		}()
	}

	if s.Queries != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := v.ValidateQueries(ctx, *s.Queries, in.Queries); err != nil {
				queries = schema.Rejected(err)
			}
		}()
	}

	if s.Headers != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := v.ValidateHeaders(ctx, *s.Headers, in.Headers); err != nil {
				headers = schema.Rejected(err)
			}
		}()
	}

	if s.Body != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, body = runBody(ctx, v, s.Body, in.ContentType, rawBody, readErr)
		}()
	}

	wg.Wait()

	if params != nil || queries != nil || headers != nil || body != nil {
		return nil, &schema.RequestFailure{
			Params:  params,
			Queries: queries,
			Headers: headers,
			Body:    body,
		}
	}

	return &schema.RequestValue{
		Params:  in.Params,
		Queries: in.Queries,
		Headers: in.Headers,
		Body:    value,
	}, nil
}

// runBody performs the body resolution algorithm: media type negotiation,
// parsing, then schema validation. Pre-validation failures pre-empt the
// validator — it is never consulted for a body that did not resolve and
// parse.
func runBody(ctx context.Context, v schema.Validator, b *schema.BodySchema, contentType string, raw []byte, readErr error) (schema.BodyValue, *schema.FieldFailure) {
	mediaType := requestMediaType(contentType)

	bodySchema, _, failure := resolveBodySchema(b, mediaType)
	if failure != nil {
		return schema.BodyValue{}, failure
	}

	if readErr != nil {
		return schema.BodyValue{}, schema.InvalidBody(readErr)
	}

	parsed, err := parseBody(mediaType, raw)
	if err != nil {
		return schema.BodyValue{}, schema.InvalidBody(err)
	}

	if err := v.ValidateBody(ctx, bodySchema, parsed); err != nil {
		return schema.BodyValue{}, schema.Rejected(err)
	}

	// Content-mapped schemas report the resolved media type alongside the
	// value; simple schemas return the value alone.
	if b.IsContent() {
		return schema.BodyValue{MediaType: mediaType, Value: parsed}, nil
	}

	return schema.BodyValue{Value: parsed}, nil
}
