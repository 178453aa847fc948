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
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"kori.dev/kori/problem"
)

// Response is a fully described, not-yet-written HTTP response.
//
// Materialized responses keep both the encoded bytes and the pre-encoding
// value; response validation inspects the value, the transport writes the
// bytes. Streaming responses carry a writer callback instead and are exempt
// from validation.
type Response struct {
	status    int
	header    http.Header
	body      []byte
	bodyValue any
	stream    func(w io.Writer) error
}

// NewResponse creates an empty response with the given status. Hooks use the
// package-level constructors to build short-circuit responses; handlers
// normally go through the [Context] build methods instead.
func NewResponse(status int) *Response {
	return &Response{status: status, header: make(http.Header)}
}

// JSONResponse creates a response with a JSON-encoded body.
func JSONResponse(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json response: %w", err)
	}

	r := NewResponse(status)
	r.header.Set("Content-Type", "application/json")
	r.body = body
	r.bodyValue = v

	return r, nil
}

// TextResponse creates a response with a plain text body.
func TextResponse(status int, body string) *Response {
	r := NewResponse(status)
	r.header.Set("Content-Type", "text/plain; charset=utf-8")
	r.body = []byte(body)
	r.bodyValue = body

	return r
}

// EmptyResponse creates a bodyless response.
func EmptyResponse(status int) *Response {
	return NewResponse(status)
}

// ProblemResponse creates an RFC 9457 problem response from p, using p's
// status code.
func ProblemResponse(p *problem.Details) (*Response, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode problem response: %w", err)
	}

	r := NewResponse(p.Status)
	r.header.Set("Content-Type", problem.ContentType)
	r.body = body
	r.bodyValue = p

	return r, nil
}

// StreamResponse creates a streaming response. The callback is invoked once,
// after status and headers are written. Streaming responses are exempt from
// response validation.
func StreamResponse(status int, contentType string, fn func(w io.Writer) error) *Response {
	r := NewResponse(status)
	if contentType != "" {
		r.header.Set("Content-Type", contentType)
	}
	r.stream = fn

	return r
}

// SetHeader sets a header on the response and returns it for chaining.
func (r *Response) SetHeader(key, value string) *Response {
	r.header.Set(key, value)

	return r
}

// Status returns the response status code.
func (r *Response) Status() int {
	return r.status
}

// Header returns the response headers.
func (r *Response) Header() http.Header {
	return r.header
}

// Body returns the encoded body bytes. Nil for streaming responses.
func (r *Response) Body() []byte {
	return r.body
}

// BodyValue returns the pre-encoding body value handed to response
// validation. Nil for streaming and bodyless responses.
func (r *Response) BodyValue() any {
	return r.bodyValue
}

// ContentType returns the response's Content-Type header value.
func (r *Response) ContentType() string {
	return r.header.Get("Content-Type")
}

// IsStreaming reports whether the response body is a stream.
func (r *Response) IsStreaming() bool {
	return r.stream != nil
}

// write sends the response over the transport. HEAD-matched-as-GET requests
// discard the body after running the full pipeline.
func (r *Response) write(w http.ResponseWriter, discardBody bool) error {
	h := w.Header()
	for key, values := range r.header {
		h[key] = values
	}
	w.WriteHeader(r.status)

	if discardBody {
		return nil
	}

	if r.stream != nil {
		return r.stream(w)
	}

	if len(r.body) > 0 {
		if _, err := w.Write(r.body); err != nil {
			return err
		}
	}

	return nil
}

// JSON builds a JSON response on the context. Building a second response on
// the same context panics.
func (c *Context) JSON(status int, v any) error {
	r, err := JSONResponse(status, v)
	if err != nil {
		return err
	}
	c.setResponse(r)

	return nil
}

// Text builds a plain text response on the context.
func (c *Context) Text(status int, body string) error {
	c.setResponse(TextResponse(status, body))

	return nil
}

// Empty builds a bodyless response on the context.
func (c *Context) Empty(status int) error {
	c.setResponse(EmptyResponse(status))

	return nil
}

// Problem builds an RFC 9457 problem response on the context.
func (c *Context) Problem(p *problem.Details) error {
	r, err := ProblemResponse(p)
	if err != nil {
		return err
	}
	c.setResponse(r)

	return nil
}

// Stream builds a streaming response on the context. The callback runs once
// the pipeline reaches the write stage; streaming responses skip response
// validation.
func (c *Context) Stream(status int, contentType string, fn func(w io.Writer) error) error {
	c.setResponse(StreamResponse(status, contentType, fn))

	return nil
}

// Respond attaches an already-built response to the context.
func (c *Context) Respond(r *Response) error {
	c.setResponse(r)

	return nil
}

func (c *Context) setResponse(r *Response) {
	if c.resp != nil {
		panic(fmt.Errorf("%w: %s %s", ErrResponseAlreadyBuilt, c.req.Method, c.req.URL.Path))
	}
	c.resp = r
}
