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

// Package problem implements RFC 9457 problem details, the payload shape the
// framework uses for every error response it produces itself (unmatched
// routes, validation failures, handler errors).
package problem

import (
	"encoding/json"
	"net/http"
)

// ContentType is the media type for problem detail responses.
const ContentType = "application/problem+json"

// Details is an RFC 9457 problem details payload.
//
// Extensions are additional members merged into the top-level JSON object,
// as the RFC specifies, rather than nested under an "extensions" key.
type Details struct {
	// Type is a URI reference identifying the problem type. Defaults to
	// "about:blank" when empty.
	Type string `json:"type,omitempty"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title,omitempty"`

	// Status is the HTTP status code.
	Status int `json:"status,omitempty"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference identifying this occurrence.
	Instance string `json:"instance,omitempty"`

	// Extensions holds additional top-level members.
	Extensions map[string]any `json:"-"`
}

// New creates a problem with the given status and the standard status text
// as title.
func New(status int) *Details {
	return &Details{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
	}
}

// NotFound creates a 404 problem.
func NotFound(detail string) *Details {
	p := New(http.StatusNotFound)
	p.Detail = detail

	return p
}

// BadRequest creates a 400 problem.
func BadRequest(detail string) *Details {
	p := New(http.StatusBadRequest)
	p.Detail = detail

	return p
}

// UnsupportedMediaType creates a 415 problem.
func UnsupportedMediaType(detail string) *Details {
	p := New(http.StatusUnsupportedMediaType)
	p.Detail = detail

	return p
}

// InternalServerError creates a 500 problem.
func InternalServerError(detail string) *Details {
	p := New(http.StatusInternalServerError)
	p.Detail = detail

	return p
}

// WithDetail sets the detail and returns the problem for chaining.
func (p *Details) WithDetail(detail string) *Details {
	p.Detail = detail

	return p
}

// WithInstance sets the instance URI and returns the problem for chaining.
func (p *Details) WithInstance(instance string) *Details {
	p.Instance = instance

	return p
}

// WithExtension adds a top-level extension member and returns the problem
// for chaining.
func (p *Details) WithExtension(key string, value any) *Details {
	if p.Extensions == nil {
		p.Extensions = make(map[string]any)
	}
	p.Extensions[key] = value

	return p
}

// Error implements the error interface so a problem can travel through
// error-returning handler chains.
func (p *Details) Error() string {
	if p.Detail != "" {
		return p.Title + ": " + p.Detail
	}

	return p.Title
}

// MarshalJSON merges Extensions into the top-level object.
func (p *Details) MarshalJSON() ([]byte, error) {
	type alias Details

	base, err := json.Marshal((*alias)(p))
	if err != nil {
		return nil, err
	}

	if len(p.Extensions) == 0 {
		return base, nil
	}

	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range p.Extensions {
		// Standard members win over colliding extension keys.
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}

	return json.Marshal(merged)
}
