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
	"net/http"
	"net/url"
	"strings"
)

// Stage distinguishes where in the pipeline a field failed.
type Stage string

const (
	// StagePreValidation marks failures that occur before schema
	// validation proper: an unsupported media type or an unparseable body.
	// Pre-validation failures pre-empt validation-stage failures for the
	// same field — validation is never reached.
	StagePreValidation Stage = "pre-validation"

	// StageValidation marks failures produced by the validation library
	// rejecting an already-parsed value.
	StageValidation Stage = "validation"
)

// FailureKind classifies a field failure.
type FailureKind string

const (
	// KindUnsupportedMediaType is a pre-validation failure: the request or
	// response media type matched none of the schema's declared types.
	KindUnsupportedMediaType FailureKind = "UNSUPPORTED_MEDIA_TYPE"

	// KindInvalidBody is a pre-validation failure: the raw body could not
	// be parsed according to the resolved media type.
	KindInvalidBody FailureKind = "INVALID_BODY"

	// KindSchemaRejected is a validation-stage failure: the validation
	// library rejected the value. Cause carries the library's native error
	// untouched.
	KindSchemaRejected FailureKind = "SCHEMA_REJECTED"

	// KindNoSchemaForStatus is a resolver-level response failure: no
	// schema entry matched the response status code. It is distinct from a
	// body validation failure.
	KindNoSchemaForStatus FailureKind = "NO_SCHEMA_FOR_STATUS"
)

// FieldFailure describes the failure of a single field group.
type FieldFailure struct {
	// Stage is pre-validation or validation.
	Stage Stage

	// Kind classifies the failure.
	Kind FailureKind

	// SupportedMediaTypes lists the media types the schema accepts. Set
	// only for KindUnsupportedMediaType.
	SupportedMediaTypes []string

	// Cause is the underlying error: the parse error for KindInvalidBody,
	// or the validation library's native error for KindSchemaRejected.
	Cause error
}

// Error implements the error interface.
func (f *FieldFailure) Error() string {
	var sb strings.Builder
	sb.WriteString(string(f.Kind))
	if len(f.SupportedMediaTypes) > 0 {
		sb.WriteString(": supported media types ")
		sb.WriteString(strings.Join(f.SupportedMediaTypes, ", "))
	}
	if f.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(f.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (f *FieldFailure) Unwrap() error {
	return f.Cause
}

// Rejected creates a validation-stage failure carrying the library's native
// error verbatim.
func Rejected(cause error) *FieldFailure {
	return &FieldFailure{Stage: StageValidation, Kind: KindSchemaRejected, Cause: cause}
}

// UnsupportedMediaType creates a pre-validation failure listing the
// supported media types.
func UnsupportedMediaType(supported []string) *FieldFailure {
	return &FieldFailure{
		Stage:               StagePreValidation,
		Kind:                KindUnsupportedMediaType,
		SupportedMediaTypes: supported,
	}
}

// InvalidBody creates a pre-validation failure carrying the parse error as
// cause.
func InvalidBody(cause error) *FieldFailure {
	return &FieldFailure{Stage: StagePreValidation, Kind: KindInvalidBody, Cause: cause}
}

// RequestFailure aggregates per-field failures for one request. Only the
// fields that failed are populated; a field that validated successfully is
// nil even when a sibling field failed.
type RequestFailure struct {
	Params  *FieldFailure
	Queries *FieldFailure
	Headers *FieldFailure
	Body    *FieldFailure
}

// Error implements the error interface, joining the populated fields.
func (f *RequestFailure) Error() string {
	var parts []string
	for _, p := range []struct {
		name string
		ff   *FieldFailure
	}{
		{"params", f.Params},
		{"queries", f.Queries},
		{"headers", f.Headers},
		{"body", f.Body},
	} {
		if p.ff != nil {
			parts = append(parts, p.name+": "+p.ff.Error())
		}
	}

	return "request validation failed: " + strings.Join(parts, "; ")
}

// HasFailures reports whether any field failed.
func (f *RequestFailure) HasFailures() bool {
	return f.Params != nil || f.Queries != nil || f.Headers != nil || f.Body != nil
}

// ResponseFailure describes a response validation failure.
type ResponseFailure struct {
	// StatusCode is the response status the failure was observed for.
	StatusCode int

	// Body is the failing field, including the resolver-level
	// KindNoSchemaForStatus case.
	Body *FieldFailure
}

// Error implements the error interface.
func (f *ResponseFailure) Error() string {
	return "response validation failed: " + f.Body.Error()
}

// RequestValue is the aggregated success value of request validation.
type RequestValue struct {
	Params  map[string]string
	Queries url.Values
	Headers http.Header
	Body    BodyValue
}

// BodyValue is the validated request body. For a content-mapped schema
// MediaType carries the resolved media type; for a simple schema MediaType
// is empty and Value alone is meaningful.
type BodyValue struct {
	MediaType string
	Value     any
}
