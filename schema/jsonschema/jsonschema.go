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

// Package jsonschema adapts the santhosh-tekuri/jsonschema compiler and
// validator to the framework's provider-tagged schema contract.
//
// Schemas are compiled once, at construction, and the compiled form is what
// travels inside [schema.Schema]. Validation failures surface the library's
// native *jsonschema.ValidationError verbatim.
package jsonschema

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	js "github.com/santhosh-tekuri/jsonschema/v6"

	"kori.dev/kori/schema"
)

// Provider is the tag carried by every schema this package produces.
const Provider schema.Provider = "jsonschema"

// Compile compiles a JSON Schema document into a provider-tagged
// [schema.Schema]. The document may be a JSON string, raw bytes, or an
// already-unmarshaled value (map[string]any or bool).
//
// Example:
//
//	body := jsonschema.MustCompile(`{
//	    "type": "object",
//	    "required": ["name"],
//	    "properties": {"name": {"type": "string"}}
//	}`)
func Compile(doc any) (schema.Schema, error) {
	var parsed any
	switch d := doc.(type) {
	case string:
		v, err := js.UnmarshalJSON(strings.NewReader(d))
		if err != nil {
			return schema.Schema{}, fmt.Errorf("parse schema document: %w", err)
		}
		parsed = v
	case []byte:
		v, err := js.UnmarshalJSON(strings.NewReader(string(d)))
		if err != nil {
			return schema.Schema{}, fmt.Errorf("parse schema document: %w", err)
		}
		parsed = v
	default:
		parsed = d
	}

	compiler := js.NewCompiler()
	if err := compiler.AddResource("schema.json", parsed); err != nil {
		return schema.Schema{}, fmt.Errorf("add schema resource: %w", err)
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return schema.Schema{}, fmt.Errorf("compile schema: %w", err)
	}

	return schema.New(Provider, compiled), nil
}

// MustCompile is [Compile] that panics on error, for package-level schema
// declarations.
func MustCompile(doc any) schema.Schema {
	s, err := Compile(doc)
	if err != nil {
		panic(fmt.Sprintf("jsonschema.MustCompile: %v", err))
	}

	return s
}

// Validator validates provider-tagged schemas produced by [Compile].
// The zero value is not usable; use [NewValidator].
type Validator struct{}

// NewValidator creates a jsonschema-backed [schema.Validator].
func NewValidator() *Validator {
	return &Validator{}
}

// Provider reports the "jsonschema" tag.
func (v *Validator) Provider() schema.Provider {
	return Provider
}

// ValidateParams validates extracted path parameters. Parameter values are
// strings; the schema should describe an object with string properties.
func (v *Validator) ValidateParams(_ context.Context, s schema.Schema, params map[string]string) error {
	obj := make(map[string]any, len(params))
	for k, val := range params {
		obj[k] = val
	}

	return v.validate(s, obj)
}

// ValidateQueries validates the decoded query string. Single-valued keys
// collapse to a string; repeated keys surface as an array of strings.
func (v *Validator) ValidateQueries(_ context.Context, s schema.Schema, queries url.Values) error {
	return v.validate(s, valuesToObject(queries))
}

// ValidateHeaders validates request headers, with keys lowercased so schemas
// can name them case-insensitively.
func (v *Validator) ValidateHeaders(_ context.Context, s schema.Schema, headers http.Header) error {
	obj := make(map[string]any, len(headers))
	for k, vals := range headers {
		key := strings.ToLower(k)
		if len(vals) == 1 {
			obj[key] = vals[0]
			continue
		}
		obj[key] = stringsToAny(vals)
	}

	return v.validate(s, obj)
}

// ValidateBody validates an already-parsed body value.
func (v *Validator) ValidateBody(_ context.Context, s schema.Schema, body any) error {
	// Form bodies decode to url.Values; flatten them into the same object
	// shape queries use so one schema covers both.
	if values, ok := body.(url.Values); ok {
		body = valuesToObject(values)
	}

	return v.validate(s, body)
}

func (v *Validator) validate(s schema.Schema, value any) error {
	compiled, ok := s.Definition().(*js.Schema)
	if !ok {
		return fmt.Errorf("jsonschema: definition is %T, want *jsonschema.Schema (use Compile)", s.Definition())
	}

	return compiled.Validate(value)
}

func valuesToObject(values url.Values) map[string]any {
	obj := make(map[string]any, len(values))
	for k, vals := range values {
		if len(vals) == 1 {
			obj[k] = vals[0]
			continue
		}
		obj[k] = stringsToAny(vals)
	}

	return obj
}

func stringsToAny(vals []string) []any {
	out := make([]any, len(vals))
	for i, s := range vals {
		out[i] = s
	}

	return out
}
