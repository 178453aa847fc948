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

// Package structtag adapts go-playground/validator to the framework's
// provider-tagged schema contract.
//
// Two schema shapes are supported. [Rules] describes keyed string groups
// (params, queries, headers) as a map of key to validation tag, evaluated
// with the library's map validation. [Struct] describes bodies as a
// prototype struct carrying `validate` tags; the parsed body is decoded
// into a fresh instance of the prototype's type before validation.
package structtag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"kori.dev/kori/schema"
)

// Provider is the tag carried by every schema this package produces.
const Provider schema.Provider = "structtag"

// Rules declares a keyed-group schema: each map value is a validation tag
// applied to the string value under that key.
//
// Example:
//
//	params := structtag.Rules(map[string]string{
//	    "id": "required,uuid4",
//	})
func Rules(rules map[string]string) schema.Schema {
	return schema.New(Provider, rulesDef(rules))
}

// Struct declares a body schema from a prototype struct with `validate`
// tags. The prototype's field values are ignored; only its type matters.
//
// Example:
//
//	type createUser struct {
//	    Name  string `json:"name"  validate:"required,min=2"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//	body := structtag.Struct(createUser{})
func Struct(prototype any) schema.Schema {
	return schema.New(Provider, structDef{typ: reflect.TypeOf(prototype)})
}

type rulesDef map[string]string

type structDef struct {
	typ reflect.Type
}

// RuleErrors aggregates per-key failures from a [Rules] schema, keyed by the
// failing map key. Each value is the library's native error for that key.
type RuleErrors map[string]error

// Error lists the failing keys in sorted order.
func (e RuleErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed for ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
	}

	return b.String()
}

// Validator validates provider-tagged schemas produced by [Rules] and
// [Struct].
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a go-playground backed [schema.Validator].
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Underlying exposes the wrapped validator instance for registering custom
// validation functions or translations.
func (v *Validator) Underlying() *validator.Validate {
	return v.v
}

// Provider reports the "structtag" tag.
func (v *Validator) Provider() schema.Provider {
	return Provider
}

// ValidateParams validates extracted path parameters against a [Rules]
// schema.
func (v *Validator) ValidateParams(ctx context.Context, s schema.Schema, params map[string]string) error {
	data := make(map[string]any, len(params))
	for k, val := range params {
		data[k] = val
	}

	return v.validateRules(ctx, s, data)
}

// ValidateQueries validates the decoded query string against a [Rules]
// schema. Only the first value of a repeated key is validated.
func (v *Validator) ValidateQueries(ctx context.Context, s schema.Schema, queries url.Values) error {
	data := make(map[string]any, len(queries))
	for k := range queries {
		data[k] = queries.Get(k)
	}

	return v.validateRules(ctx, s, data)
}

// ValidateHeaders validates request headers against a [Rules] schema, with
// keys lowercased so rules can name headers case-insensitively.
func (v *Validator) ValidateHeaders(ctx context.Context, s schema.Schema, headers http.Header) error {
	data := make(map[string]any, len(headers))
	for k := range headers {
		data[strings.ToLower(k)] = headers.Get(k)
	}

	return v.validateRules(ctx, s, data)
}

// ValidateBody validates an already-parsed body against a [Struct] schema
// by decoding the parsed value into a fresh instance of the prototype type.
func (v *Validator) ValidateBody(ctx context.Context, s schema.Schema, body any) error {
	def, ok := s.Definition().(structDef)
	if !ok {
		return fmt.Errorf("structtag: body definition is %T, want a Struct schema", s.Definition())
	}
	if def.typ == nil || def.typ.Kind() != reflect.Struct {
		return fmt.Errorf("structtag: Struct prototype must be a struct, got %v", def.typ)
	}

	// Round-trip through JSON to map the generic parsed shape onto the
	// prototype's fields and json tags.
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("structtag: encode body for binding: %w", err)
	}

	target := reflect.New(def.typ).Interface()
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("structtag: bind body: %w", err)
	}

	return v.v.StructCtx(ctx, target)
}

func (v *Validator) validateRules(ctx context.Context, s schema.Schema, data map[string]any) error {
	def, ok := s.Definition().(rulesDef)
	if !ok {
		return fmt.Errorf("structtag: definition is %T, want a Rules schema", s.Definition())
	}

	rules := make(map[string]any, len(def))
	for k, tag := range def {
		rules[k] = tag
		// Map validation skips absent keys, so "required" rules need the
		// key present with its zero value.
		if _, present := data[k]; !present {
			data[k] = ""
		}
	}

	failures := v.v.ValidateMapCtx(ctx, data, rules)
	if len(failures) == 0 {
		return nil
	}

	errs := make(RuleErrors, len(failures))
	for k, f := range failures {
		if err, ok := f.(error); ok {
			errs[k] = err
			continue
		}
		errs[k] = fmt.Errorf("%v", f)
	}

	return errs
}
