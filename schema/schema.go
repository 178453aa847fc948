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

import "sort"

// Provider identifies the schema/validation library a schema or validator
// value belongs to. Each library integration uses one unique tag; the tag is
// compared at resolution time to reject cross-library misuse.
type Provider string

// Schema is a provider-tagged wrapper around a library-native schema
// definition. The definition is opaque to the framework core; only the
// matching provider's validator ever interprets it.
type Schema struct {
	provider Provider
	def      any
}

// New creates a provider-tagged schema.
//
// Provider integrations typically wrap this in their own constructor:
//
//	func Schema(def *jsonschema.Schema) schema.Schema {
//	    return schema.New(ProviderName, def)
//	}
func New(provider Provider, def any) Schema {
	return Schema{provider: provider, def: def}
}

// Provider returns the provider tag.
func (s Schema) Provider() Provider {
	return s.provider
}

// Definition returns the library-native schema definition.
func (s Schema) Definition() any {
	return s.def
}

// IsZero reports whether s is the zero schema (no provider, no definition).
func (s Schema) IsZero() bool {
	return s.provider == "" && s.def == nil
}

// BodySchema describes the request body. It is either simple — one schema
// implicitly targeting application/json — or content-mapped, with an
// explicit media-type to schema mapping.
type BodySchema struct {
	simple  Schema
	content map[string]Schema
}

// SimpleBody creates a simple body schema. A simple body schema accepts
// only application/json requests; any other request media type is a
// pre-validation failure.
func SimpleBody(s Schema) *BodySchema {
	return &BodySchema{simple: s}
}

// ContentBody creates a content-mapped body schema. Keys are media types
// and may include subtype wildcards ("application/*") and the full wildcard
// ("*/*").
func ContentBody(content map[string]Schema) *BodySchema {
	m := make(map[string]Schema, len(content))
	for k, v := range content {
		m[k] = v
	}

	return &BodySchema{content: m}
}

// IsContent reports whether the body schema is content-mapped.
func (b *BodySchema) IsContent() bool {
	return b.content != nil
}

// Simple returns the simple schema. Only meaningful when IsContent is false.
func (b *BodySchema) Simple() Schema {
	return b.simple
}

// Content returns the media-type mapping. Only meaningful when IsContent is
// true.
func (b *BodySchema) Content() map[string]Schema {
	return b.content
}

// MediaTypes returns the declared media types of a content-mapped schema in
// sorted order, for stable failure payloads.
func (b *BodySchema) MediaTypes() []string {
	if b.content == nil {
		return nil
	}
	types := make([]string, 0, len(b.content))
	for mt := range b.content {
		types = append(types, mt)
	}
	sort.Strings(types)

	return types
}

// Provider returns the provider tag of the underlying schema(s). For a
// content-mapped schema all entries must share one provider; Provider
// returns the first entry's tag (uniformity is enforced at resolution).
func (b *BodySchema) Provider() Provider {
	if b.content != nil {
		for _, s := range b.content {
			return s.provider
		}

		return ""
	}

	return b.simple.provider
}

// Request groups the optional schemas for the four request field groups.
// Absent fields are skipped during validation. All present fields must share
// one provider tag.
type Request struct {
	Params  *Schema
	Queries *Schema
	Headers *Schema
	Body    *BodySchema
}

// Response maps status-code selectors to response body schemas.
//
// Selector precedence at validation time: exact numeric code ("404") beats
// the class wildcard ("4XX"), which beats "default".
type Response struct {
	entries map[string]*ResponseEntry
}

// ResponseEntry describes the body schema for one status-code selector.
// Like [BodySchema] it is either simple or content-mapped, but response
// content-type matching is exact only — no wildcard negotiation, since the
// server produces the response and already knows its exact content type.
type ResponseEntry struct {
	simple  Schema
	content map[string]Schema
}

// SimpleEntry creates a simple response entry.
func SimpleEntry(s Schema) *ResponseEntry {
	return &ResponseEntry{simple: s}
}

// ContentEntry creates a content-mapped response entry.
func ContentEntry(content map[string]Schema) *ResponseEntry {
	m := make(map[string]Schema, len(content))
	for k, v := range content {
		m[k] = v
	}

	return &ResponseEntry{content: m}
}

// IsContent reports whether the entry is content-mapped.
func (e *ResponseEntry) IsContent() bool {
	return e.content != nil
}

// Simple returns the simple schema.
func (e *ResponseEntry) Simple() Schema {
	return e.simple
}

// Content returns the content-type mapping.
func (e *ResponseEntry) Content() map[string]Schema {
	return e.content
}

// MediaTypes returns the declared content types in sorted order.
func (e *ResponseEntry) MediaTypes() []string {
	if e.content == nil {
		return nil
	}
	types := make([]string, 0, len(e.content))
	for mt := range e.content {
		types = append(types, mt)
	}
	sort.Strings(types)

	return types
}

// Provider returns the entry's provider tag.
func (e *ResponseEntry) Provider() Provider {
	if e.content != nil {
		for _, s := range e.content {
			return s.provider
		}

		return ""
	}

	return e.simple.provider
}

// NewResponse creates a response schema from status selectors. Valid
// selectors are exact codes ("200", "404"), class wildcards ("2XX" through
// "5XX") and "default".
func NewResponse(entries map[string]*ResponseEntry) *Response {
	m := make(map[string]*ResponseEntry, len(entries))
	for k, v := range entries {
		m[k] = v
	}

	return &Response{entries: m}
}

// Entry returns the entry registered under the given selector.
func (r *Response) Entry(selector string) (*ResponseEntry, bool) {
	e, ok := r.entries[selector]

	return e, ok
}

// Selectors returns all registered selectors in sorted order.
func (r *Response) Selectors() []string {
	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}
