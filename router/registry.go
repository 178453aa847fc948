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

package router

import "slices"

// RouteID is an opaque identifier for a registered route record.
//
// Identifiers are minted by [Registry.Register] and are never reused or
// recycled. The zero value is not a valid identifier. The newtype exists to
// prevent accidental arithmetic or map-key confusion with plain ints; the
// compiled matcher holds RouteIDs only as lookup keys and never manufactures
// them.
type RouteID int

// Valid reports whether the identifier was minted by a registry.
func (id RouteID) Valid() bool {
	return id > 0
}

// MetaKey is an opaque token used to key plugin metadata on a route record.
// Each call to [NewMetaKey] yields a distinct key, even for the same name,
// so independent plugins cannot collide.
type MetaKey struct {
	name string
}

// NewMetaKey creates a new unique metadata key. The name is used only for
// diagnostics.
func NewMetaKey(name string) *MetaKey {
	return &MetaKey{name: name}
}

// Name returns the diagnostic name the key was created with.
func (k *MetaKey) Name() string {
	return k.name
}

// Record represents one registered endpoint.
//
// The handler and schema fields are type-erased: the registry stores and
// returns them verbatim without interpreting them. The executor layer owns
// the concrete types. A Record is immutable after registration.
type Record struct {
	// Method is the HTTP method, normalized to uppercase. Custom methods
	// are allowed.
	Method string

	// Path is the fully-qualified, normalized path template, including the
	// owning instance's full prefix chain.
	Path string

	// Handler is the type-erased route handler.
	Handler any

	// RequestSchema is the optional request schema (type-erased).
	RequestSchema any

	// ResponseSchema is the optional response schema (type-erased).
	ResponseSchema any

	// OnRequestValidationFailure is the optional per-route request
	// validation failure handler (type-erased).
	OnRequestValidationFailure any

	// OnResponseValidationFailure is the optional per-route response
	// validation failure handler (type-erased).
	OnResponseValidationFailure any

	// Meta holds opaque plugin metadata keyed by [MetaKey] tokens.
	Meta map[*MetaKey]any
}

// MetaValue returns the metadata stored under key, if any.
func (r *Record) MetaValue(key *MetaKey) (any, bool) {
	if r.Meta == nil {
		return nil, false
	}
	v, ok := r.Meta[key]

	return v, ok
}

// Registry is durable, order-preserving storage of route records.
//
// Registration happens during the single-threaded configuration phase; after
// the owning instance compiles its matcher the registry is read-only and
// safe for unsynchronized concurrent reads. A dense array backs the records,
// so Get is a bounds check and an index.
type Registry struct {
	records []*Record
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register stores a record and mints a fresh identifier for it.
// Register always succeeds; duplicate (method, path) policy is enforced by
// the caller before registration.
func (g *Registry) Register(rec *Record) RouteID {
	g.records = append(g.records, rec)

	// IDs are 1-based so the zero value stays invalid.
	return RouteID(len(g.records))
}

// Get returns the record for id in O(1), or false if the id was never
// minted by this registry.
func (g *Registry) Get(id RouteID) (*Record, bool) {
	if !id.Valid() || int(id) > len(g.records) {
		return nil, false
	}

	return g.records[id-1], true
}

// All returns the records in insertion order.
//
// All copies the backing slice and is meant for introspection consumers
// (documentation generators, route listings). It must not be used on the
// request hot path.
func (g *Registry) All() []*Record {
	return slices.Clone(g.records)
}

// Len returns the number of registered records.
func (g *Registry) Len() int {
	return len(g.records)
}
