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

// Package schema defines the provider-tagged schema and validator contract
// that lets the framework treat validation libraries uniformly while still
// rejecting accidental cross-library misuse.
//
// A [Schema] wraps a library-native schema definition together with a
// [Provider] tag identifying the library integration it belongs to. A
// [Validator] carries the same tag plus the four field-group validation
// methods. Resolving a validator against a schema whose provider differs
// fails fast with [ErrProviderMismatch] — a configuration error surfaced at
// route registration, never per request.
//
// The package also defines the validation outcome types shared by the
// resolver and the executor: [RequestValue] for aggregated success and
// [RequestFailure]/[FieldFailure] for aggregated failure, distinguishing
// pre-validation failures (unsupported media type, unparseable body) from
// validation-stage failures (the library rejected an already-parsed value).
//
// Reference providers live in the subpackages jsonschema (JSON Schema via
// santhosh-tekuri/jsonschema) and structtag (struct tags via
// go-playground/validator).
package schema
