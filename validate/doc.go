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

// Package validate turns (validator, schema) pairs into per-route
// validation functions.
//
// Resolution happens once per route at registration time: [NewRequestFunc]
// and [NewResponseFunc] verify the provider tags match and return a callable
// that is reused for every request to that route. Routes without schemas
// skip resolution entirely and pay zero per-request overhead.
//
// A resolved request function validates params, queries, headers and body
// concurrently and joins the four outcomes into either an aggregated
// [schema.RequestValue] or an aggregated [schema.RequestFailure] populating
// only the failed fields. Body validation negotiates the request media type
// (exact match, then subtype wildcard, then full wildcard), parses the raw
// body for the resolved type, and only then hands the parsed value to the
// validator — so an unparseable body or unsupported media type surfaces as a
// pre-validation failure and the validator is never consulted.
//
// A resolved response function selects the schema by status code (exact
// code, then class wildcard like "4XX", then "default") and validates fully
// materialized bodies only; streaming responses are exempt because
// re-reading a stream to validate it would consume it.
package validate
