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

// Package router provides route storage and matching for the Kori framework.
//
// The package has two halves that share nothing but the RouteID type:
//
//   - Registry: durable, order-preserving storage of route records,
//     addressed by opaque identifiers minted at registration time.
//   - Matcher: compiles (method, path, id) triples into a read-only lookup
//     function that maps an incoming method and path to a route identifier
//     and its extracted path parameters.
//
// The default matcher is a radix tree with per-segment static edges, single
// parameter children (":name"), optional trailing parameters (":name?") and
// regex-constrained parameters (":id{[0-9]+}"). HEAD requests fall back to
// GET routes during lookup.
//
// Both halves are immutable after Compile and safe for unsynchronized
// concurrent reads, matching the framework's configure-then-serve phases.
package router
