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

// Package kori is a composable HTTP application framework with pluggable,
// provider-tagged schema validation.
//
// An application is a tree of [Kori] instances sharing one route registry
// and matcher. Each instance contributes a path prefix, request and error
// hooks, and a validator; children created with [Kori.CreateChild] inherit
// copies of the parent's hook lists, so composition is explicit and
// side-effect free. Configuration is single-threaded and ends at
// [Kori.Start], which compiles the matcher, runs the start hooks, and
// returns an [http.Handler]-compatible [Handle] over immutable state.
//
// Validation is declared per route and resolved at registration: the
// schema's provider tag must match the instance's validator, so wiring a
// JSON Schema document to a struct-tag validator fails at startup instead
// of at request time. Request validation covers params, queries, headers
// and body concurrently; response validation checks the materialized body
// against a status-code keyed schema before anything is written.
//
// A minimal application:
//
//	app := kori.MustNew(
//	    kori.WithLogger(logging.MustNew()),
//	    kori.WithValidator(jsonschema.NewValidator()),
//	)
//
//	app.OnStart(func(ctx context.Context, env *kori.Env) error {
//	    env.Defer(func(ctx context.Context) error { return pool.Close() })
//	    return nil
//	})
//
//	app.Get("/users/:id", getUser,
//	    kori.WithRequestSchema(&schema.Request{Params: &idParams}),
//	)
//
//	handle, err := app.Start(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = handle.Listen(":8080")
package kori
