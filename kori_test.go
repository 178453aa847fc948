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

package kori

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kori.dev/kori/router"
	"kori.dev/kori/schema"
)

const testProvider schema.Provider = "test"

// testValidator rejects any field whose schema definition is "fail".
type testValidator struct {
	mu     sync.Mutex
	bodies []any
}

var errTestRejected = errors.New("rejected by test validator")

func (v *testValidator) Provider() schema.Provider { return testProvider }

func (v *testValidator) check(s schema.Schema) error {
	if s.Definition() == "fail" {
		return errTestRejected
	}

	return nil
}

func (v *testValidator) ValidateParams(_ context.Context, s schema.Schema, _ map[string]string) error {
	return v.check(s)
}

func (v *testValidator) ValidateQueries(_ context.Context, s schema.Schema, _ url.Values) error {
	return v.check(s)
}

func (v *testValidator) ValidateHeaders(_ context.Context, s schema.Schema, _ http.Header) error {
	return v.check(s)
}

func (v *testValidator) ValidateBody(_ context.Context, s schema.Schema, body any) error {
	v.mu.Lock()
	v.bodies = append(v.bodies, body)
	v.mu.Unlock()

	return v.check(s)
}

func testFieldSchema(def string) *schema.Schema {
	s := schema.New(testProvider, def)

	return &s
}

func okHandler(c *Context) error {
	return c.Text(http.StatusOK, "ok")
}

func TestRouteRegistrationOrder(t *testing.T) {
	t.Parallel()

	app := MustNew()
	app.Get("/b", okHandler).
		Post("/a", okHandler).
		Delete("/c", okHandler)

	routes := app.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, "GET", routes[0].Method)
	assert.Equal(t, "/b", routes[0].Path)
	assert.Equal(t, "POST", routes[1].Method)
	assert.Equal(t, "/a", routes[1].Path)
	assert.Equal(t, "DELETE", routes[2].Method)
}

func TestRoutePathsAreNormalized(t *testing.T) {
	t.Parallel()

	app := MustNew()
	app.Get("users//42/", okHandler)

	routes := app.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/users/42", routes[0].Path)
}

func TestDuplicateRoutePanics(t *testing.T) {
	t.Parallel()

	app := MustNew()
	app.Get("/users", okHandler)

	assert.PanicsWithError(t,
		"duplicate route registration: GET /users (already registered as route 1)",
		func() { app.Get("/users", okHandler) },
	)
}

func TestDuplicateAcrossInstancesPanics(t *testing.T) {
	t.Parallel()

	app := MustNew()
	app.Get("/api/users", okHandler)

	child := app.CreateChild(ChildOptions{Prefix: "/api"})
	assert.Panics(t, func() { child.Get("/users", okHandler) })
}

func TestNilHandlerPanics(t *testing.T) {
	t.Parallel()

	app := MustNew()
	assert.Panics(t, func() { app.Get("/users", nil) })
}

func TestChildPrefixChain(t *testing.T) {
	t.Parallel()

	app := MustNew()
	api := app.CreateChild(ChildOptions{Prefix: "/api"})
	v1 := api.CreateChild(ChildOptions{Prefix: "/v1"})
	v1.Get("/users", okHandler)

	assert.Equal(t, "/api/v1", v1.Prefix())

	routes := app.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/api/v1/users", routes[0].Path)
}

func TestChildSeededHooksAreCopies(t *testing.T) {
	t.Parallel()

	app := MustNew()
	hook := func(c *Context) (*Response, error) { return nil, nil }

	app.OnRequest(hook)
	child := app.CreateChild(ChildOptions{Prefix: "/api"})

	// Hooks added after the child was created stay on the parent.
	app.OnRequest(hook)
	child.OnRequest(hook).OnRequest(hook)

	assert.Len(t, app.requestHooks, 2)
	assert.Len(t, child.requestHooks, 3)
}

func TestChildInheritsValidator(t *testing.T) {
	t.Parallel()

	v := &testValidator{}
	app := MustNew(WithValidator(v))
	child := app.CreateChild(ChildOptions{Prefix: "/api"})

	assert.NotPanics(t, func() {
		child.Get("/users/:id", okHandler,
			WithRequestSchema(&schema.Request{Params: testFieldSchema("ok")}),
		)
	})
}

func TestProviderMismatchPanicsAtRegistration(t *testing.T) {
	t.Parallel()

	app := MustNew(WithValidator(&testValidator{}))
	wrong := schema.New("other", "def")

	assert.Panics(t, func() {
		app.Get("/users/:id", okHandler,
			WithRequestSchema(&schema.Request{Params: &wrong}),
		)
	})
}

func TestSchemaWithoutValidatorPanics(t *testing.T) {
	t.Parallel()

	app := MustNew()

	assert.Panics(t, func() {
		app.Get("/users/:id", okHandler,
			WithRequestSchema(&schema.Request{Params: testFieldSchema("ok")}),
		)
	})
}

func TestConfigurationAfterStartPanics(t *testing.T) {
	t.Parallel()

	app := MustNew()
	app.Get("/users", okHandler)

	handle, err := app.Start(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = handle.Close(context.Background()) })

	assert.Panics(t, func() { app.Get("/late", okHandler) })
	assert.Panics(t, func() { app.OnRequest(func(c *Context) (*Response, error) { return nil, nil }) })
	assert.Panics(t, func() { app.OnStart(func(ctx context.Context, env *Env) error { return nil }) })
	assert.Panics(t, func() { app.CreateChild(ChildOptions{Prefix: "/x"}) })
	assert.Panics(t, func() { app.Start(context.Background()) })
}

func TestStartHooksRunInRegistrationOrderAcrossTree(t *testing.T) {
	t.Parallel()

	var order []string

	app := MustNew()
	app.OnStart(func(ctx context.Context, env *Env) error {
		order = append(order, "root")

		return nil
	})

	child := app.CreateChild(ChildOptions{Prefix: "/api"})
	child.OnStart(func(ctx context.Context, env *Env) error {
		order = append(order, "child")

		return nil
	})
	app.OnStart(func(ctx context.Context, env *Env) error {
		order = append(order, "root-again")

		return nil
	})

	handle, err := app.Start(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = handle.Close(context.Background()) })

	assert.Equal(t, []string{"root", "child", "root-again"}, order)
}

func TestStartHookFailureUnwindsCleanups(t *testing.T) {
	t.Parallel()

	var cleaned []string
	boom := errors.New("connect failed")

	app := MustNew()
	app.OnStart(func(ctx context.Context, env *Env) error {
		env.Defer(func(ctx context.Context) error {
			cleaned = append(cleaned, "first")

			return nil
		})
		env.Defer(func(ctx context.Context) error {
			cleaned = append(cleaned, "second")

			return nil
		})

		return nil
	})
	app.OnStart(func(ctx context.Context, env *Env) error {
		return boom
	})

	_, err := app.Start(context.Background())
	require.ErrorIs(t, err, boom)

	// LIFO unwind of the cleanups registered before the failure.
	assert.Equal(t, []string{"second", "first"}, cleaned)
}

func TestEnvTypedKeys(t *testing.T) {
	t.Parallel()

	type pool struct{ name string }
	key := NewKey[*pool]("db-pool")

	env := newEnv(nil)
	SetEnv(env, key, &pool{name: "primary"})

	got, ok := GetEnv(env, key)
	require.True(t, ok)
	assert.Equal(t, "primary", got.name)

	other := NewKey[*pool]("db-pool")
	_, ok = GetEnv(env, other)
	assert.False(t, ok)

	assert.Equal(t, "primary", MustGetEnv(env, key).name)
	assert.Panics(t, func() { MustGetEnv(env, other) })
}

func TestHandleCloseRunsDeferredCleanups(t *testing.T) {
	t.Parallel()

	var cleaned []string

	app := MustNew()
	app.OnStart(func(ctx context.Context, env *Env) error {
		env.Defer(func(ctx context.Context) error {
			cleaned = append(cleaned, "a")

			return nil
		})
		env.Defer(func(ctx context.Context) error {
			cleaned = append(cleaned, "b")

			return nil
		})

		return nil
	})

	handle, err := app.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, handle.Close(context.Background()))

	assert.Equal(t, []string{"b", "a"}, cleaned)
}

func TestHandleCloseJoinsErrors(t *testing.T) {
	t.Parallel()

	errA := errors.New("close a")
	errB := errors.New("close b")

	app := MustNew()
	app.OnStart(func(ctx context.Context, env *Env) error {
		env.Defer(func(ctx context.Context) error { return errA })
		env.Defer(func(ctx context.Context) error { return errB })

		return nil
	})

	handle, err := app.Start(context.Background())
	require.NoError(t, err)

	closeErr := handle.Close(context.Background())
	assert.ErrorIs(t, closeErr, errA)
	assert.ErrorIs(t, closeErr, errB)
}

func TestPluginReceivesInstance(t *testing.T) {
	t.Parallel()

	docs := router.NewMetaKey("docs")

	health := func(k *Kori) *Kori {
		k.CreateChild(ChildOptions{Prefix: "/health"}).
			Get("/live", okHandler, WithMeta(docs, "liveness probe"))

		return k
	}

	app := MustNew()
	returned := app.Use(health)

	assert.Same(t, app, returned)

	routes := app.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/health/live", routes[0].Path)

	meta, ok := routes[0].MetaValue(docs)
	require.True(t, ok)
	assert.Equal(t, "liveness probe", meta)
}
