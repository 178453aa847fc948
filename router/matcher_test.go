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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, routes ...[2]string) MatchFunc {
	t.Helper()

	m := NewRadixMatcher()
	for i, r := range routes {
		require.NoError(t, m.AddRoute(r[0], r[1], RouteID(i+1)))
	}

	fn, err := m.Compile()
	require.NoError(t, err)

	return fn
}

func TestRadixMatcherStaticRoutes(t *testing.T) {
	t.Parallel()

	match := compile(t,
		[2]string{"GET", "/"},
		[2]string{"GET", "/users"},
		[2]string{"POST", "/users"},
		[2]string{"GET", "/users/active"},
	)

	m, ok := match("GET", "/")
	require.True(t, ok)
	assert.Equal(t, RouteID(1), m.ID)

	m, ok = match("GET", "/users")
	require.True(t, ok)
	assert.Equal(t, RouteID(2), m.ID)
	assert.Equal(t, "/users", m.Template)

	m, ok = match("POST", "/users")
	require.True(t, ok)
	assert.Equal(t, RouteID(3), m.ID)

	m, ok = match("GET", "/users/active")
	require.True(t, ok)
	assert.Equal(t, RouteID(4), m.ID)

	_, ok = match("DELETE", "/users")
	assert.False(t, ok)

	_, ok = match("GET", "/missing")
	assert.False(t, ok)
}

func TestRadixMatcherParams(t *testing.T) {
	t.Parallel()

	match := compile(t,
		[2]string{"GET", "/users/:id"},
		[2]string{"GET", "/users/:id/posts/:postID"},
	)

	m, ok := match("GET", "/users/42")
	require.True(t, ok)
	assert.Equal(t, RouteID(1), m.ID)
	assert.Equal(t, map[string]string{"id": "42"}, m.Params)
	assert.Equal(t, "/users/:id", m.Template)

	m, ok = match("GET", "/users/42/posts/7")
	require.True(t, ok)
	assert.Equal(t, RouteID(2), m.ID)
	assert.Equal(t, map[string]string{"id": "42", "postID": "7"}, m.Params)
}

func TestRadixMatcherStaticWinsOverParam(t *testing.T) {
	t.Parallel()

	match := compile(t,
		[2]string{"GET", "/users/:id"},
		[2]string{"GET", "/users/me"},
	)

	m, ok := match("GET", "/users/me")
	require.True(t, ok)
	assert.Equal(t, RouteID(2), m.ID)
	assert.Empty(t, m.Params)

	m, ok = match("GET", "/users/77")
	require.True(t, ok)
	assert.Equal(t, RouteID(1), m.ID)
}

func TestRadixMatcherConstrainedParam(t *testing.T) {
	t.Parallel()

	match := compile(t, [2]string{"GET", "/orders/:id{[0-9]+}"})

	m, ok := match("GET", "/orders/123")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"id": "123"}, m.Params)

	_, ok = match("GET", "/orders/abc")
	assert.False(t, ok)

	// The constraint is anchored: a partial match is not enough.
	_, ok = match("GET", "/orders/12a")
	assert.False(t, ok)
}

func TestRadixMatcherOptionalTrailingParam(t *testing.T) {
	t.Parallel()

	match := compile(t, [2]string{"GET", "/files/:name?"})

	m, ok := match("GET", "/files/report.txt")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "report.txt"}, m.Params)

	// Absent optional parameter: match without the key present.
	m, ok = match("GET", "/files")
	require.True(t, ok)
	_, present := m.Params["name"]
	assert.False(t, present)
}

func TestRadixMatcherOptionalMustBeTrailing(t *testing.T) {
	t.Parallel()

	m := NewRadixMatcher()
	err := m.AddRoute("GET", "/files/:name?/meta", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestRadixMatcherHeadFallsBackToGet(t *testing.T) {
	t.Parallel()

	match := compile(t,
		[2]string{"GET", "/users"},
		[2]string{"HEAD", "/status"},
	)

	// Explicit HEAD route wins.
	m, ok := match("HEAD", "/status")
	require.True(t, ok)
	assert.Equal(t, RouteID(2), m.ID)

	// No HEAD route: fall back to the GET tree for the same path.
	m, ok = match("HEAD", "/users")
	require.True(t, ok)
	assert.Equal(t, RouteID(1), m.ID)

	_, ok = match("HEAD", "/missing")
	assert.False(t, ok)
}

func TestRadixMatcherStripsQueryAndFragment(t *testing.T) {
	t.Parallel()

	match := compile(t, [2]string{"GET", "/users/:id"})

	m, ok := match("GET", "/users/42?expand=profile")
	require.True(t, ok)
	assert.Equal(t, "42", m.Params["id"])

	m, ok = match("GET", "/users/42#section")
	require.True(t, ok)
	assert.Equal(t, "42", m.Params["id"])
}

func TestRadixMatcherCollapsesRequestSlashes(t *testing.T) {
	t.Parallel()

	match := compile(t, [2]string{"GET", "/users/:id"})

	m, ok := match("GET", "//users//42/")
	require.True(t, ok)
	assert.Equal(t, "42", m.Params["id"])
}

func TestRadixMatcherMethodCaseInsensitive(t *testing.T) {
	t.Parallel()

	m := NewRadixMatcher()
	require.NoError(t, m.AddRoute("get", "/users", 1))

	match, err := m.Compile()
	require.NoError(t, err)

	res, ok := match("GET", "/users")
	require.True(t, ok)
	assert.Equal(t, RouteID(1), res.ID)
}

func TestRadixMatcherDuplicateRoute(t *testing.T) {
	t.Parallel()

	m := NewRadixMatcher()
	require.NoError(t, m.AddRoute("GET", "/users", 1))

	err := m.AddRoute("GET", "/users", 2)
	assert.ErrorIs(t, err, ErrDuplicateRoute)

	// Same template after normalization is still a duplicate.
	err = m.AddRoute("GET", "/users/", 3)
	assert.ErrorIs(t, err, ErrDuplicateRoute)
}

func TestRadixMatcherConflictingParamNames(t *testing.T) {
	t.Parallel()

	m := NewRadixMatcher()
	require.NoError(t, m.AddRoute("GET", "/users/:id", 1))

	err := m.AddRoute("GET", "/users/:userID/posts", 2)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestRadixMatcherCompileTwice(t *testing.T) {
	t.Parallel()

	m := NewRadixMatcher()
	require.NoError(t, m.AddRoute("GET", "/users", 1))

	_, err := m.Compile()
	require.NoError(t, err)

	_, err = m.Compile()
	assert.ErrorIs(t, err, ErrAlreadyCompiled)

	err = m.AddRoute("GET", "/late", 2)
	assert.ErrorIs(t, err, ErrAlreadyCompiled)
}

func TestRadixMatcherInvalidConstraint(t *testing.T) {
	t.Parallel()

	m := NewRadixMatcher()

	err := m.AddRoute("GET", "/orders/:id{[", 1)
	assert.ErrorIs(t, err, ErrInvalidPattern)

	err = m.AddRoute("GET", "/orders/:id{[0-9]+", 2)
	assert.ErrorIs(t, err, ErrInvalidPattern)

	err = m.AddRoute("GET", "/orders/:{x}", 3)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestRadixMatcherNoBacktracking(t *testing.T) {
	t.Parallel()

	// A constrained param that rejects the segment fails the lookup even
	// though a sibling branch could have continued.
	match := compile(t,
		[2]string{"GET", "/a/:n{[0-9]+}/x"},
	)

	_, ok := match("GET", "/a/abc/x")
	assert.False(t, ok)
}
