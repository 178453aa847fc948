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

package problem

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesStandardStatusText(t *testing.T) {
	t.Parallel()

	p := New(http.StatusNotFound)

	assert.Equal(t, "about:blank", p.Type)
	assert.Equal(t, "Not Found", p.Title)
	assert.Equal(t, 404, p.Status)
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 404, NotFound("no such user").Status)
	assert.Equal(t, 400, BadRequest("bad payload").Status)
	assert.Equal(t, 415, UnsupportedMediaType("xml not accepted").Status)
	assert.Equal(t, 500, InternalServerError("boom").Status)
	assert.Equal(t, "no such user", NotFound("no such user").Detail)
}

func TestErrorInterface(t *testing.T) {
	t.Parallel()

	p := BadRequest("name is required")
	assert.Equal(t, "Bad Request: name is required", p.Error())

	bare := New(http.StatusConflict)
	assert.Equal(t, "Conflict", bare.Error())
}

func TestMarshalWithoutExtensions(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(NotFound("gone"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "about:blank", decoded["type"])
	assert.Equal(t, "Not Found", decoded["title"])
	assert.Equal(t, float64(404), decoded["status"])
	assert.Equal(t, "gone", decoded["detail"])
}

func TestMarshalMergesExtensionsTopLevel(t *testing.T) {
	t.Parallel()

	p := BadRequest("validation failed").
		WithExtension("errors", []string{"name is required"}).
		WithExtension("trace_id", "abc123")

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "abc123", decoded["trace_id"])
	assert.Equal(t, []any{"name is required"}, decoded["errors"])

	// Not nested under an "extensions" member.
	_, nested := decoded["extensions"]
	assert.False(t, nested)
}

func TestMarshalStandardMembersWinOverExtensions(t *testing.T) {
	t.Parallel()

	p := NotFound("gone").WithExtension("status", 200)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(404), decoded["status"])
}

func TestChaining(t *testing.T) {
	t.Parallel()

	p := New(http.StatusForbidden).
		WithDetail("token expired").
		WithInstance("/sessions/9")

	assert.Equal(t, "token expired", p.Detail)
	assert.Equal(t, "/sessions/9", p.Instance)
}
