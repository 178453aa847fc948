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

package jsonschema

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kori.dev/kori/schema"
)

func TestCompileFromString(t *testing.T) {
	t.Parallel()

	s, err := Compile(`{"type": "object"}`)
	require.NoError(t, err)
	assert.Equal(t, Provider, s.Provider())
	assert.NotNil(t, s.Definition())
}

func TestCompileInvalidDocument(t *testing.T) {
	t.Parallel()

	_, err := Compile(`{"type": not json`)
	assert.Error(t, err)

	_, err = Compile(`{"pattern": "["}`)
	assert.Error(t, err)
}

func TestMustCompilePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustCompile(`{"pattern": "["}`)
	})
}

func TestValidateBody(t *testing.T) {
	t.Parallel()

	s := MustCompile(`{
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "minLength": 2}
		}
	}`)
	v := NewValidator()

	err := v.ValidateBody(context.Background(), s, map[string]any{"name": "ada"})
	assert.NoError(t, err)

	err = v.ValidateBody(context.Background(), s, map[string]any{})
	assert.Error(t, err)

	err = v.ValidateBody(context.Background(), s, map[string]any{"name": "a"})
	assert.Error(t, err)
}

func TestValidateParams(t *testing.T) {
	t.Parallel()

	s := MustCompile(`{
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": "string", "pattern": "^[0-9]+$"}
		}
	}`)
	v := NewValidator()

	err := v.ValidateParams(context.Background(), s, map[string]string{"id": "42"})
	assert.NoError(t, err)

	err = v.ValidateParams(context.Background(), s, map[string]string{"id": "abc"})
	assert.Error(t, err)

	err = v.ValidateParams(context.Background(), s, map[string]string{})
	assert.Error(t, err)
}

func TestValidateQueriesCollapsesSingleValues(t *testing.T) {
	t.Parallel()

	s := MustCompile(`{
		"type": "object",
		"properties": {
			"page": {"type": "string"},
			"tag":  {"type": "array", "items": {"type": "string"}}
		}
	}`)
	v := NewValidator()

	err := v.ValidateQueries(context.Background(), s, url.Values{
		"page": {"2"},
		"tag":  {"go", "http"},
	})
	assert.NoError(t, err)
}

func TestValidateHeadersLowercasesKeys(t *testing.T) {
	t.Parallel()

	s := MustCompile(`{
		"type": "object",
		"required": ["x-tenant"],
		"properties": {"x-tenant": {"type": "string"}}
	}`)
	v := NewValidator()

	headers := http.Header{}
	headers.Set("X-Tenant", "acme")

	err := v.ValidateHeaders(context.Background(), s, headers)
	assert.NoError(t, err)

	err = v.ValidateHeaders(context.Background(), s, http.Header{})
	assert.Error(t, err)
}

func TestValidateFormBody(t *testing.T) {
	t.Parallel()

	s := MustCompile(`{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`)
	v := NewValidator()

	err := v.ValidateBody(context.Background(), s, url.Values{"name": {"ada"}})
	assert.NoError(t, err)
}

func TestValidateWrongDefinitionType(t *testing.T) {
	t.Parallel()

	v := NewValidator()
	err := v.ValidateBody(context.Background(), schema.New(Provider, "not compiled"), map[string]any{})
	assert.Error(t, err)
}
